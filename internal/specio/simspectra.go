// Public domain.

package specio

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"
)

// Bands are the simulator's spectrograph arms, blue to red.
var Bands = []string{"B", "R", "Z"}

// BandSpectra holds the simulated noisy spectra for one spectrograph
// band: a band wavelength grid shared by all objects plus per-object
// flux and inverse variance rows.
type BandSpectra struct {
	Wave []float64
	Flux [][]float32
	IVar [][]float32
}

// ReadSimSpectra reads a simulator output file.  For each band it
// expects image HDUs <band>_WAVELENGTH (1D), <band>_FLUX and
// <band>_IVAR (2D, one row per object).
func ReadSimSpectra(path string) (map[string]*BandSpectra, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("specio: %w", err)
	}
	defer r.Close()
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("specio: %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string]*BandSpectra, len(Bands))
	for _, band := range Bands {
		bs := &BandSpectra{}
		whdu := hduByName(f, band+"_WAVELENGTH")
		if whdu == nil {
			return nil, fmt.Errorf("specio: %s: no %s_WAVELENGTH HDU", path, band)
		}
		waxes := whdu.Header().Axes()
		if len(waxes) != 1 {
			return nil, fmt.Errorf("specio: %s: %s_WAVELENGTH axes %v, want 1D",
				path, band, waxes)
		}
		bs.Wave = make([]float64, waxes[0])
		if err = whdu.(fitsio.Image).Read(&bs.Wave); err != nil {
			return nil, fmt.Errorf("specio: %s: %s_WAVELENGTH: %w", path, band, err)
		}
		bs.Flux, err = read2D(f, path, band+"_FLUX", len(bs.Wave))
		if err != nil {
			return nil, err
		}
		bs.IVar, err = read2D(f, path, band+"_IVAR", len(bs.Wave))
		if err != nil {
			return nil, err
		}
		if len(bs.Flux) != len(bs.IVar) {
			return nil, fmt.Errorf("specio: %s: band %s has %d flux rows, %d ivar rows",
				path, band, len(bs.Flux), len(bs.IVar))
		}
		out[band] = bs
	}
	return out, nil
}

func read2D(f *fitsio.File, path, name string, nwave int) ([][]float32, error) {
	hdu := hduByName(f, name)
	if hdu == nil {
		return nil, fmt.Errorf("specio: %s: no %s HDU", path, name)
	}
	axes := hdu.Header().Axes()
	if len(axes) != 2 || axes[0] != nwave {
		return nil, fmt.Errorf("specio: %s: %s axes %v do not match band grid length %d",
			path, name, axes, nwave)
	}
	flat := make([]float32, axes[0]*axes[1])
	if err := hdu.(fitsio.Image).Read(&flat); err != nil {
		return nil, fmt.Errorf("specio: %s: %s: %w", path, name, err)
	}
	return unflatten(flat, axes[1], axes[0]), nil
}
