// Public domain.

// Package specio reads and writes the FITS files handed between
// pipeline stages: the noiseless simulator input, the truth tables, the
// simulated multi-band spectra, and the fitter's ZBEST results.
package specio

import (
	"fmt"
	"os"
	"strings"

	"github.com/astrogo/fitsio"

	"specz/internal/ztempl"
)

// Unit annotations carried on the simulator input HDUs.
const (
	WaveUnit = "Angstrom"
	FluxUnit = "1e-17 erg/(s cm2 Angstrom)"
)

// WriteSimInput writes the noiseless spectra to a FITS file with an
// image HDU "WAVELENGTH" (1D) and an image HDU "FLUX" (2D, one row per
// object).  An existing file at path is overwritten.
func WriteSimInput(path string, wave []float64, flux [][]float32) error {
	for i, row := range flux {
		if len(row) != len(wave) {
			return fmt.Errorf(
				"specio: flux row %d has %d samples, wavelength grid has %d",
				i, len(row), len(wave))
		}
	}
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("specio: %w", err)
	}
	defer w.Close()
	f, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	defer f.Close()
	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	if err = f.Write(phdu); err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}

	wimg := fitsio.NewImage(-64, []int{len(wave)})
	defer wimg.Close()
	if err = wimg.Header().Append(
		fitsio.Card{Name: "EXTNAME", Value: "WAVELENGTH"},
		fitsio.Card{Name: "BUNIT", Value: WaveUnit},
	); err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	if err = wimg.Write(&wave); err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	if err = f.Write(wimg); err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}

	flat := make([]float32, 0, len(flux)*len(wave))
	for _, row := range flux {
		flat = append(flat, row...)
	}
	fimg := fitsio.NewImage(-32, []int{len(wave), len(flux)})
	defer fimg.Close()
	if err = fimg.Header().Append(
		fitsio.Card{Name: "EXTNAME", Value: "FLUX"},
		fitsio.Card{Name: "BUNIT", Value: FluxUnit},
	); err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	if err = fimg.Write(&flat); err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	if err = f.Write(fimg); err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	return nil
}

// ReadSimInput reads a file written by WriteSimInput back into memory.
// The returned arrays are bit-identical to what was written.
func ReadSimInput(path string) (wave []float64, flux [][]float32, err error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("specio: %w", err)
	}
	defer r.Close()
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, nil, fmt.Errorf("specio: %s: %w", path, err)
	}
	defer f.Close()

	whdu := hduByName(f, "WAVELENGTH")
	if whdu == nil {
		return nil, nil, fmt.Errorf("specio: %s: no WAVELENGTH HDU", path)
	}
	// image reads fill a pre-sized slice from the header axes
	waxes := whdu.Header().Axes()
	if len(waxes) != 1 {
		return nil, nil, fmt.Errorf("specio: %s: WAVELENGTH axes %v, want 1D",
			path, waxes)
	}
	wave = make([]float64, waxes[0])
	if err = whdu.(fitsio.Image).Read(&wave); err != nil {
		return nil, nil, fmt.Errorf("specio: %s: WAVELENGTH: %w", path, err)
	}

	fhdu := hduByName(f, "FLUX")
	if fhdu == nil {
		return nil, nil, fmt.Errorf("specio: %s: no FLUX HDU", path)
	}
	axes := fhdu.Header().Axes()
	if len(axes) != 2 || axes[0] != len(wave) {
		return nil, nil, fmt.Errorf(
			"specio: %s: FLUX axes %v do not match wavelength grid length %d",
			path, axes, len(wave))
	}
	flat := make([]float32, axes[0]*axes[1])
	if err = fhdu.(fitsio.Image).Read(&flat); err != nil {
		return nil, nil, fmt.Errorf("specio: %s: FLUX: %w", path, err)
	}
	flux = unflatten(flat, axes[1], axes[0])
	return wave, flux, nil
}

func unflatten(flat []float32, nrow, ncol int) [][]float32 {
	out := make([][]float32, nrow)
	for i := range out {
		out[i] = flat[i*ncol : (i+1)*ncol : (i+1)*ncol]
	}
	return out
}

func hduByName(f *fitsio.File, name string) fitsio.HDU {
	for _, hdu := range f.HDUs() {
		if hdu.Name() == name {
			return hdu
		}
	}
	return nil
}

type truthRow struct {
	TargetID int64   `fits:"TARGETID"`
	ObjType  string  `fits:"OBJTYPE"`
	TrueZ    float64 `fits:"TRUEZ"`
	Mag      float64 `fits:"MAG"`
}

type truthTypeRow struct {
	TargetID int64   `fits:"TARGETID"`
	OIIFlux  float64 `fits:"OIIFLUX"`
	LineEW   float64 `fits:"LINEEW"`
	Teff     float64 `fits:"TEFF"`
}

// WriteTruth writes the generation metadata to a FITS file with binary
// tables "TRUTH" (per-object attributes) and "TRUTH_TYPE" (class
// specific attributes), row-aligned by TARGETID.
func WriteTruth(path string, meta []ztempl.ObjectMeta, typ []ztempl.TypeMeta) error {
	if len(meta) != len(typ) {
		return fmt.Errorf("specio: %d meta rows, %d type rows", len(meta), len(typ))
	}
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("specio: %w", err)
	}
	defer w.Close()
	f, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	defer f.Close()
	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	if err = f.Write(phdu); err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}

	tbl, err := fitsio.NewTable("TRUTH", []fitsio.Column{
		{Name: "TARGETID", Format: "K"},
		{Name: "OBJTYPE", Format: "8A"},
		{Name: "TRUEZ", Format: "D"},
		{Name: "MAG", Format: "D"},
	}, fitsio.BINARY_TBL)
	if err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	defer tbl.Close()
	for i := range meta {
		m := &meta[i]
		err = tbl.Write(&truthRow{m.TargetID, m.ObjType, m.Z, m.Mag})
		if err != nil {
			return fmt.Errorf("specio: %s: TRUTH row %d: %w", path, i, err)
		}
	}
	if err = f.Write(tbl); err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}

	ttbl, err := fitsio.NewTable("TRUTH_TYPE", []fitsio.Column{
		{Name: "TARGETID", Format: "K"},
		{Name: "OIIFLUX", Format: "D", Unit: "1e-17 erg/(s cm2)"},
		{Name: "LINEEW", Format: "D", Unit: "Angstrom"},
		{Name: "TEFF", Format: "D", Unit: "K"},
	}, fitsio.BINARY_TBL)
	if err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	defer ttbl.Close()
	for i := range typ {
		t := &typ[i]
		err = ttbl.Write(&truthTypeRow{t.TargetID, t.OIIFlux, t.LineEW, t.Teff})
		if err != nil {
			return fmt.Errorf("specio: %s: TRUTH_TYPE row %d: %w", path, i, err)
		}
	}
	if err = f.Write(ttbl); err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	return nil
}

// ReadTruth reads the tables written by WriteTruth.
func ReadTruth(path string) ([]ztempl.ObjectMeta, []ztempl.TypeMeta, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("specio: %w", err)
	}
	defer r.Close()
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, nil, fmt.Errorf("specio: %s: %w", path, err)
	}
	defer f.Close()

	hdu := hduByName(f, "TRUTH")
	if hdu == nil {
		return nil, nil, fmt.Errorf("specio: %s: no TRUTH table", path)
	}
	tbl, ok := hdu.(*fitsio.Table)
	if !ok {
		return nil, nil, fmt.Errorf("specio: %s: TRUTH is not a table", path)
	}
	var meta []ztempl.ObjectMeta
	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, nil, fmt.Errorf("specio: %s: TRUTH: %w", path, err)
	}
	defer rows.Close()
	for rows.Next() {
		var tr truthRow
		if err = rows.Scan(&tr); err != nil {
			return nil, nil, fmt.Errorf("specio: %s: TRUTH: %w", path, err)
		}
		meta = append(meta, ztempl.ObjectMeta{
			TargetID: tr.TargetID,
			ObjType:  strings.TrimRight(tr.ObjType, " "),
			Z:        tr.TrueZ,
			Mag:      tr.Mag,
		})
	}
	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("specio: %s: TRUTH: %w", path, err)
	}

	var typ []ztempl.TypeMeta
	if hdu = hduByName(f, "TRUTH_TYPE"); hdu != nil {
		ttbl, ok := hdu.(*fitsio.Table)
		if !ok {
			return nil, nil, fmt.Errorf("specio: %s: TRUTH_TYPE is not a table", path)
		}
		trows, err := ttbl.Read(0, ttbl.NumRows())
		if err != nil {
			return nil, nil, fmt.Errorf("specio: %s: TRUTH_TYPE: %w", path, err)
		}
		defer trows.Close()
		for trows.Next() {
			var tr truthTypeRow
			if err = trows.Scan(&tr); err != nil {
				return nil, nil, fmt.Errorf("specio: %s: TRUTH_TYPE: %w", path, err)
			}
			typ = append(typ, ztempl.TypeMeta{
				TargetID: tr.TargetID,
				OIIFlux:  tr.OIIFlux,
				LineEW:   tr.LineEW,
				Teff:     tr.Teff,
			})
		}
		if err = trows.Err(); err != nil {
			return nil, nil, fmt.Errorf("specio: %s: TRUTH_TYPE: %w", path, err)
		}
	}
	return meta, typ, nil
}
