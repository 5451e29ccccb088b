// Public domain.

// Package ztempl generates noiseless template spectra for simulated
// survey targets.
package ztempl

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	xrand "golang.org/x/exp/rand"
)

// Shared observed-frame wavelength grid: 3600-9824 Å in .8 Å steps,
// covering the three spectrograph bands with margin.
const (
	WaveLo   = 3600
	WaveHi   = 9824
	WaveStep = .8
)

// NWave is the number of samples in the shared wavelength grid.
const NWave = int((WaveHi-WaveLo)/WaveStep) + 1

// maximum draws per template before rejection sampling gives up
const maxDraw = 1000

// Grid allocates and returns the shared wavelength grid in Angstroms.
func Grid() []float64 {
	g := make([]float64, NWave)
	for i := range g {
		g[i] = waveAt(i)
	}
	return g
}

func waveAt(i int) float64 {
	return WaveLo + WaveStep*float64(i)
}

// ObjectMeta holds per-object truth attributes, one row per template,
// order-aligned with the flux table.
type ObjectMeta struct {
	TargetID int64
	ObjType  string
	Z        float64
	Mag      float64
}

// TypeMeta holds class-specific attributes, keyed by the same TargetID
// and in the same row order as ObjectMeta.  Fields not meaningful for
// the generated class are zero.
type TypeMeta struct {
	TargetID int64
	OIIFlux  float64 // [OII] doublet flux, 1e-17 erg/(s cm2).  ELG only.
	LineEW   float64 // rest equivalent width of the strongest line, Å
	Teff     float64 // effective temperature, K.  Stellar classes only.
}

// Set is the result of template generation: a flux table, the shared
// wavelength grid, and the two order-aligned metadata tables.  A Set is
// not modified after Generate returns it.
type Set struct {
	Wave []float64   // observed-frame Angstroms
	Flux [][]float32 // [object][sample], 1e-17 erg/(s cm2 Å)
	Meta []ObjectMeta
	Type []TypeMeta
}

// Options adjust template generation.  The zero value gives class
// defaults with a time-based seed.
type Options struct {
	// Seed for the pseudo random source.  Zero with Repeatable false
	// means seed from the clock.
	Seed uint64

	// Repeatable forces a fixed seed so repeated runs generate
	// identical sets.
	Repeatable bool

	// ZRange and MagRange restrict sampling within the class ranges.
	// Draws outside are rejected.
	ZRange   *[2]float64
	MagRange *[2]float64
}

// Generate synthesizes n noiseless templates of the requested target
// class.  It is pure: identical arguments and seed give an identical Set
// and there are no side effects.
//
// The returned Set has exactly n flux rows and n rows in each metadata
// table, with identical TargetID values in identical order.
func Generate(class string, n int, opt Options) (*Set, error) {
	c, ok := ByAbbr(class)
	if !ok {
		return nil, fmt.Errorf("ztempl: unrecognized target class %q", class)
	}
	if n <= 0 {
		return nil, fmt.Errorf("ztempl: template count must be positive, got %d", n)
	}
	zlo, zhi := c.ZLo, c.ZHi
	if opt.ZRange != nil {
		zlo, zhi = opt.ZRange[0], opt.ZRange[1]
	}
	maglo, maghi := c.MagLo, c.MagHi
	if opt.MagRange != nil {
		maglo, maghi = opt.MagRange[0], opt.MagRange[1]
	}

	seed := opt.Seed
	switch {
	case opt.Repeatable && seed == 0:
		seed = 3
	case seed == 0:
		seed = uint64(time.Now().UnixNano())
	}

	s := &Set{
		Wave: Grid(),
		Flux: make([][]float32, n),
		Meta: make([]ObjectMeta, n),
		Type: make([]TypeMeta, n),
	}

	// workers each own a PCG source and a reusable workspace.  The
	// source is reseeded per slot so the generated set does not depend
	// on which worker draws which slot.
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	slots := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed int
	for wx := 0; wx < workers; wx++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rnd := xrand.New(&xrand.PCGSource{})
			w := &workspace{class: c, rnd: rnd}
			for sx := range slots {
				rnd.Seed(seed + uint64(sx)*0x9e3779b97f4a7c15)
				if !w.draw(zlo, zhi, maglo, maghi) {
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				c.synth(w)
				id := targetID(seed, sx)
				s.Flux[sx] = w.flux
				s.Meta[sx] = ObjectMeta{
					TargetID: id,
					ObjType:  c.Abbr,
					Z:        w.z,
					Mag:      w.mag,
				}
				s.Type[sx] = TypeMeta{
					TargetID: id,
					OIIFlux:  w.oiiFlux,
					LineEW:   w.lineEW,
					Teff:     w.teff,
				}
				w.flux = nil
			}
		}()
	}
	for sx := 0; sx < n; sx++ {
		slots <- sx
	}
	close(slots)
	wg.Wait()

	if failed == n {
		return nil, fmt.Errorf(
			"ztempl: zero valid %s templates after rejection sampling (z [%g,%g], mag [%g,%g])",
			c.Abbr, zlo, zhi, maglo, maghi)
	}
	if failed > 0 {
		return nil, fmt.Errorf(
			"ztempl: rejection sampling exhausted for %d of %d %s templates",
			failed, n, c.Abbr)
	}
	return s, nil
}

// targetID builds a per-run unique object identifier.  The high bits
// carry a run tag from the seed so identifiers from different runs are
// unlikely to collide when result files are compared side by side.
func targetID(seed uint64, sx int) int64 {
	return int64(seed&0x3fffff)<<24 | int64(sx)
}

// workspace for synthesizing a single template.  One per worker, reused
// across slots to reduce garbage.
type workspace struct {
	class *Class
	rnd   *xrand.Rand

	// accepted draw
	z, mag float64

	// synthesized output
	flux []float32

	// class specific values picked up into TypeMeta
	oiiFlux, lineEW, teff float64
}

// draw samples redshift and magnitude from the class parent ranges and
// rejects draws outside the requested sub-ranges.  Returns false if
// maxDraw samples are all rejected.
func (w *workspace) draw(zlo, zhi, maglo, maghi float64) bool {
	c := w.class
	for try := 0; try < maxDraw; try++ {
		z := c.ZLo + (c.ZHi-c.ZLo)*w.rnd.Float64()
		mag := c.MagLo + (c.MagHi-c.MagLo)*w.rnd.Float64()
		if z < zlo || z > zhi || mag < maglo || mag > maghi {
			continue
		}
		w.z = z
		w.mag = mag
		w.oiiFlux = 0
		w.lineEW = 0
		w.teff = 0
		return true
	}
	return false
}
