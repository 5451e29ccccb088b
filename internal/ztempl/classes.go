// Public domain.

package ztempl

import "math"

// Class describes one supported target class: its sampling ranges and
// the function that synthesizes a rest-frame spectrum for one draw.
type Class struct {
	Abbr, Heading string
	ZLo, ZHi      float64 // redshift parent range
	MagLo, MagHi  float64 // broadband AB magnitude parent range
	synth         func(w *workspace)
}

// CList represents the supported target classes.
var CList = []Class{
	{"QSO", "Quasar", .5, 4, 17, 22.7, synthQSO},
	{"ELG", "Emission line gal.", .6, 1.6, 20, 23.4, synthELG},
	{"LRG", "Luminous red gal.", .4, 1.1, 17.5, 20.4, synthLRG},
	{"BGS", "Bright gal. sample", .01, .45, 15, 19.5, synthBGS},
	{"STD", "Standard star", -.0005, .0005, 16, 18.5, synthSTD},
	{"WD", "White dwarf", -.0005, .0005, 16, 19.5, synthWD},
	{"STAR", "Generic star", -.0005, .0005, 15, 19, synthSTAR},
}

// ByAbbr returns the class with the given abbreviation.
func ByAbbr(abbr string) (*Class, bool) {
	for i := range CList {
		if CList[i].Abbr == abbr {
			return &CList[i], true
		}
	}
	return nil, false
}

// continuum normalization wavelength, observed Angstroms
const refWave = 7000

// abFlux converts an AB magnitude to flux density at wavelength lambda,
// in 1e-17 erg/(s cm2 Å).
func abFlux(mag, lambda float64) float64 {
	fnu := math.Pow(10, -.4*(mag+48.6))
	return fnu * 2.99792458e18 / (lambda * lambda) * 1e17
}

// powerLaw fills the continuum with f0*(λ/refWave)^alpha where f0 is the
// flux density matching the workspace magnitude at refWave.
func (w *workspace) powerLaw(alpha float64) {
	w.flux = make([]float32, NWave)
	f0 := abFlux(w.mag, refWave)
	for i := range w.flux {
		w.flux[i] = float32(f0 * math.Pow(waveAt(i)/refWave, alpha))
	}
}

// bplanck is the unnormalized Planck function at wavelength lambda
// (Angstroms) and temperature t (K).
func bplanck(lambda, t float64) float64 {
	x := 1.43877688e8 / (lambda * t)
	return 1 / (math.Pow(lambda, 5) * (math.Exp(x) - 1))
}

// bbody fills the continuum with a blackbody of temperature t normalized
// to the workspace magnitude at refWave.
func (w *workspace) bbody(t float64) {
	w.flux = make([]float32, NWave)
	f0 := abFlux(w.mag, refWave)
	inv := f0 / bplanck(refWave, t)
	for i := range w.flux {
		w.flux[i] = float32(inv * bplanck(waveAt(i), t))
	}
}

// addLine adds a Gaussian emission line.  Center and sigma in observed
// Angstroms, total line flux in 1e-17 erg/(s cm2).
func (w *workspace) addLine(center, sigma, total float64) {
	lo := int((center - 5*sigma - WaveLo) / WaveStep)
	hi := int((center+5*sigma-WaveLo)/WaveStep) + 1
	if lo < 0 {
		lo = 0
	}
	if hi > NWave {
		hi = NWave
	}
	norm := total / (sigma * math.Sqrt(2*math.Pi))
	for i := lo; i < hi; i++ {
		d := (waveAt(i) - center) / sigma
		w.flux[i] += float32(norm * math.Exp(-.5*d*d))
	}
}

// absorb multiplies the continuum by a Gaussian absorption profile of
// the given fractional depth.
func (w *workspace) absorb(center, sigma, depth float64) {
	lo := int((center - 5*sigma - WaveLo) / WaveStep)
	hi := int((center+5*sigma-WaveLo)/WaveStep) + 1
	if lo < 0 {
		lo = 0
	}
	if hi > NWave {
		hi = NWave
	}
	for i := lo; i < hi; i++ {
		d := (waveAt(i) - center) / sigma
		w.flux[i] *= float32(1 - depth*math.Exp(-.5*d*d))
	}
}

// continuumAt evaluates the current continuum at an observed wavelength,
// clamped to the grid.
func (w *workspace) continuumAt(lambda float64) float64 {
	i := int((lambda - WaveLo) / WaveStep)
	if i < 0 {
		i = 0
	}
	if i >= NWave {
		i = NWave - 1
	}
	return float64(w.flux[i])
}

// broad rest-frame quasar emission lines.  Strength scales the line
// equivalent width relative to CIV.
var qsoLines = []struct {
	rest, sigma, strength float64
}{
	{1215.67, 15, 2.5}, // Lyα
	{1549.48, 12, 1},   // CIV
	{1908.73, 10, .6},  // CIII]
	{2798.75, 10, .8},  // MgII
	{4862.68, 8, .7},   // Hβ
	{5008.24, 4, .9},   // [OIII]
}

func synthQSO(w *workspace) {
	w.powerLaw(-1.5)
	zp1 := 1 + w.z
	ew := 30 + 30*w.rnd.Float64() // CIV rest equivalent width, Å
	w.lineEW = ew
	for _, l := range qsoLines {
		c := l.rest * zp1
		if c < WaveLo || c > WaveHi {
			continue
		}
		w.addLine(c, l.sigma*zp1, w.continuumAt(c)*ew*l.strength)
	}
}

func synthELG(w *workspace) {
	w.powerLaw(-.3)
	zp1 := 1 + w.z
	oii := 4 + 10*w.rnd.Float64() // doublet flux, 1e-17 erg/(s cm2)
	w.oiiFlux = oii
	w.lineEW = oii / math.Max(w.continuumAt(3728*zp1), 1e-3) / zp1
	w.addLine(3727.09*zp1, 1.4*zp1, .45*oii)
	w.addLine(3729.26*zp1, 1.4*zp1, .55*oii)
	w.addLine(4862.68*zp1, 2*zp1, .2*oii)
	w.addLine(5008.24*zp1, 2*zp1, .3*oii)
}

func synthLRG(w *workspace) {
	w.flux = make([]float32, NWave)
	zp1 := 1 + w.z
	f0 := abFlux(w.mag, refWave)
	for i := range w.flux {
		lr := waveAt(i) / zp1 // rest wavelength
		// red continuum with a smoothed 4000 Å break
		brk := .45 + .55/(1+math.Exp(-(lr-4000)/80))
		w.flux[i] = float32(f0 * math.Pow(waveAt(i)/refWave, .8) * brk)
	}
	w.absorb(3934.8*zp1, 3*zp1, .4) // Ca K
	w.absorb(3969.6*zp1, 3*zp1, .35)
}

func synthBGS(w *workspace) {
	w.powerLaw(.2)
	zp1 := 1 + w.z
	ha := 2 + 8*w.rnd.Float64()
	w.lineEW = ha / math.Max(w.continuumAt(6565*zp1), 1e-3) / zp1
	w.addLine(6564.61*zp1, 2.5*zp1, ha)
	w.addLine(6585.27*zp1, 2*zp1, .3*ha)
	w.absorb(5895.6*zp1, 3*zp1, .25) // Na D
}

// Balmer series used by the stellar classes
var balmer = []float64{6564.61, 4862.68, 4341.68, 4102.89}

func synthSTD(w *workspace) {
	t := 6400 + 600*w.rnd.Float64() // F-type calibration star
	w.teff = t
	w.bbody(t)
	zp1 := 1 + w.z
	for _, b := range balmer {
		w.absorb(b*zp1, 4, .35)
	}
}

func synthWD(w *workspace) {
	t := 12000 + 13000*w.rnd.Float64()
	w.teff = t
	w.bbody(t)
	zp1 := 1 + w.z
	for _, b := range balmer {
		w.absorb(b*zp1, 25, .5) // pressure broadened
	}
}

func synthSTAR(w *workspace) {
	t := 3600 + 3900*w.rnd.Float64()
	w.teff = t
	w.bbody(t)
	zp1 := 1 + w.z
	w.absorb(5895.6*zp1, 3, .3)  // Na D
	w.absorb(5176.7*zp1, 4, .25) // Mg b
	if t > 6000 {
		for _, b := range balmer {
			w.absorb(b*zp1, 4, .3)
		}
	}
}
