// Public domain.

// Package ephem derives lunar observing conditions for a site and time:
// moon illuminated fraction, moon altitude, angular separation from the
// target and target airmass.  It lets a run config name an observation
// epoch instead of hand-picking moon numbers.
package ephem

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/meeus/v3/base"
	mcoord "github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonillum"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
)

// MoonConditions are the derived sky-brightness parameters for one
// observation epoch.
type MoonConditions struct {
	Frac    float64    // illuminated fraction, 0 to 1
	Alt     unit.Angle // moon altitude above horizon
	Sep     unit.Angle // moon-target angular separation
	Airmass float64    // target airmass, >= 1
}

func (mc *MoonConditions) String() string {
	return fmt.Sprintf("moon %2.0f%% illuminated, alt %v, sep %v, airmass %.2f",
		mc.Frac*100, sexa.FmtAngle(mc.Alt), sexa.FmtAngle(mc.Sep), mc.Airmass)
}

// Moon computes lunar conditions for observing the given equatorial
// target coordinates from the site at time t.  Positions are geocentric;
// lunar parallax is below the fidelity the noise simulator needs.
func (s *Site) Moon(t time.Time, targetRA unit.RA, targetDec unit.Angle) *MoonConditions {
	jd := julian.TimeToJD(t.UTC())

	λ, β, _ := moonposition.Position(jd)
	sε, cε := math.Sincos(nutation.MeanObliquity(jd).Rad())
	α, δ := mcoord.EclToEq(λ, β, sε, cε)

	// ψ per the Meeus convention, longitude positive west
	ψ := unit.Angle(-s.Lon)
	st := sidereal.Apparent(jd)
	_, moonAlt := mcoord.EqToHz(α, δ, s.Lat, ψ, st)
	_, targetAlt := mcoord.EqToHz(targetRA, targetDec, s.Lat, ψ, st)

	return &MoonConditions{
		Frac:    base.Illuminated(moonillum.PhaseAngle3(jd)),
		Alt:     moonAlt,
		Sep:     sep(unit.Angle(α), δ, unit.Angle(targetRA), targetDec),
		Airmass: Airmass(targetAlt),
	}
}

// sep computes the angular separation of two equatorial directions
// through unit vectors.
func sep(ra1, dec1, ra2, dec2 unit.Angle) unit.Angle {
	v1 := cart(ra1, dec1)
	v2 := cart(ra2, dec2)
	d := v1.Dot(&v2)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return unit.Angle(math.Acos(d))
}

func cart(ra, dec unit.Angle) coord.Cart {
	sd, cd := math.Sincos(dec.Rad())
	sr, cr := math.Sincos(ra.Rad())
	return coord.Cart{X: cr * cd, Y: sr * cd, Z: sd}
}

// Airmass computes relative atmospheric path length for a target
// altitude with the Kasten-Young approximation.  Targets at or below
// the horizon get +Inf.  The approximation dips fractionally below 1
// near the zenith; results are clamped to a minimum of 1.
func Airmass(alt unit.Angle) float64 {
	hdeg := alt.Deg()
	if hdeg <= 0 {
		return math.Inf(1)
	}
	cz := math.Sin(alt.Rad())
	am := 1 / (cz + .50572*math.Pow(hdeg+6.07995, -1.6364))
	if am < 1 {
		return 1
	}
	return am
}
