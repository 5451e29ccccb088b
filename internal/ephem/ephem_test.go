// Public domain.

package ephem_test

import (
	"math"
	"testing"
	"time"

	"github.com/soniakeys/unit"

	"specz/internal/ephem"
)

func TestAirmass(t *testing.T) {
	for _, tc := range []struct {
		altDeg float64
		want   float64
		tol    float64
	}{
		{90, 1, 0},       // zenith, clamped
		{89, 1, 0},       // approximation dips below 1 here, clamped
		{30, 1.994, .01}, // sec z = 2
		{10, 5.6, .2},
	} {
		am := ephem.Airmass(unit.AngleFromDeg(tc.altDeg))
		if math.Abs(am-tc.want) > tc.tol {
			t.Fatal("airmass at", tc.altDeg, "deg:", am, "want", tc.want)
		}
	}
	if am := ephem.Airmass(unit.AngleFromDeg(89)); am < 1 {
		t.Fatal("airmass below 1 near zenith:", am)
	}
}

func TestAirmassMonotonic(t *testing.T) {
	last := math.Inf(1)
	for alt := 5.; alt <= 90; alt += 5 {
		am := ephem.Airmass(unit.AngleFromDeg(alt))
		if am >= last {
			t.Fatal("airmass not decreasing at alt", alt, "deg:", am, last)
		}
		last = am
	}
}

func TestAirmassHorizon(t *testing.T) {
	if am := ephem.Airmass(0); !math.IsInf(am, 1) {
		t.Fatal("airmass at horizon:", am)
	}
	if am := ephem.Airmass(unit.AngleFromDeg(-5)); !math.IsInf(am, 1) {
		t.Fatal("airmass below horizon:", am)
	}
}

// Kitt Peak, geocentric, close enough for condition tests.
var kittPeak = &ephem.Site{
	Code: "695",
	Lon:  unit.AngleFromDeg(-111.6),
	Lat:  unit.AngleFromDeg(31.96),
}

// Phases pin to eclipse epochs: totality guarantees the illuminated
// fraction without depending on ephemeris precision.
func TestMoonPhase(t *testing.T) {
	// solar eclipse, then total lunar eclipse
	newMoon := time.Date(2017, 8, 21, 18, 26, 0, 0, time.UTC)
	fullMoon := time.Date(2019, 1, 21, 5, 12, 0, 0, time.UTC)

	ra, dec := unit.RAFromDeg(150), unit.AngleFromDeg(2.2)
	mc := kittPeak.Moon(newMoon, ra, dec)
	if mc.Frac > .02 {
		t.Fatal("new moon fraction", mc.Frac)
	}
	mc = kittPeak.Moon(fullMoon, ra, dec)
	if mc.Frac < .98 {
		t.Fatal("full moon fraction", mc.Frac)
	}
}

func TestMoonRanges(t *testing.T) {
	for mo := time.January; mo <= time.December; mo++ {
		when := time.Date(2026, mo, 14, 7, 30, 0, 0, time.UTC)
		mc := kittPeak.Moon(when, unit.RAFromDeg(36), unit.AngleFromDeg(-4.5))
		if mc.Frac < 0 || mc.Frac > 1 {
			t.Fatal(mo, "fraction", mc.Frac)
		}
		if d := mc.Alt.Deg(); d < -90 || d > 90 {
			t.Fatal(mo, "altitude", d)
		}
		if d := mc.Sep.Deg(); d < 0 || d > 180 {
			t.Fatal(mo, "separation", d)
		}
		if mc.Airmass < 1 {
			t.Fatal(mo, "airmass", mc.Airmass)
		}
		if s := mc.String(); s == "" {
			t.Fatal(mo, "empty condition string")
		}
	}
}

// The moon moves ~13 degrees along the ecliptic per day, so separation
// from a fixed target sweeps a wide range over half a month.
func TestMoonMotion(t *testing.T) {
	ra, dec := unit.RAFromDeg(150), unit.AngleFromDeg(2.2)
	d0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	lo, hi := 180., 0.
	for day := 0; day < 14; day++ {
		s := kittPeak.Moon(d0.AddDate(0, 0, day), ra, dec).Sep.Deg()
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	if hi-lo < 30 {
		t.Fatal("separation range over 14 days:", hi-lo, "deg")
	}
}
