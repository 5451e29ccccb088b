// Public domain.

package ephem

import (
	"math"
	"testing"

	"github.com/soniakeys/observation"
	"github.com/soniakeys/unit"
)

// Kitt Peak parallax constants from the MPC observatory list.  The
// parallax longitude is already an angle; it must pass through without
// rescaling, and latitude follows from the rho ratio.
func TestSiteFromPar(t *testing.T) {
	par := &observation.ParallaxConst{
		Longitude: unit.AngleFromDeg(248.39981),
		RhoCosPhi: .84947,
		RhoSinPhi: .52647,
	}
	s := siteFromPar("695", par)
	if s.Code != "695" {
		t.Fatal("code", s.Code)
	}
	if d := s.Lon.Deg(); math.Abs(d-248.39981) > 1e-9 {
		t.Fatal("longitude", d)
	}
	if d := s.Lat.Deg(); math.Abs(d-31.79) > .05 {
		t.Fatal("latitude", d)
	}
}
