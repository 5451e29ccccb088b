// Public domain.

package ephem

import (
	"fmt"
	"log"
	"math"

	"github.com/soniakeys/mpcformat"
	"github.com/soniakeys/observation"
	"github.com/soniakeys/unit"
)

// Site is an observing site in geocentric coordinates.
type Site struct {
	Code string
	Lon  unit.Angle // east longitude
	Lat  unit.Angle // geocentric latitude
}

// DefaultObscode is the survey's observatory, Kitt Peak.
const DefaultObscode = "695"

// SiteFromObscode resolves an MPC observatory code to site coordinates
// using an obscode.dat file.  If the file cannot be read a fresh copy is
// fetched to fn and the read retried.
func SiteFromObscode(fn, code string) (*Site, error) {
	ocdMap, readErr := mpcformat.ReadObscodeDatFile(fn)
	if readErr != nil {
		log.Println(readErr)
		if err := mpcformat.FetchObscodeDat(fn); err != nil {
			return nil, fmt.Errorf("ephem: obscode fetch: %w", err)
		}
		if ocdMap, readErr = mpcformat.ReadObscodeDatFile(fn); readErr != nil {
			return nil, fmt.Errorf("ephem: %w", readErr)
		}
	}
	var par *observation.ParallaxConst
	par, ok := ocdMap[code]
	if !ok {
		return nil, fmt.Errorf("ephem: obscode %q not in %s", code, fn)
	}
	if par == nil {
		return nil, fmt.Errorf("ephem: obscode %q has no ground coordinates", code)
	}
	return siteFromPar(code, par), nil
}

// siteFromPar converts MPC parallax constants to site coordinates.
// Geocentric latitude from the rho ratio is all the horizon math here
// needs.
func siteFromPar(code string, par *observation.ParallaxConst) *Site {
	return &Site{
		Code: code,
		Lon:  par.Longitude,
		Lat:  unit.Angle(math.Atan2(par.RhoSinPhi, par.RhoCosPhi)),
	}
}
