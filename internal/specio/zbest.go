// Public domain.

package specio

import (
	"fmt"
	"os"
	"strings"

	"github.com/astrogo/fitsio"
)

// ZBest holds the redshift fitter's results, one entry per object in
// table row order.  TargetID is nil when the fitter did not propagate
// identifiers; consumers then align by row order.  The optional
// fit-quality columns are nil when absent from the file.
type ZBest struct {
	TargetID []int64
	Z        []float64
	ZErr     []float64
	ZWarn    []int64
	SpecType []string
	Chi2     []float64
}

type zbestFullRow struct {
	TargetID int64   `fits:"TARGETID"`
	Z        float64 `fits:"Z"`
	ZErr     float64 `fits:"ZERR"`
	ZWarn    int64   `fits:"ZWARN"`
	SpecType string  `fits:"SPECTYPE"`
	Chi2     float64 `fits:"CHI2"`
}

// column names kept from a ZBEST table, Z first
var zbestCols = []string{"Z", "TARGETID", "ZERR", "ZWARN", "SPECTYPE", "CHI2"}

// ReadZBest reads the "ZBEST" binary table from a results file.  The Z
// column is required; the identifier and fit-quality columns are kept
// individually when present.
func ReadZBest(path string) (*ZBest, error) {
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

	hdu := hduByName(f, "ZBEST")
	if hdu == nil {
		return nil, fmt.Errorf("specio: %s: no ZBEST table", path)
	}
	tbl, ok := hdu.(*fitsio.Table)
	if !ok {
		return nil, fmt.Errorf("specio: %s: ZBEST is not a table", path)
	}
	have := make(map[string]bool)
	for _, col := range tbl.Cols() {
		have[col.Name] = true
	}
	if !have["Z"] {
		return nil, fmt.Errorf("specio: %s: ZBEST has no Z column", path)
	}

	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, fmt.Errorf("specio: %s: ZBEST: %w", path, err)
	}
	defer rows.Close()

	zb := &ZBest{}
	for rows.Next() {
		m := make(map[string]interface{}, len(zbestCols))
		for _, name := range zbestCols {
			if have[name] {
				m[name] = nil
			}
		}
		if err = rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("specio: %s: ZBEST: %w", path, err)
		}
		bad := ""
		fcol := func(name string) float64 {
			switch v := m[name].(type) {
			case float64:
				return v
			case float32:
				return float64(v)
			}
			bad = name
			return 0
		}
		icol := func(name string) int64 {
			switch v := m[name].(type) {
			case int64:
				return v
			case int32:
				return int64(v)
			case int16:
				return int64(v)
			}
			bad = name
			return 0
		}
		zb.Z = append(zb.Z, fcol("Z"))
		if have["TARGETID"] {
			zb.TargetID = append(zb.TargetID, icol("TARGETID"))
		}
		if have["ZERR"] {
			zb.ZErr = append(zb.ZErr, fcol("ZERR"))
		}
		if have["ZWARN"] {
			zb.ZWarn = append(zb.ZWarn, icol("ZWARN"))
		}
		if have["SPECTYPE"] {
			s, ok := m["SPECTYPE"].(string)
			if !ok {
				bad = "SPECTYPE"
			}
			zb.SpecType = append(zb.SpecType, strings.TrimRight(s, " "))
		}
		if have["CHI2"] {
			zb.Chi2 = append(zb.Chi2, fcol("CHI2"))
		}
		if bad != "" {
			return nil, fmt.Errorf(
				"specio: %s: ZBEST column %s has unexpected type %T",
				path, bad, m[bad])
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("specio: %s: ZBEST: %w", path, err)
	}
	return zb, nil
}

// WriteZBest writes a results file in the fitter's format.  The real
// pipeline never calls this; it backs the zcomp command's tests and
// lets stub fitters be replayed from captured results.
func WriteZBest(path string, zb *ZBest) error {
	n := len(zb.Z)
	if zb.TargetID != nil && len(zb.TargetID) != n {
		return fmt.Errorf("specio: %d TARGETID values for %d Z values",
			len(zb.TargetID), n)
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

	tbl, err := fitsio.NewTable("ZBEST", []fitsio.Column{
		{Name: "TARGETID", Format: "K"},
		{Name: "Z", Format: "D"},
		{Name: "ZERR", Format: "D"},
		{Name: "ZWARN", Format: "K"},
		{Name: "SPECTYPE", Format: "8A"},
		{Name: "CHI2", Format: "D"},
	}, fitsio.BINARY_TBL)
	if err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	defer tbl.Close()
	at := func(xs []float64, i int) float64 {
		if xs == nil {
			return 0
		}
		return xs[i]
	}
	for i := 0; i < n; i++ {
		row := zbestFullRow{Z: zb.Z[i]}
		if zb.TargetID != nil {
			row.TargetID = zb.TargetID[i]
		}
		row.ZErr = at(zb.ZErr, i)
		row.Chi2 = at(zb.Chi2, i)
		if zb.ZWarn != nil {
			row.ZWarn = zb.ZWarn[i]
		}
		if zb.SpecType != nil {
			row.SpecType = zb.SpecType[i]
		}
		if err = tbl.Write(&row); err != nil {
			return fmt.Errorf("specio: %s: ZBEST row %d: %w", path, i, err)
		}
	}
	if err = f.Write(tbl); err != nil {
		return fmt.Errorf("specio: %s: %w", path, err)
	}
	return nil
}
