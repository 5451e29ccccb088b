// Public domain.

// Package zcompare compares fitted redshifts against generation truth
// and renders comparison statistics and plots.
package zcompare

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"specz/internal/specio"
	"specz/internal/ztempl"
)

// C is the speed of light in km/s.
const C = 299792.458

// CatastrophicDV is the velocity offset in km/s beyond which a fit
// counts as a catastrophic failure rather than noise scatter.
const CatastrophicDV = 1000

// Velocity converts a redshift error to the equivalent recession
// velocity offset in km/s.
func Velocity(ztrue, zfit float64) float64 {
	return C * (zfit - ztrue) / (1 + ztrue)
}

// Object is one matched truth/fit pair.
type Object struct {
	TargetID    int64
	ZTrue, ZFit float64
	DV          float64 // velocity offset, km/s
	DZ          float64 // fractional redshift error
	ZWarn       int64
}

// Run is one result file compared against truth.
type Run struct {
	Name    string
	Objects []Object
}

// Compare matches fitter results against truth.  Rows join by TARGETID
// when the fitter propagated identifiers, otherwise by row order, which
// then requires equal row counts.
func Compare(name string, meta []ztempl.ObjectMeta, zb *specio.ZBest) (*Run, error) {
	r := &Run{Name: name}
	warn := func(i int) int64 {
		if zb.ZWarn == nil {
			return 0
		}
		return zb.ZWarn[i]
	}
	if zb.TargetID != nil {
		byID := make(map[int64]*ztempl.ObjectMeta, len(meta))
		for i := range meta {
			byID[meta[i].TargetID] = &meta[i]
		}
		for i, id := range zb.TargetID {
			m, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf(
					"zcompare: %s: result TARGETID %d not in truth", name, id)
			}
			r.Objects = append(r.Objects, match(m, id, zb.Z[i], warn(i)))
		}
		return r, nil
	}
	if len(zb.Z) != len(meta) {
		return nil, fmt.Errorf(
			"zcompare: %s: %d results for %d truth rows and no TARGETID to join on",
			name, len(zb.Z), len(meta))
	}
	for i := range meta {
		r.Objects = append(r.Objects,
			match(&meta[i], meta[i].TargetID, zb.Z[i], warn(i)))
	}
	return r, nil
}

func match(m *ztempl.ObjectMeta, id int64, zfit float64, zwarn int64) Object {
	return Object{
		TargetID: id,
		ZTrue:    m.Z,
		ZFit:     zfit,
		DV:       Velocity(m.Z, zfit),
		DZ:       (zfit - m.Z) / (1 + m.Z),
		ZWarn:    zwarn,
	}
}

// Summary holds velocity-offset statistics for a run.
type Summary struct {
	N            int
	MeanDV       float64 // km/s
	StdDV        float64 // km/s
	MeanAbsDV    float64 // km/s
	NMAD         float64 // km/s
	Catastrophic int     // count of |dv| > CatastrophicDV
}

// Summary computes run statistics over all matched objects.
func (r *Run) Summary() Summary {
	s := Summary{N: len(r.Objects)}
	if s.N == 0 {
		return s
	}
	dv := make([]float64, s.N)
	abs := make([]float64, s.N)
	for i, o := range r.Objects {
		dv[i] = o.DV
		abs[i] = math.Abs(o.DV)
		if abs[i] > CatastrophicDV {
			s.Catastrophic++
		}
	}
	s.MeanDV = stat.Mean(dv, nil)
	s.MeanAbsDV = stat.Mean(abs, nil)
	if s.N > 1 {
		s.StdDV = stat.StdDev(dv, nil)
	}
	s.NMAD = nmad(dv)
	return s
}

// nmad is the normalized median absolute deviation, the survey's usual
// outlier-resistant scatter estimate.
func nmad(xs []float64) float64 {
	m := median(xs)
	dev := make([]float64, len(xs))
	for i, x := range xs {
		dev[i] = math.Abs(x - m)
	}
	return 1.4826 * median(dev)
}

func median(xs []float64) float64 {
	s := append([]float64{}, xs...)
	sort.Float64s(s)
	n := len(s)
	if n == 0 {
		return 0
	}
	if n&1 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) * .5
}

// Report prints a fixed-width comparison table for one or more runs.
func Report(w io.Writer, runs []*Run) {
	fmt.Fprintln(w, "                               dv (km/s)")
	fmt.Fprintln(w, "Run             N     mean   stddev     NMAD  mean|dv|  |dv|>1000")
	for _, r := range runs {
		s := r.Summary()
		fmt.Fprintf(w, "%-12s %5d %8.1f %8.1f %8.1f %9.1f %10d\n",
			r.Name, s.N, s.MeanDV, s.StdDV, s.NMAD, s.MeanAbsDV, s.Catastrophic)
	}
}
