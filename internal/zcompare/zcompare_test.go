// Public domain.

package zcompare_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"specz/internal/specio"
	"specz/internal/zcompare"
	"specz/internal/ztempl"
)

func TestVelocity(t *testing.T) {
	for _, tc := range []struct {
		ztrue, zfit, want float64
	}{
		{0, 0, 0},
		{1, 1.001, 149.896229},
		{2, 2.003, 299.792458},
		{.5, .4985, -299.792458},
	} {
		dv := zcompare.Velocity(tc.ztrue, tc.zfit)
		if math.Abs(dv-tc.want) > 1e-5 {
			t.Fatal("dv for", tc.ztrue, "->", tc.zfit, ":", dv,
				"want", tc.want)
		}
	}
}

var testMeta = []ztempl.ObjectMeta{
	{TargetID: 11, ObjType: "QSO", Z: 1, Mag: 20},
	{TargetID: 12, ObjType: "QSO", Z: 2, Mag: 21},
	{TargetID: 13, ObjType: "QSO", Z: 3, Mag: 22},
}

// Results join on TARGETID even when the fitter reordered rows.
func TestCompareByID(t *testing.T) {
	zb := &specio.ZBest{
		TargetID: []int64{13, 11, 12},
		Z:        []float64{3.1, 1.1, 2.1},
		ZWarn:    []int64{4, 0, 0},
	}
	r, err := zcompare.Compare("t", testMeta, zb)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Objects) != 3 {
		t.Fatal("objects", len(r.Objects))
	}
	for i, want := range []struct {
		id    int64
		ztrue float64
		zwarn int64
	}{
		{13, 3, 4},
		{11, 1, 0},
		{12, 2, 0},
	} {
		o := r.Objects[i]
		if o.TargetID != want.id || o.ZTrue != want.ztrue || o.ZWarn != want.zwarn {
			t.Fatalf("object %d: %+v", i, o)
		}
		if math.Abs(o.ZFit-o.ZTrue-.1) > 1e-12 {
			t.Fatalf("object %d zfit: %+v", i, o)
		}
	}
}

func TestCompareUnknownID(t *testing.T) {
	zb := &specio.ZBest{TargetID: []int64{99}, Z: []float64{1}}
	if _, err := zcompare.Compare("t", testMeta, zb); err == nil {
		t.Fatal("no error for unknown TARGETID")
	}
}

// Without identifiers rows align by order, which requires equal counts.
func TestCompareRowOrder(t *testing.T) {
	zb := &specio.ZBest{Z: []float64{1.5, 2.5, 3.5}}
	r, err := zcompare.Compare("t", testMeta, zb)
	if err != nil {
		t.Fatal(err)
	}
	for i, o := range r.Objects {
		if o.TargetID != testMeta[i].TargetID || o.ZFit != zb.Z[i] {
			t.Fatalf("object %d: %+v", i, o)
		}
	}

	zb = &specio.ZBest{Z: []float64{1.5, 2.5}}
	if _, err = zcompare.Compare("t", testMeta, zb); err == nil {
		t.Fatal("no error for row count mismatch without TARGETID")
	}
}

// runWithDV builds a run whose velocity offsets are exactly dv, using
// zero true redshifts so dv = c*zfit.
func runWithDV(t *testing.T, dv []float64) *zcompare.Run {
	t.Helper()
	meta := make([]ztempl.ObjectMeta, len(dv))
	zfit := make([]float64, len(dv))
	for i, v := range dv {
		meta[i] = ztempl.ObjectMeta{TargetID: int64(i)}
		zfit[i] = v / zcompare.C
	}
	r, err := zcompare.Compare("dv", meta, &specio.ZBest{Z: zfit})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestSummary(t *testing.T) {
	r := runWithDV(t, []float64{-100, 0, 100, 2000})
	s := r.Summary()
	if s.N != 4 {
		t.Fatal("N", s.N)
	}
	if math.Abs(s.MeanDV-500) > 1e-6 {
		t.Fatal("mean", s.MeanDV)
	}
	if math.Abs(s.MeanAbsDV-550) > 1e-6 {
		t.Fatal("mean abs", s.MeanAbsDV)
	}
	// sample stddev about mean 500: sqrt(3020000/3)
	if want := math.Sqrt(3020000. / 3); math.Abs(s.StdDV-want) > 1e-6 {
		t.Fatal("stddev", s.StdDV, "want", want)
	}
	// median 50, abs deviations {150,50,50,1950}, median 100
	if want := 1.4826 * 100; math.Abs(s.NMAD-want) > 1e-6 {
		t.Fatal("nmad", s.NMAD, "want", want)
	}
	if s.Catastrophic != 1 {
		t.Fatal("catastrophic", s.Catastrophic)
	}
}

func TestSummaryEmpty(t *testing.T) {
	r := &zcompare.Run{Name: "empty"}
	s := r.Summary()
	if s.N != 0 || s.MeanDV != 0 || s.NMAD != 0 || s.Catastrophic != 0 {
		t.Fatalf("empty summary: %+v", s)
	}
}

func TestReport(t *testing.T) {
	runs := []*zcompare.Run{
		runWithDV(t, []float64{-10, 10}),
		runWithDV(t, []float64{0, 0, 5000}),
	}
	runs[0].Name = "dark"
	runs[1].Name = "bright"
	var buf bytes.Buffer
	zcompare.Report(&buf, runs)
	out := buf.String()
	for _, want := range []string{"dv (km/s)", "NMAD", "dark", "bright"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report misses %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 4 {
		t.Fatal("report lines", lines)
	}
}

func TestScatterPlots(t *testing.T) {
	dir := t.TempDir()
	runs := []*zcompare.Run{runWithDV(t, []float64{-10, 0, 10, 30})}
	zz := filepath.Join(dir, "zz.png")
	dv := filepath.Join(dir, "dv.png")
	if err := zcompare.ScatterZZ(runs, zz); err != nil {
		t.Fatal(err)
	}
	if err := zcompare.ScatterDV(runs, dv); err != nil {
		t.Fatal(err)
	}
	for _, fn := range []string{zz, dv} {
		fi, err := os.Stat(fn)
		if err != nil {
			t.Fatal(err)
		}
		if fi.Size() == 0 {
			t.Fatal(fn, "is empty")
		}
	}
}
