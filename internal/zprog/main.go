// Public domain.

package zprog

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/soniakeys/exit"
	"github.com/soniakeys/unit"
	"go.uber.org/zap"

	"specz/internal/ephem"
	"specz/internal/specio"
	"specz/internal/zcompare"
	"specz/internal/zlog"
	"specz/internal/zsim"
	"specz/internal/ztempl"
)

const versionString = "specz version 0.1 Go source."
const copyrightString = "Public domain."

// Main is the body of the specz command: generate templates, write the
// simulator input, then for each configured run simulate, fit and
// compare.  Stages run strictly in sequence; each output file is
// complete before the next stage reads it.
func Main() {
	defer exit.Handler()

	cl := parseCommandLine()
	if cl.v {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		return
	}
	cfg := readConfig(cl)

	lg := zlog.Must(cfg.Log)
	defer lg.Sync()

	if err := run(cfg, lg); err != nil {
		exit.Log(err)
	}
}

type commandLine struct {
	dc string // config file
	dp string // scratch path override
	dt string // target class override
	dn int    // count override
	v  bool   // -v option
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dv := flag.Bool("v", false, "")
	flag.StringVar(&cl.dc, "c", "", "")
	flag.StringVar(&cl.dp, "p", "", "")
	flag.StringVar(&cl.dt, "t", "", "")
	flag.IntVar(&cl.dn, "n", 0, "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: specz [options]      run the simulate/fit pipeline
       specz -v             display version and copyright

Options:
       -c <config-file>     YAML run configuration
       -p <path>            scratch directory (default $` + ScratchEnv + `)
       -t <class>           target class (QSO ELG LRG BGS STD WD STAR)
       -n <count>           number of templates

For full documentation:
   go doc specz
`)
	}
	flag.Parse()
	switch {
	case *dv:
		cl.v = true
	case flag.NArg() != 0:
		flag.Usage()
		os.Exit(1)
	}
	return &cl
}

// readConfig loads the config file if given and applies command line
// overrides, terminating on any validation error.
func readConfig(cl *commandLine) *Config {
	cfg := DefaultConfig()
	if cl.dc != "" {
		var err error
		if cfg, err = LoadConfig(cl.dc); err != nil {
			exit.Log(err)
		}
	}
	if cl.dp != "" {
		cfg.Scratch = cl.dp
	}
	if cl.dt != "" {
		cfg.Class = strings.ToUpper(cl.dt)
	}
	if cl.dn != 0 {
		cfg.Count = cl.dn
	}
	if err := cfg.Validate(); err != nil {
		exit.Log(err)
	}
	return cfg
}

// scratchDir resolves the working directory for generated files:
// flag or config first, then the scratch environment variable, then
// the current directory.
func scratchDir(cfg *Config) string {
	if cfg.Scratch != "" {
		return cfg.Scratch
	}
	if dir := os.Getenv(ScratchEnv); dir != "" {
		return dir
	}
	return "."
}

func run(cfg *Config, lg *zap.Logger) error {
	scratch := scratchDir(cfg)
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return err
	}

	lg.Info("generating templates",
		zap.String("class", cfg.Class), zap.Int("count", cfg.Count))
	set, err := ztempl.Generate(cfg.Class, cfg.Count, ztempl.Options{
		Seed:       cfg.Seed,
		Repeatable: cfg.Repeatable,
		ZRange:     cfg.ZRange,
		MagRange:   cfg.MagRange,
	})
	if err != nil {
		return err
	}

	prefix := strings.ToLower(cfg.Class)
	inPath := filepath.Join(scratch, prefix+"-templates.fits")
	truthPath := filepath.Join(scratch, prefix+"-truth.fits")
	lg.Info("writing simulator input", zap.String("path", inPath))
	if err = specio.WriteSimInput(inPath, set.Wave, set.Flux); err != nil {
		return err
	}
	if err = specio.WriteTruth(truthPath, set.Meta, set.Type); err != nil {
		return err
	}

	sim := &zsim.Simulator{Bin: cfg.Simulator, Log: lg}
	fit := &zsim.Fitter{Bin: cfg.Fitter, Log: lg}
	ctx := context.Background()

	var runs []*zcompare.Run
	for _, rs := range cfg.Runs {
		cond, err := conditions(cfg, &rs, scratch, lg)
		if err != nil {
			return err
		}
		simOut := filepath.Join(scratch, prefix+"-"+rs.Name+"-spectra.fits")
		lg.Info("simulating", zap.String("run", rs.Name),
			zap.String("out", simOut))
		if err = sim.Run(ctx, inPath, simOut, cond); err != nil {
			return err
		}

		zbPath := filepath.Join(scratch, prefix+"-"+rs.Name+"-zbest.fits")
		lg.Info("fitting redshifts", zap.String("run", rs.Name),
			zap.String("zbest", zbPath))
		if err = fit.Run(ctx, simOut, zbPath, cfg.MP); err != nil {
			return err
		}

		zb, err := specio.ReadZBest(zbPath)
		if err != nil {
			return err
		}
		r, err := zcompare.Compare(rs.Name, set.Meta, zb)
		if err != nil {
			return err
		}
		runs = append(runs, r)
	}

	zcompare.Report(os.Stdout, runs)
	if cfg.Plots {
		zz := filepath.Join(scratch, prefix+"-zz.png")
		dv := filepath.Join(scratch, prefix+"-dv.png")
		if err = zcompare.ScatterZZ(runs, zz); err != nil {
			return err
		}
		if err = zcompare.ScatterDV(runs, dv); err != nil {
			return err
		}
		lg.Info("plots written", zap.String("zz", zz), zap.String("dv", dv))
	}
	return nil
}

// conditions resolves the observing conditions for one run: direct
// config values, or values derived from the lunar ephemeris for the
// configured epoch, or nil for the simulator's defaults.
func conditions(cfg *Config, rs *RunSpec, scratch string, lg *zap.Logger) (*zsim.Conditions, error) {
	if rs.Conditions != nil || rs.When.IsZero() {
		return rs.Conditions, nil
	}
	ocd := cfg.ObscodeDat
	if ocd == "" {
		ocd = filepath.Join(scratch, "specz.obscodes")
	}
	site, err := ephem.SiteFromObscode(ocd, cfg.Obscode)
	if err != nil {
		return nil, err
	}
	mc := site.Moon(rs.When,
		unit.RAFromDeg(rs.TargetRA), unit.AngleFromDeg(rs.TargetDec))
	lg.Info("derived conditions", zap.String("run", rs.Name),
		zap.String("moon", mc.String()))
	if math.IsInf(mc.Airmass, 1) {
		return nil, fmt.Errorf("run %q: target below the horizon at %s",
			rs.Name, rs.When)
	}
	return &zsim.Conditions{
		MoonFrac: mc.Frac,
		MoonAlt:  mc.Alt.Deg(),
		MoonSep:  mc.Sep.Deg(),
		Airmass:  mc.Airmass,
	}, nil
}
