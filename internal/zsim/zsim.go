// Public domain.

// Package zsim invokes the external noise simulator and redshift fitter
// as black-box subprocesses.  Both invokers block until the process
// exits and report a non-zero exit as an error; there is no retry and a
// failed run leaves no usable output file.
package zsim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"go.uber.org/zap"
)

// Default executable names.  Both tools are found through PATH and
// inherit the parent environment.
const (
	DefaultSimBin    = "simulate"
	DefaultFitterBin = "fit-redshifts"
)

// ClusterHostEnv is the environment variable whose presence indicates a
// recognized cluster login and triggers batch-scheduler wrapping of the
// fitter command.
const ClusterHostEnv = "NERSC_HOST"

// Conditions parameterizes the simulated observation's sky brightness.
// Each flag is independently optional: a zero-valued field is omitted
// from the command line, leaving that parameter to the simulator's own
// default.  A nil *Conditions passes no flags at all.
type Conditions struct {
	MoonFrac float64 `yaml:"moonfrac"` // illuminated fraction, 0 to 1
	MoonAlt  float64 `yaml:"moonalt"`  // degrees above horizon
	MoonSep  float64 `yaml:"moonsep"`  // degrees from target
	Airmass  float64 `yaml:"airmass"`  // atmospheric path length, >= 1
}

// Validate checks the ranges of the set values.  Malformed conditions
// are reported before any subprocess is started.
func (c *Conditions) Validate() error {
	switch {
	case c.MoonFrac < 0 || c.MoonFrac > 1:
		return fmt.Errorf("zsim: moon fraction %g outside [0,1]", c.MoonFrac)
	case c.MoonAlt < -90 || c.MoonAlt > 90:
		return fmt.Errorf("zsim: moon altitude %g outside [-90,90]", c.MoonAlt)
	case c.MoonSep < 0 || c.MoonSep > 180:
		return fmt.Errorf("zsim: moon separation %g outside [0,180]", c.MoonSep)
	case c.Airmass != 0 && c.Airmass < 1:
		return fmt.Errorf("zsim: airmass %g < 1", c.Airmass)
	}
	return nil
}

// Args returns command line flags for the non-zero condition values.
func (c *Conditions) Args() []string {
	var args []string
	if c.MoonFrac != 0 {
		args = append(args, "--moonfrac", ff(c.MoonFrac))
	}
	if c.MoonAlt != 0 {
		args = append(args, "--moonalt", ff(c.MoonAlt))
	}
	if c.MoonSep != 0 {
		args = append(args, "--moonsep", ff(c.MoonSep))
	}
	if c.Airmass != 0 {
		args = append(args, "--airmass", ff(c.Airmass))
	}
	return args
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Simulator runs the external noise simulation tool.
type Simulator struct {
	Bin string // executable name, DefaultSimBin if empty
	Log *zap.Logger
}

// Run simulates the spectra in file in, writing noisy multi-band
// spectra to file out.  It blocks until the subprocess completes.
func (s *Simulator) Run(ctx context.Context, in, out string, c *Conditions) error {
	if c != nil {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(in); err != nil {
		return fmt.Errorf("zsim: simulator input: %w", err)
	}
	bin := s.Bin
	if bin == "" {
		bin = DefaultSimBin
	}
	args := []string{"-i", in, "-o", out}
	if c != nil {
		args = append(args, c.Args()...)
	}
	return run(ctx, s.Log, bin, args...)
}

// Fitter runs the external redshift fitting tool.
type Fitter struct {
	Bin string // executable name, DefaultFitterBin if empty
	Log *zap.Logger

	// LookupEnv is consulted for ClusterHostEnv.  Nil means
	// os.LookupEnv; tests substitute their own.
	LookupEnv func(string) (string, bool)
}

// Run fits redshifts for the simulated spectra in file in, writing the
// ZBEST results file to zbest.  mp > 0 requests that degree of
// multiprocessing from the tool.  On a recognized cluster host the
// command is wrapped in a batch-scheduler submission.
func (ft *Fitter) Run(ctx context.Context, in, zbest string, mp int) error {
	if mp < 0 {
		return fmt.Errorf("zsim: multiprocessing degree %d < 0", mp)
	}
	if _, err := os.Stat(in); err != nil {
		return fmt.Errorf("zsim: fitter input: %w", err)
	}
	bin := ft.Bin
	if bin == "" {
		bin = DefaultFitterBin
	}
	args := []string{in, "--zbest", zbest}
	if mp > 0 {
		args = append(args, "--mp", strconv.Itoa(mp))
	}
	lookup := ft.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if host, ok := lookup(ClusterHostEnv); ok {
		if ft.Log != nil {
			ft.Log.Info("wrapping fitter in batch submission",
				zap.String("host", host))
		}
		wrapped := []string{"-N", "1", "-n", "1"}
		if mp > 0 {
			wrapped = append(wrapped, "-c", strconv.Itoa(mp))
		}
		wrapped = append(wrapped, bin)
		args = append(wrapped, args...)
		bin = "srun"
	}
	return run(ctx, ft.Log, bin, args...)
}

// run starts the command and blocks for completion.  Stderr streams
// through to the parent and its tail is kept for the error message.
// Success or failure is judged on exit code alone.
func run(ctx context.Context, log *zap.Logger, bin string, args ...string) error {
	if log != nil {
		log.Info("exec", zap.String("bin", bin), zap.Strings("args", args))
	}
	var tail bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = io.MultiWriter(os.Stderr, &tail)
	err := cmd.Run()
	if err == nil {
		return nil
	}
	var xerr *exec.ExitError
	if errors.As(err, &xerr) {
		return fmt.Errorf("zsim: %s exited %d: %s",
			bin, xerr.ExitCode(), lastLine(tail.Bytes()))
	}
	return fmt.Errorf("zsim: %s: %w", bin, err)
}

// lastLine extracts the final non-empty stderr line for error context.
func lastLine(b []byte) string {
	lines := bytes.Split(bytes.TrimSpace(b), []byte{'\n'})
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.TrimSpace(lines[len(lines)-1]))
}
