// Public domain.

package zprog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"specz/internal/zlog"
	"specz/internal/zsim"
	"specz/internal/ztempl"
)

// ScratchEnv names the environment variable holding the scratch
// directory where all generated files land when no path is configured.
const ScratchEnv = "SCRATCH"

// RunSpec is one named simulate+fit pass over the generated templates.
// Conditions may be given directly, or derived from an observation
// epoch and target coordinates via the lunar ephemeris.  Direct
// conditions win when both are present.  Neither means the simulator's
// own defaults.
type RunSpec struct {
	Name       string           `yaml:"name"`
	Conditions *zsim.Conditions `yaml:"conditions"`
	When       time.Time        `yaml:"when"`
	TargetRA   float64          `yaml:"target_ra"`  // degrees
	TargetDec  float64          `yaml:"target_dec"` // degrees
}

// Config is the YAML run configuration for the specz command.
type Config struct {
	Class      string       `yaml:"class"`
	Count      int          `yaml:"count"`
	Seed       uint64       `yaml:"seed"`
	Repeatable bool         `yaml:"repeatable"`
	ZRange     *[2]float64  `yaml:"zrange"`
	MagRange   *[2]float64  `yaml:"magrange"`
	Scratch    string       `yaml:"scratch"`
	Simulator  string       `yaml:"simulator"`
	Fitter     string       `yaml:"fitter"`
	MP         int          `yaml:"mp"`
	Obscode    string       `yaml:"obscode"`
	ObscodeDat string       `yaml:"obscode_file"`
	Plots      bool         `yaml:"plots"`
	Log        zlog.Config  `yaml:"log"`
	Runs       []RunSpec    `yaml:"runs"`
}

// DefaultConfig returns the configuration used when no config file is
// given: ten quasars through a single default-conditions run.
func DefaultConfig() *Config {
	return &Config{
		Class:     "QSO",
		Count:     10,
		Simulator: zsim.DefaultSimBin,
		Fitter:    zsim.DefaultFitterBin,
		Obscode:   "695", // Kitt Peak
		Plots:     true,
		Runs:      []RunSpec{{Name: "default"}},
	}
}

// LoadConfig layers a YAML config file over the defaults.
func LoadConfig(fn string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", fn, err)
	}
	return cfg, nil
}

// Validate reports the first configuration problem found.  Parameter
// errors are caught here, before any files are written or subprocesses
// started.
func (cfg *Config) Validate() error {
	if _, ok := ztempl.ByAbbr(cfg.Class); !ok {
		return fmt.Errorf("unrecognized target class %q", cfg.Class)
	}
	if cfg.Count <= 0 {
		return fmt.Errorf("template count must be positive, got %d", cfg.Count)
	}
	if cfg.MP < 0 {
		return fmt.Errorf("mp must be non-negative, got %d", cfg.MP)
	}
	if len(cfg.Runs) == 0 {
		return fmt.Errorf("no runs configured")
	}
	seen := make(map[string]bool)
	for i, rs := range cfg.Runs {
		if rs.Name == "" {
			return fmt.Errorf("run %d has no name", i)
		}
		if seen[rs.Name] {
			return fmt.Errorf("duplicate run name %q", rs.Name)
		}
		seen[rs.Name] = true
		if rs.Conditions != nil {
			if err := rs.Conditions.Validate(); err != nil {
				return fmt.Errorf("run %q: %w", rs.Name, err)
			}
		}
		if rs.Conditions == nil && !rs.When.IsZero() {
			if rs.TargetDec < -90 || rs.TargetDec > 90 {
				return fmt.Errorf("run %q: target dec %g outside [-90,90]",
					rs.Name, rs.TargetDec)
			}
		}
	}
	return nil
}
