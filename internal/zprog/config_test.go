// Public domain.

package zprog_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"specz/internal/zprog"
	"specz/internal/zsim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := zprog.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Class != "QSO" || cfg.Count != 10 {
		t.Fatal("default class/count:", cfg.Class, cfg.Count)
	}
	if cfg.Simulator != zsim.DefaultSimBin || cfg.Fitter != zsim.DefaultFitterBin {
		t.Fatal("default tools:", cfg.Simulator, cfg.Fitter)
	}
	if len(cfg.Runs) != 1 || cfg.Runs[0].Conditions != nil {
		t.Fatalf("default runs: %+v", cfg.Runs)
	}
}

const testYAML = `
class: ELG
count: 25
repeatable: true
zrange: [0.8, 1.2]
mp: 4
runs:
  - name: dark
  - name: bright
    conditions:
      moonfrac: 0.9
      moonalt: 70
      moonsep: 20
      airmass: 1.2
  - name: gray
    when: 2026-03-07T08:00:00Z
    target_ra: 150
    target_dec: 2.2
`

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "specz.yaml")
	if err := os.WriteFile(fn, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestLoadConfig(t *testing.T) {
	cfg, err := zprog.LoadConfig(writeConfig(t, testYAML))
	if err != nil {
		t.Fatal(err)
	}
	if err = cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Class != "ELG" || cfg.Count != 25 || !cfg.Repeatable || cfg.MP != 4 {
		t.Fatalf("loaded config: %+v", cfg)
	}
	if cfg.ZRange == nil || cfg.ZRange[0] != .8 || cfg.ZRange[1] != 1.2 {
		t.Fatal("zrange:", cfg.ZRange)
	}
	// unset keys keep their defaults
	if cfg.Fitter != zsim.DefaultFitterBin || cfg.Obscode != "695" || !cfg.Plots {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if len(cfg.Runs) != 3 {
		t.Fatalf("runs: %+v", cfg.Runs)
	}
	br := cfg.Runs[1]
	if br.Conditions == nil || br.Conditions.MoonFrac != .9 ||
		br.Conditions.Airmass != 1.2 {
		t.Fatalf("bright run: %+v", br)
	}
	gr := cfg.Runs[2]
	if gr.Conditions != nil || gr.TargetRA != 150 || gr.TargetDec != 2.2 {
		t.Fatalf("gray run: %+v", gr)
	}
	if want := time.Date(2026, 3, 7, 8, 0, 0, 0, time.UTC); !gr.When.Equal(want) {
		t.Fatal("gray when:", gr.When)
	}
}

func TestLoadConfigMinimal(t *testing.T) {
	cfg, err := zprog.LoadConfig(writeConfig(t, "count: 3\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Count != 3 || cfg.Class != "QSO" || len(cfg.Runs) != 1 {
		t.Fatalf("minimal config: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := zprog.LoadConfig(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("no error for missing file")
	}
	if _, err := zprog.LoadConfig(writeConfig(t, ":not yaml\n\t")); err == nil {
		t.Fatal("no error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	mod := func(f func(*zprog.Config)) *zprog.Config {
		cfg := zprog.DefaultConfig()
		f(cfg)
		return cfg
	}
	for _, tc := range []struct {
		desc string
		cfg  *zprog.Config
	}{
		{"bad class", mod(func(c *zprog.Config) { c.Class = "FOO" })},
		{"lower class", mod(func(c *zprog.Config) { c.Class = "qso" })},
		{"zero count", mod(func(c *zprog.Config) { c.Count = 0 })},
		{"negative mp", mod(func(c *zprog.Config) { c.MP = -1 })},
		{"no runs", mod(func(c *zprog.Config) { c.Runs = nil })},
		{"unnamed run", mod(func(c *zprog.Config) {
			c.Runs = []zprog.RunSpec{{}}
		})},
		{"duplicate names", mod(func(c *zprog.Config) {
			c.Runs = []zprog.RunSpec{{Name: "a"}, {Name: "a"}}
		})},
		{"bad conditions", mod(func(c *zprog.Config) {
			c.Runs = []zprog.RunSpec{{Name: "a",
				Conditions: &zsim.Conditions{MoonFrac: 2, Airmass: 1}}}
		})},
		{"bad target dec", mod(func(c *zprog.Config) {
			c.Runs = []zprog.RunSpec{{Name: "a",
				When: time.Now(), TargetDec: 91}}
		})},
	} {
		if err := tc.cfg.Validate(); err == nil {
			t.Fatal("no error for", tc.desc)
		}
	}
}
