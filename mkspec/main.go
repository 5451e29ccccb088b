// Public domain.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soniakeys/exit"

	"specz/internal/specio"
	"specz/internal/ztempl"
)

const versionString = "mkspec version 0.1 Go source."
const copyrightString = "Public domain."
const scratchEnv = "SCRATCH"

func main() {
	defer exit.Handler()

	class := flag.String("t", "QSO", "")
	count := flag.Int("n", 10, "")
	out := flag.String("o", "", "")
	seed := flag.Uint64("s", 0, "")
	repeatable := flag.Bool("r", false, "")
	vers := flag.Bool("v", false, "")
	flag.Usage = func() {
		os.Stderr.WriteString(`Usage:
  mkspec [options]             generate templates, write spectra + truth
  mkspec -v                    display version and copyright

Options:
  -t <class>    target class (QSO ELG LRG BGS STD WD STAR)
  -n <count>    number of templates
  -o <file>     output spectra file
  -s <seed>     random seed
  -r            repeatable output for a fixed seed

For full documentation:
   go doc specz/mkspec
`)
	}
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(1)
	}

	set, err := ztempl.Generate(strings.ToUpper(*class), *count, ztempl.Options{
		Seed:       *seed,
		Repeatable: *repeatable,
	})
	if err != nil {
		exit.Log(err)
	}

	specPath := *out
	if specPath == "" {
		dir := os.Getenv(scratchEnv)
		if dir == "" {
			dir = "."
		}
		specPath = filepath.Join(dir,
			strings.ToLower(*class)+"-templates.fits")
	}
	truthPath := strings.TrimSuffix(specPath, filepath.Ext(specPath)) +
		"-truth.fits"

	fmt.Println("Writing", specPath)
	if err = specio.WriteSimInput(specPath, set.Wave, set.Flux); err != nil {
		exit.Log(err)
	}
	fmt.Println("Writing", truthPath)
	if err = specio.WriteTruth(truthPath, set.Meta, set.Type); err != nil {
		exit.Log(err)
	}
	fmt.Println(len(set.Flux), "templates written")
}
