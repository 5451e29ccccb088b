// Public domain.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"specz/internal/specio"
	"specz/internal/zcompare"
)

const versionString = "zcomp version 0.1"
const copyrightString = "Public domain."

func main() {
	plotDir := flag.String("plot", "", "write scatter plots into dir")
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Usage = func() {
		os.Stderr.WriteString(
			"Usage: zcomp [options] <truth-file> <zbest-file>...\n")
		flag.PrintDefaults()
		os.Stderr.WriteString(`
For full documentation:
   go doc specz/zcomp
`)
	}
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}

	meta, _, err := specio.ReadTruth(flag.Arg(0))
	if err != nil {
		log.Fatalln("truth file:", err)
	}

	var runs []*zcompare.Run
	for _, fn := range flag.Args()[1:] {
		zb, err := specio.ReadZBest(fn)
		if err != nil {
			log.Fatalln(err)
		}
		name := strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn))
		name = strings.TrimSuffix(name, "-zbest")
		r, err := zcompare.Compare(name, meta, zb)
		if err != nil {
			log.Fatalln(err)
		}
		runs = append(runs, r)
	}

	zcompare.Report(os.Stdout, runs)

	if *plotDir != "" {
		if err = os.MkdirAll(*plotDir, 0755); err != nil {
			log.Fatalln(err)
		}
		zz := filepath.Join(*plotDir, "zz.png")
		dv := filepath.Join(*plotDir, "dv.png")
		if err = zcompare.ScatterZZ(runs, zz); err != nil {
			log.Fatalln(err)
		}
		if err = zcompare.ScatterDV(runs, dv); err != nil {
			log.Fatalln(err)
		}
		fmt.Println("Plots written to", *plotDir)
	}
}
