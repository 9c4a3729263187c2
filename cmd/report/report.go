// report generates the per-bin tuning report (and optional bar chart)
// for one or more classified token files, per §6.
package main

import (
	"flag"
	"log"

	"gonum.org/v1/plot/vg"

	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/heuristics"
	"github.com/corranwm/correctocr/internal/tokens"
)

var (
	inPath   = flag.String("in", "", "path to a classified TSV token record file")
	textOut  = flag.String("text", "", "path to write the text report")
	plotOut  = flag.String("plot", "", "path to write the bar chart (optional, PNG)")
	k        = flag.Int("k", 4, "number of k-best candidates present in the token file")
	plotW    = flag.Float64("plotwidth", 6, "plot width, in inches")
	plotH    = flag.Float64("plotheight", 4, "plot height, in inches")
)

func main() {
	flag.Parse()
	if *inPath == "" || *textOut == "" {
		log.Fatal("report: -in and -text are required")
	}

	toks, err := tokens.LoadList(*inPath, *k)
	if err != nil {
		fileio.Exit(&fileio.IOError{Path: *inPath, Err: err})
	}

	r := heuristics.NewReport(toks)
	if err := r.Write(*textOut); err != nil {
		fileio.Exit(err)
	}
	log.Printf("wrote text report to %s", *textOut)

	if *plotOut != "" {
		if err := r.Plot(*plotOut, vg.Length(*plotW)*vg.Inch, vg.Length(*plotH)*vg.Inch); err != nil {
			fileio.Exit(&fileio.IOError{Path: *plotOut, Err: err})
		}
		log.Printf("wrote bar chart to %s", *plotOut)
	}
}
