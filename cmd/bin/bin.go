// bin classifies a decoded token file into heuristic bins and applies
// the configured autocorrect action for each bin.
package main

import (
	"flag"
	"log"

	"github.com/corranwm/correctocr/internal/dictionary"
	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/heuristics"
	"github.com/corranwm/correctocr/internal/tokens"
)

var (
	inPath       = flag.String("in", "", "path to a decoded TSV token record file")
	outPath      = flag.String("out", "", "path to write the classified TSV token record file")
	dictDir      = flag.String("dict", "", "dictionary directory")
	settingsPath = flag.String("settings", "", "bin number / action code settings file")
	k            = flag.Int("k", 4, "number of k-best candidates present in the token file")
)

func main() {
	flag.Parse()
	if *inPath == "" || *outPath == "" || *dictDir == "" || *settingsPath == "" {
		log.Fatal("bin: -in, -out, -dict and -settings are all required")
	}

	toks, err := tokens.LoadList(*inPath, *k)
	if err != nil {
		fileio.Exit(&fileio.IOError{Path: *inPath, Err: err})
	}

	dict, err := dictionary.Load(*dictDir, true)
	if err != nil {
		fileio.Exit(&fileio.IOError{Path: *dictDir, Err: err})
	}

	settings, err := heuristics.LoadSettings(*settingsPath)
	if err != nil {
		fileio.Exit(&fileio.IOError{Path: *settingsPath, Err: err})
	}

	failed := 0
	for _, t := range toks {
		if err := heuristics.Classify(t, dict, settings); err != nil {
			log.Printf("bin: token %q: %v", t.Original, err)
			t.HeuristicAction = tokens.HeuristicAnnotator
			failed++
			continue
		}
		heuristics.Autocorrect(t)
	}

	if err := tokens.SaveList(*outPath, toks, *k); err != nil {
		fileio.Exit(&fileio.IOError{Path: *outPath, Err: err})
	}
	log.Printf("classified %d tokens (%d sent to annotator) to %s", len(toks), failed, *outPath)
}
