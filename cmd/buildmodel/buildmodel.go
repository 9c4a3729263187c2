// buildmodel runs HMMBuilder over a confusion count table and a
// gold-word corpus, and writes the resulting HMM parameter file.
package main

import (
	"flag"
	"log"

	"github.com/corranwm/correctocr/internal/align"
	"github.com/corranwm/correctocr/internal/dictionary"
	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/hmm"
)

var (
	confusionPath = flag.String("confusion", "", "path to a confusion count table (JSON), from cmd/align")
	goldWordsPath = flag.String("goldwords", "", "path to a flat gold-word list, one per line")
	dictDir       = flag.String("dict", "", "dictionary directory")
	alphabet      = flag.String("alphabet", "", "configured alphabet, as a single string of characters")
	removal       = flag.String("removal", "", "characters to exclude from the final alphabet")
	alpha         = flag.Float64("alpha", 1e-4, "additive (Laplace) smoothing constant")
	outPath       = flag.String("out", "", "path to write the HMM parameter file")
)

func main() {
	flag.Parse()
	if *confusionPath == "" || *goldWordsPath == "" || *outPath == "" {
		log.Fatal("buildmodel: -confusion, -goldwords and -out are all required")
	}

	var confusion align.ConfusionCounts
	if err := fileio.LoadJSON(*confusionPath, &confusion); err != nil {
		fileio.Exit(&fileio.IOError{Path: *confusionPath, Err: err})
	}

	goldWords, err := fileio.LoadLines(*goldWordsPath, 0)
	if err != nil {
		fileio.Exit(&fileio.IOError{Path: *goldWordsPath, Err: err})
	}

	dict := dictionary.New(true)
	if *dictDir != "" {
		dict, err = dictionary.Load(*dictDir, true)
		if err != nil {
			fileio.Exit(&fileio.IOError{Path: *dictDir, Err: err})
		}
	}

	builder := &hmm.Builder{
		Alpha:       *alpha,
		Alphabet:    splitChars(*alphabet),
		RemovalList: splitChars(*removal),
	}
	params := builder.Build(confusion, goldWords, dict)

	h, err := hmm.New(params)
	if err != nil {
		fileio.Exit(err)
	}
	if err := h.Save(*outPath); err != nil {
		fileio.Exit(err)
	}
	log.Printf("wrote HMM over %d states to %s", len(params.Init), *outPath)
}

func splitChars(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
