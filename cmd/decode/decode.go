// decode runs the HMM's k-best decoder in batch over a token file,
// filling in each token's KBest candidates.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/corranwm/correctocr/internal/dictionary"
	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/hmm"
	"github.com/corranwm/correctocr/internal/tokens"
)

var (
	inPath         = flag.String("in", "", "path to a TSV token record file")
	outPath        = flag.String("out", "", "path to write the decoded TSV token record file")
	paramsPath     = flag.String("params", "", "HMM parameter file")
	multicharsPath = flag.String("multichars", "", "multichar substitution table (optional)")
	cachePath      = flag.String("cache", "", "k-best LRU cache file (optional)")
	dictDir        = flag.String("dict", "", "dictionary directory, used for multichar retry lookups")
	k              = flag.Int("k", 4, "number of candidates to keep per token")
	force          = flag.Bool("force", false, "re-decode tokens that already have k-best candidates")
)

func main() {
	flag.Parse()
	if *inPath == "" || *outPath == "" || *paramsPath == "" {
		log.Fatal("decode: -in, -out and -params are all required")
	}

	toks, err := tokens.LoadList(*inPath, *k)
	if err != nil {
		fileio.Exit(&fileio.IOError{Path: *inPath, Err: err})
	}

	h, err := hmm.Load(*paramsPath, *multicharsPath, *cachePath, hmm.DefaultCacheCapacity)
	if err != nil {
		fileio.Exit(err)
	}

	var dict *dictionary.Dictionary
	if *dictDir != "" {
		dict, err = dictionary.Load(*dictDir, true)
		if err != nil {
			fileio.Exit(&fileio.IOError{Path: *dictDir, Err: err})
		}
	}

	ctx := context.Background()
	changed, err := h.GenerateKBest(ctx, toks, *k, *force, dict)
	if err != nil {
		fileio.Exit(err)
	}
	if changed {
		if err := h.SaveCache(); err != nil {
			log.Printf("decode: saving cache: %v", err)
		}
	}

	if err := tokens.SaveList(*outPath, toks, *k); err != nil {
		fileio.Exit(&fileio.IOError{Path: *outPath, Err: err})
	}
	log.Printf("decoded %d tokens to %s", len(toks), *outPath)
}
