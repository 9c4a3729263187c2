// align produces character-level alignments and a confusion count
// table from a parallel corpus of (original, gold) text files.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/corranwm/correctocr/internal/align"
	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/tokenize"
)

var (
	originalPath = flag.String("original", "", "path to the OCR-produced text")
	goldPath     = flag.String("gold", "", "path to the corrected (gold) text")
	outPath      = flag.String("out", "", "path to write the confusion count table (JSON)")
)

func main() {
	flag.Parse()
	if *originalPath == "" || *goldPath == "" || *outPath == "" {
		log.Fatal("align: -original, -gold and -out are all required")
	}

	ctx := context.Background()
	tk := tokenize.PlainText{}

	originalToks, err := tk.Tokenize(ctx, "original", *originalPath)
	if err != nil {
		fileio.Exit(&fileio.IOError{Path: *originalPath, Err: err})
	}
	goldToks, err := tk.Tokenize(ctx, "gold", *goldPath)
	if err != nil {
		fileio.Exit(&fileio.IOError{Path: *goldPath, Err: err})
	}

	aligner := align.New(align.DefaultConfig())
	_, _, confusion := aligner.Alignments(originalToks, goldToks)

	if err := fileio.SaveJSON(*outPath, confusion); err != nil {
		fileio.Exit(&fileio.IOError{Path: *outPath, Err: err})
	}
	log.Printf("wrote confusion table for %d observed characters to %s", len(confusion), *outPath)
}
