// correct runs the full per-document pipeline: tokenize, decode, bin
// and autocorrect, writing one classified token file per input
// document.
package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"strings"

	"github.com/corranwm/correctocr/internal/config"
	"github.com/corranwm/correctocr/internal/dictionary"
	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/heuristics"
	"github.com/corranwm/correctocr/internal/hmm"
	"github.com/corranwm/correctocr/internal/pipeline"
	"github.com/corranwm/correctocr/internal/tokenize"
	"github.com/corranwm/correctocr/internal/tokens"
)

var (
	configPath   = flag.String("config", "", "JSON configuration file (optional, env overrides still apply)")
	settingsPath = flag.String("settings", "", "bin number / action code settings file")
	outDir       = flag.String("outdir", ".", "directory to write one TSV token file per document")
	dehyphenate  = flag.Bool("dehyphenate", true, "merge hyphenated line-break splits before decoding")
	forceFlag    = flag.Bool("force", false, "re-run human-reviewed tokens and already-decoded tokens")
)

func main() {
	flag.Parse()
	if *settingsPath == "" {
		log.Fatal("correct: -settings is required")
	}
	if flag.NArg() == 0 {
		log.Fatal("correct: at least one document path is required")
	}

	cfg, err := config.Load(*configPath, "correctocr")
	if err != nil {
		fileio.Exit(err)
	}
	force := cfg.Pipeline.Force || *forceFlag

	dict, err := dictionary.Load(cfg.Dictionary.Dir, cfg.Dictionary.IgnoreCase)
	if err != nil {
		fileio.Exit(&fileio.IOError{Path: cfg.Dictionary.Dir, Err: err})
	}

	h, err := hmm.Load(cfg.HMM.ParamsPath, cfg.HMM.MulticharsPath, cfg.HMM.CachePath, cfg.HMM.CacheCapacity)
	if err != nil {
		fileio.Exit(err)
	}

	settings, err := heuristics.LoadSettings(*settingsPath)
	if err != nil {
		fileio.Exit(&fileio.IOError{Path: *settingsPath, Err: err})
	}

	orch := &pipeline.Orchestrator{
		Tokenizer:   tokenize.PlainText{},
		HMM:         h,
		Dictionary:  dict,
		Settings:    settings,
		K:           cfg.HMM.K,
		Dehyphenate: *dehyphenate,
	}

	docs := make([]pipeline.Document, len(flag.Args()))
	for i, path := range flag.Args() {
		docs[i] = pipeline.Document{
			ID:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Path: path,
		}
	}

	ctx := context.Background()
	workers := cfg.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}
	results := orch.ProcessAll(ctx, docs, workers, force)

	for _, doc := range docs {
		toks, ok := results[doc.ID]
		if !ok {
			log.Printf("correct: %s produced no output, skipping", doc.ID)
			continue
		}
		outPath := filepath.Join(*outDir, doc.ID+".tokens.tsv")
		if err := tokens.SaveList(outPath, toks, cfg.HMM.K); err != nil {
			log.Printf("correct: writing %s: %v", outPath, err)
			continue
		}
		log.Printf("corrected %d tokens of %s to %s", len(toks), doc.ID, outPath)
	}

	if err := h.SaveCache(); err != nil {
		log.Printf("correct: saving HMM cache: %v", err)
	}
}
