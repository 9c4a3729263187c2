// Package pipeline implements the orchestrator of §4.6: per document,
// tokenize -> generate k-best -> bin -> autocorrect, with an optional
// dehyphenation pass, idempotence unless forced, and per-token /
// per-document error isolation per §7.
package pipeline

import (
	"context"
	"log"
	"strings"
	"sync"
	"unicode"

	"github.com/corranwm/correctocr/internal/dictionary"
	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/heuristics"
	"github.com/corranwm/correctocr/internal/hmm"
	"github.com/corranwm/correctocr/internal/tokenize"
	"github.com/corranwm/correctocr/internal/tokens"
)

// Document names one unit of per-document work.
type Document struct {
	ID   string
	Path string
}

// Orchestrator wires the four core components together for the
// pipeline's four operations. It holds no per-run state: the same
// Orchestrator can drive ProcessDocument concurrently across
// documents (§5), since the HMM and Dictionary are safe for
// concurrent reads and guard their own mutable state internally.
type Orchestrator struct {
	Tokenizer  tokenize.Tokenizer
	HMM        *hmm.HMM
	Dictionary *dictionary.Dictionary
	Settings   heuristics.Settings
	K          int
	Dehyphenate bool
	Log         *log.Logger
}

func (o *Orchestrator) logger() *log.Logger {
	if o.Log != nil {
		return o.Log
	}
	return log.Default()
}

// ProcessDocument runs tokenize -> kbest -> bin -> autocorrect over a
// single document. A token for which bin classification finds no match
// is logged and left for annotator review; it never aborts the
// document. A decode over unseen characters yields zero-probability
// candidates and the token is binned like any other. A tokenize or I/O
// failure aborts this document only, per §7.
func (o *Orchestrator) ProcessDocument(ctx context.Context, doc Document, force bool) (tokens.TokenList, error) {
	toks, err := o.Tokenizer.Tokenize(ctx, doc.ID, doc.Path)
	if err != nil {
		return nil, &fileio.IOError{Path: doc.Path, Err: err}
	}

	if o.Dehyphenate {
		toks = Dehyphenate(toks, o.Dictionary)
	}

	if _, err := o.HMM.GenerateKBest(ctx, toks, o.K, force, o.Dictionary); err != nil {
		return toks, err
	}

	for _, t := range toks {
		if t.IsDiscarded {
			continue
		}
		if t.GoldIsHuman() && !force {
			continue
		}
		if err := heuristics.Classify(t, o.Dictionary, o.Settings); err != nil {
			o.logger().Printf("bin classification failed: %v", err)
			t.HeuristicAction = tokens.HeuristicAnnotator
			continue
		}
		heuristics.Autocorrect(t)
	}
	return toks, nil
}

// ProcessAll fans documents out over a bounded worker pool (§5):
// documents are embarrassingly parallel, sharing only the HMM cache
// and the dictionary, both of which guard their own concurrency.
func (o *Orchestrator) ProcessAll(ctx context.Context, docs []Document, workers int, force bool) map[string]tokens.TokenList {
	if workers < 1 {
		workers = 1
	}
	results := make(map[string]tokens.TokenList, len(docs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, workers)
	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return results
		default:
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(d Document) {
			defer wg.Done()
			defer func() { <-sem }()
			toks, err := o.ProcessDocument(ctx, d, force)
			if err != nil {
				o.logger().Printf("document %s aborted: %v", d.ID, err)
				return
			}
			mu.Lock()
			results[d.ID] = toks
			mu.Unlock()
		}(doc)
	}
	wg.Wait()
	return results
}

// Dehyphenate merges a token ending in a Unicode dash with the
// following token when the merged form is a dictionary hit and the
// unmerged prefix is not, per §4.6.
func Dehyphenate(toks tokens.TokenList, dict *dictionary.Dictionary) tokens.TokenList {
	out := make(tokens.TokenList, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if i+1 < len(toks) && endsInDash(t.Original) {
			next := toks[i+1]
			prefix := strings.TrimRightFunc(t.Original, isDash)
			merged := prefix + next.Original
			if dict.Contains(merged) && !dict.Contains(prefix) {
				combined := &tokens.Token{
					Kind:         t.Kind,
					Original:     merged,
					DocumentID:   t.DocumentID,
					Index:        t.Index,
					Frame:        t.Frame,
					IsHyphenated: true,
				}
				out = append(out, combined)
				i++
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func isDash(r rune) bool {
	return unicode.Is(unicode.Pd, r) || r == '-'
}

func endsInDash(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)
	return isDash(r[len(r)-1])
}
