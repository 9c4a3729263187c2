package pipeline

import (
	"context"
	"testing"

	"github.com/corranwm/correctocr/internal/align"
	"github.com/corranwm/correctocr/internal/dictionary"
	"github.com/corranwm/correctocr/internal/heuristics"
	"github.com/corranwm/correctocr/internal/hmm"
	"github.com/corranwm/correctocr/internal/tokens"
)

type fixedTokenizer struct {
	toks tokens.TokenList
}

func (f fixedTokenizer) Tokenize(ctx context.Context, documentID, path string) (tokens.TokenList, error) {
	return f.toks, nil
}

func newTestHMM(t *testing.T) *hmm.HMM {
	t.Helper()
	confusion := align.ConfusionCounts{}
	dict := dictionary.New(false)
	dict.Add("words", "test")

	builder := &hmm.Builder{Alpha: 1e-3, Alphabet: []string{"t", "e", "s"}}
	params := builder.Build(confusion, []string{"test"}, dict)
	h, err := hmm.New(params)
	if err != nil {
		t.Fatalf("hmm.New: %v", err)
	}
	return h
}

// TestAutocorrectIdempotence covers property 8: running the pipeline
// twice over the same document with the same HMM produces identical
// tokens.
func TestAutocorrectIdempotence(t *testing.T) {
	dict := dictionary.New(false)
	dict.Add("words", "test")
	h := newTestHMM(t)

	toks := tokens.TokenList{{Original: "test", Index: 0}}
	orch := &Orchestrator{
		Tokenizer:  fixedTokenizer{toks: toks},
		HMM:        h,
		Dictionary: dict,
		Settings: heuristics.Settings{
			1: tokens.HeuristicOriginal, 2: tokens.HeuristicOriginal, 3: tokens.HeuristicOriginal,
			4: tokens.HeuristicKBest, 5: tokens.HeuristicAnnotator, 6: tokens.HeuristicAnnotator,
			7: tokens.HeuristicOriginal, 8: tokens.HeuristicAnnotator, 9: tokens.HeuristicAnnotator,
		},
		K: 2,
	}

	ctx := context.Background()
	first, err := orch.ProcessDocument(ctx, Document{ID: "doc1", Path: "doc1.txt"}, false)
	if err != nil {
		t.Fatalf("first ProcessDocument: %v", err)
	}
	second, err := orch.ProcessDocument(ctx, Document{ID: "doc1", Path: "doc1.txt"}, false)
	if err != nil {
		t.Fatalf("second ProcessDocument: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("token count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Gold != second[i].Gold || first[i].Bin != second[i].Bin {
			t.Errorf("token %d differs across runs: gold %q/%q bin %d/%d",
				i, first[i].Gold, second[i].Gold, first[i].Bin, second[i].Bin)
		}
	}
}

func TestDehyphenateMergesAcrossLineBreak(t *testing.T) {
	dict := dictionary.New(false)
	dict.Add("words", "correction")

	toks := tokens.TokenList{
		{Original: "correc-", Index: 0},
		{Original: "tion", Index: 1},
	}
	out := Dehyphenate(toks, dict)
	if len(out) != 1 {
		t.Fatalf("expected merge to produce 1 token, got %d", len(out))
	}
	if out[0].Original != "correction" {
		t.Errorf("merged token = %q, want correction", out[0].Original)
	}
	if !out[0].IsHyphenated {
		t.Error("expected merged token to be marked hyphenated")
	}
}

func TestDehyphenateLeavesStandaloneWordsAlone(t *testing.T) {
	dict := dictionary.New(false)
	dict.Add("words", "well-known")
	dict.Add("words", "well")

	toks := tokens.TokenList{
		{Original: "well-", Index: 0},
		{Original: "known", Index: 1},
	}
	out := Dehyphenate(toks, dict)
	if len(out) != 2 {
		t.Fatalf("expected no merge since the unhyphenated prefix is already a word, got %d tokens", len(out))
	}
}
