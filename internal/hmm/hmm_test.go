package hmm

import (
	"context"
	"testing"

	"github.com/corranwm/correctocr/internal/align"
	"github.com/corranwm/correctocr/internal/dictionary"
	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/tokens"
)

func trainScenarioS1(t *testing.T) *HMM {
	t.Helper()
	confusion := align.ConfusionCounts{}
	aligner := align.New(align.DefaultConfig())
	original := tokens.TokenList{{Original: "Slring", Index: 0}}
	gold := tokens.TokenList{{Original: "String", Index: 0}}
	_, _, conf := aligner.Alignments(original, gold)
	for left, row := range conf {
		for right, n := range row {
			if confusion[left] == nil {
				confusion[left] = make(map[string]int)
			}
			confusion[left][right] += n
		}
	}

	dict := dictionary.New(false)
	dict.Add("words", "String")

	builder := &Builder{
		Alpha:    1e-4,
		Alphabet: []string{"S", "l", "t", "r", "i", "n", "g"},
	}
	params := builder.Build(confusion, []string{"String"}, dict)
	h, err := New(params)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

// TestScenarioS1 trains on a single aligned pair and checks that the
// top-1 decode of the misspelling recovers the gold word.
func TestScenarioS1(t *testing.T) {
	h := trainScenarioS1(t)
	best := h.KBest("Slring", 1)
	if len(best) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(best))
	}
	if best[0].Candidate != "String" {
		t.Errorf("top candidate = %q, want %q", best[0].Candidate, "String")
	}
	if best[0].Probability <= 0 {
		t.Errorf("top candidate probability = %v, want > 0", best[0].Probability)
	}
}

// TestRowStochastic covers invariant 1.
func TestRowStochastic(t *testing.T) {
	h := trainScenarioS1(t)
	if err := h.RowStochastic(1e-9); err != nil {
		t.Errorf("RowStochastic: %v", err)
	}
}

// TestBeamMonotonicityAndLength covers invariants 2 and 3.
func TestBeamMonotonicityAndLength(t *testing.T) {
	h := trainScenarioS1(t)
	k := 4
	best := h.KBest("Slring", k)
	if len(best) != k {
		t.Fatalf("len(kbest) = %d, want %d", len(best), k)
	}
	for i := 1; i < len(best); i++ {
		if best[i-1].Probability < best[i].Probability {
			t.Errorf("beam not sorted descending at %d: %v < %v", i, best[i-1].Probability, best[i].Probability)
		}
	}
}

// TestScenarioS6CacheCorrectness covers invariant 4 and scenario S6:
// two successive decodes return identical results, and Save deletes
// the cache file.
func TestScenarioS6CacheCorrectness(t *testing.T) {
	h := trainScenarioS1(t)
	h.cache = newLRUCache(10)
	h.cache.path = ""

	dict := dictionary.New(false)
	dict.Add("words", "String")

	first := h.Decode("Slring", 1, dict)
	second := h.Decode("Slring", 1, dict)
	if len(first) != len(second) {
		t.Fatalf("cache returned different lengths: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("cache hit/miss mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}

	h.cache.path = "/tmp/correctocr-test-cache.json"
	if err := h.cache.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := h.Save("/tmp/correctocr-test-params.json"); err != nil {
		t.Fatalf("HMM.Save: %v", err)
	}
	if fileio.Exists(h.cache.path) {
		t.Errorf("expected cache file to be deleted after retrain-save")
	}
}

func TestGenerateKBestRespectsForce(t *testing.T) {
	h := trainScenarioS1(t)
	dict := dictionary.New(false)
	toks := tokens.TokenList{{Original: "Slring", Index: 0}}

	ctx := context.Background()
	changed, err := h.GenerateKBest(ctx, toks, 1, false, dict)
	if err != nil {
		t.Fatalf("GenerateKBest: %v", err)
	}
	if !changed {
		t.Error("expected first call to change the token")
	}
	toks[0].KBest[1] = tokens.KBestItem{Candidate: "pinned", Probability: 1}

	changed, err = h.GenerateKBest(ctx, toks, 1, false, dict)
	if err != nil {
		t.Fatalf("GenerateKBest: %v", err)
	}
	if changed {
		t.Error("expected no change when kbest already populated and force=false")
	}
	if toks[0].KBest[1].Candidate != "pinned" {
		t.Error("expected existing kbest to be preserved without force")
	}
}
