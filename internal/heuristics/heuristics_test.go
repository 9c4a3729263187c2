package heuristics

import (
	"testing"

	"github.com/corranwm/correctocr/internal/dictionary"
	"github.com/corranwm/correctocr/internal/tokens"
)

// TestScenarioS2 covers a token whose original is already correct and
// in the dictionary: bin 1, action original, autocorrect is a no-op
// copy of original.
func TestScenarioS2(t *testing.T) {
	dict := dictionary.New(false)
	dict.Add("words", "test")

	tok := &tokens.Token{
		Original: "test",
		KBest:    map[int]tokens.KBestItem{1: {Candidate: "test", Probability: 0.99}},
	}
	settings := Settings{1: tokens.HeuristicOriginal}

	if err := Classify(tok, dict, settings); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if tok.Bin != 1 {
		t.Errorf("bin = %d, want 1", tok.Bin)
	}
	if tok.HeuristicAction != tokens.HeuristicOriginal {
		t.Errorf("action = %q, want original", tok.HeuristicAction)
	}
	Autocorrect(tok)
	if tok.Gold != "test" {
		t.Errorf("gold = %q, want test", tok.Gold)
	}
}

// TestScenarioS3 covers a misrecognized token whose top candidate is
// correct: bin 4, action kbest, autocorrect adopts the top candidate.
func TestScenarioS3(t *testing.T) {
	dict := dictionary.New(false)
	dict.Add("words", "the")

	tok := &tokens.Token{
		Original: "teh",
		KBest: map[int]tokens.KBestItem{
			1: {Candidate: "the", Probability: 0.9},
			2: {Candidate: "teh", Probability: 0.1},
		},
	}
	settings := Settings{4: tokens.HeuristicKBest}

	if err := Classify(tok, dict, settings); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if tok.Bin != 4 {
		t.Errorf("bin = %d, want 4", tok.Bin)
	}
	Autocorrect(tok)
	if tok.Gold != "the" {
		t.Errorf("gold = %q, want the", tok.Gold)
	}
}

// TestBinTotality covers property 5: every combination of inputs
// matches exactly one bin.
func TestBinTotality(t *testing.T) {
	dict := dictionary.New(false)
	dict.Add("words", "alpha")
	dict.Add("words", "beta")

	cases := []struct {
		name     string
		original string
		kbest    map[int]tokens.KBestItem
	}{
		{"same-in-dict", "alpha", map[int]tokens.KBestItem{1: {Candidate: "alpha", Probability: 1}}},
		{"same-not-in-dict-zerokd", "zzz", map[int]tokens.KBestItem{1: {Candidate: "zzz", Probability: 1}, 2: {Candidate: "yyy", Probability: 0.5}}},
		{"same-not-in-dict-somekd", "zzz", map[int]tokens.KBestItem{1: {Candidate: "zzz", Probability: 1}, 2: {Candidate: "beta", Probability: 0.5}}},
		{"diff-not-in-dict-k-in-dict", "zzz", map[int]tokens.KBestItem{1: {Candidate: "alpha", Probability: 1}}},
		{"diff-not-in-dict-zerokd", "zzz", map[int]tokens.KBestItem{1: {Candidate: "yyy", Probability: 1}, 2: {Candidate: "xxx", Probability: 0.5}}},
		{"diff-not-in-dict-somekd", "zzz", map[int]tokens.KBestItem{1: {Candidate: "yyy", Probability: 1}, 2: {Candidate: "beta", Probability: 0.5}}},
		{"diff-in-dict-k-in-dict", "alpha", map[int]tokens.KBestItem{1: {Candidate: "beta", Probability: 1}}},
		{"diff-in-dict-zerokd", "alpha", map[int]tokens.KBestItem{1: {Candidate: "yyy", Probability: 1}, 2: {Candidate: "xxx", Probability: 0.5}}},
		{"diff-in-dict-somekd", "alpha", map[int]tokens.KBestItem{1: {Candidate: "yyy", Probability: 1}, 2: {Candidate: "beta", Probability: 0.5}}},
	}

	settings := Settings{
		1: tokens.HeuristicOriginal, 2: tokens.HeuristicOriginal, 3: tokens.HeuristicOriginal,
		4: tokens.HeuristicOriginal, 5: tokens.HeuristicOriginal, 6: tokens.HeuristicOriginal,
		7: tokens.HeuristicOriginal, 8: tokens.HeuristicOriginal, 9: tokens.HeuristicOriginal,
	}
	seen := make(map[int]bool)
	for _, c := range cases {
		tok := &tokens.Token{Original: c.original, KBest: c.kbest}
		if err := Classify(tok, dict, settings); err != nil {
			t.Errorf("%s: Classify: %v", c.name, err)
			continue
		}
		if tok.Bin < 1 || tok.Bin > 9 {
			t.Errorf("%s: bin = %d, out of range", c.name, tok.Bin)
		}
		seen[tok.Bin] = true
	}
	if len(seen) != 9 {
		t.Errorf("expected all 9 bins to be exercised, saw %d", len(seen))
	}
}
