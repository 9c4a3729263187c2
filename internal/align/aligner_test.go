package align

import (
	"testing"

	"github.com/corranwm/correctocr/internal/tokens"
)

func makeTokens(words ...string) tokens.TokenList {
	out := make(tokens.TokenList, len(words))
	for i, w := range words {
		out[i] = &tokens.Token{Original: w, Index: i}
	}
	return out
}

// TestSelfAlignment covers property 7: aligning a token list against
// itself must produce only self-mappings, nothing in the confusion
// table off the diagonal.
func TestSelfAlignment(t *testing.T) {
	toks := makeTokens("This", "is", "a", "test", ".")
	a := New(DefaultConfig())
	_, words, confusion := a.Alignments(toks, toks)

	for _, tok := range toks {
		if got := words[tok.Original][tok.Index]; got != tok.Original {
			t.Errorf("word alignment for %q at %d = %q, want self", tok.Original, tok.Index, got)
		}
	}
	for left, row := range confusion {
		for right, n := range row {
			if left != right && n > 0 {
				t.Errorf("self-alignment produced off-diagonal confusion %q -> %q: %d", left, right, n)
			}
		}
	}
}

// TestScenarioS5 covers scenario S5: a single substituted character
// inside an otherwise-identical token sequence must produce exactly
// one off-diagonal confusion entry, '3' -> 'e'.
func TestScenarioS5(t *testing.T) {
	original := makeTokens("This", "is", "a", "t3st")
	gold := makeTokens("This", "is", "a", "test")

	a := New(DefaultConfig())
	_, _, confusion := a.Alignments(original, gold)

	if n := confusion["3"]["e"]; n != 1 {
		t.Errorf("confusion['3']['e'] = %d, want 1", n)
	}
	for left, row := range confusion {
		for right, n := range row {
			if left == "3" && right == "e" {
				continue
			}
			if left != right && n > 0 {
				t.Errorf("unexpected off-diagonal confusion %q -> %q: %d", left, right, n)
			}
		}
	}
}

// TestEqualLengthReplaceIsPositionalZip guards against alignWords
// (the LCS matcher) being used for equal-length OpReplace token
// pairs: "teh" vs "the" is a same-length replace with no single
// non-shifting substitution, so an LCS matcher would align on the
// shared "t"/"h" characters and report a bogus empty-string
// confusion entry instead of the straightforward positional e<->h
// swap the original implementation records.
func TestEqualLengthReplaceIsPositionalZip(t *testing.T) {
	original := makeTokens("teh")
	gold := makeTokens("the")

	a := New(DefaultConfig())
	_, _, confusion := a.Alignments(original, gold)

	if n := confusion["e"]["h"]; n != 1 {
		t.Errorf("confusion['e']['h'] = %d, want 1", n)
	}
	if n := confusion["h"]["e"]; n != 1 {
		t.Errorf("confusion['h']['e'] = %d, want 1", n)
	}
	if n := confusion[""]["h"]; n != 0 {
		t.Errorf("confusion[''][...] = %d, want 0 (no LCS-matcher artifact)", n)
	}
}

func TestTokenMatchThresholds(t *testing.T) {
	cfg := DefaultConfig()
	a := New(cfg)
	original := makeTokens("corect")
	gold := makeTokens("correct")

	_, words, _ := a.Alignments(original, gold)
	if got := words["corect"][0]; got != "correct" {
		t.Errorf("expected similar short tokens to align, got %q", got)
	}
}
