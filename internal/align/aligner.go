// Package align implements the sequence aligner of §4.2: a two-level
// Ratcliff–Obershelp-style matcher that turns a pair of parallel texts
// (OCR original vs. gold) into a confusion count table and a
// word-level alignment map.
package align

import (
	"strings"

	"github.com/corranwm/correctocr/internal/tokens"
)

// Config exposes the thresholds the original implementation hard-coded,
// per the design note in §9: they are tuning knobs, not literals.
type Config struct {
	// TokenMatchRatio is the Ratcliff-Obershelp ratio that two tokens of
	// any length must exceed to be accepted as a greedy match.
	TokenMatchRatio float64
	// TokenMatchRatioLongToken is the lower ratio that suffices when the
	// left token is longer than TokenMatchLongTokenLength characters.
	TokenMatchRatioLongToken float64
	TokenMatchLongTokenLength int
	// MovedBlockSkipLength is the size a character-level matching block
	// must exceed to be checked for "moved" (re-ordered) content;
	// blocks longer than this whose offset from the previous block
	// differs between the two sides are treated defensively as
	// non-matches rather than confusion-table noise.
	MovedBlockSkipLength int
}

// DefaultConfig mirrors the constants observed in the original
// implementation (§9d): 0.7 / 0.6-after-length-4 / skip-length 4.
func DefaultConfig() Config {
	return Config{
		TokenMatchRatio:           0.7,
		TokenMatchRatioLongToken:  0.6,
		TokenMatchLongTokenLength: 4,
		MovedBlockSkipLength:      4,
	}
}

// Pair is one character-level alignment: Left is what the OCR engine
// produced (the original side), Right is the gold substring it is
// aligned to.
type Pair struct {
	Left, Right string
}

// ConfusionCounts is the two-level counter `count[observed][true] ->
// int` built by the aligner: the outer key comes from the original
// (OCR) text, the inner key from the gold text. Only single-character
// keys survive once HMMBuilder consumes it, but the aligner itself may
// emit multi-rune spans for replace blocks, exactly as the original does.
type ConfusionCounts map[string]map[string]int

func (c ConfusionCounts) add(left, right string) {
	if c[left] == nil {
		c[left] = make(map[string]int)
	}
	c[left][right]++
}

// WordAlignments maps an original token's surface form to the gold
// word it was aligned to, keyed by the token's index in its document.
type WordAlignments map[string]map[int]string

func (w WordAlignments) set(original string, index int, gold string) {
	if w[original] == nil {
		w[original] = make(map[int]string)
	}
	w[original][index] = gold
}

// Aligner produces character-level alignments between a reference
// (gold) token sequence and an observed (original, OCR) token
// sequence.
type Aligner struct {
	Config Config
}

// New returns an Aligner with the given configuration.
func New(cfg Config) *Aligner {
	return &Aligner{Config: cfg}
}

type indexedToken struct {
	index int
	token *tokens.Token
}

// result accumulates the three outputs of Alignments across the
// recursive token- and character-level passes.
type result struct {
	full      []Pair
	words     WordAlignments
	confusion ConfusionCounts
}

// Alignments runs the full two-level alignment of original against
// gold and returns the flat character-pair list, the word-level
// alignment map, and the confusion count table, per §4.2.
func (a *Aligner) Alignments(original, gold tokens.TokenList) ([]Pair, WordAlignments, ConfusionCounts) {
	res := &result{words: make(WordAlignments), confusion: make(ConfusionCounts)}
	if len(original) == 0 || len(gold) == 0 {
		return res.full, res.words, res.confusion
	}

	m := NewMatcher[string](original.Originals(), gold.Originals(), isPunctuationOnly)

	var leftRest, rightRest []indexedToken

	for _, op := range m.GetOpcodes() {
		switch op.Tag {
		case OpEqual:
			for i := op.I1; i < op.I2; i++ {
				tok := original[i]
				for _, ch := range tok.Original {
					res.full = append(res.full, Pair{string(ch), string(ch)})
					res.confusion.add(string(ch), string(ch))
				}
				res.words.set(tok.Original, i, tok.Original)
			}
		case OpReplace:
			if (op.I2 - op.I1) == (op.J2 - op.J1) {
				for off := 0; off < op.I2-op.I1; off++ {
					left := original[op.I1+off]
					right := gold[op.J1+off]
					zipChars(res, left.Original, right.Original)
					res.words.set(left.Original, op.I1+off, right.Original)
				}
			} else {
				left, right := a.alignTokens(res, sliceIndexed(original, op.I1, op.I2), sliceIndexed(gold, op.J1, op.J2))
				leftRest = append(leftRest, left...)
				rightRest = append(rightRest, right...)
			}
		case OpDelete:
			leftRest = append(leftRest, sliceIndexed(original, op.I1, op.I2)...)
		case OpInsert:
			rightRest = append(rightRest, sliceIndexed(gold, op.J1, op.J2)...)
		}
	}

	a.alignTokens(res, leftRest, rightRest)

	return res.full, res.words, res.confusion
}

func sliceIndexed(list tokens.TokenList, lo, hi int) []indexedToken {
	out := make([]indexedToken, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, indexedToken{index: i, token: list[i]})
	}
	return out
}

// alignTokens performs the token-level greedy matching of §4.2: for
// every left token, find the best right token by character-sequence
// similarity ratio, accept the pair if the ratio clears the
// configured threshold, recursively align accepted pairs at the
// character level, and return the unmatched remainder of both sides.
func (a *Aligner) alignTokens(res *result, left, right []indexedToken) (remLeft, remRight []indexedToken) {
	matchedRight := make(map[int]bool)

	for _, lt := range left {
		best := -1
		bestRatio := 0.0
		for ri, rt := range right {
			if matchedRight[ri] {
				continue
			}
			ratio := NewMatcher[rune]([]rune(lt.token.Original), []rune(rt.token.Original), nil).Ratio()
			if ratio > bestRatio {
				best, bestRatio = ri, ratio
			}
			if ratio == 1.0 {
				break
			}
		}
		accept := best >= 0 && (bestRatio > a.Config.TokenMatchRatio ||
			(len([]rune(lt.token.Original)) > a.Config.TokenMatchLongTokenLength && bestRatio > a.Config.TokenMatchRatioLongToken))
		if accept {
			rt := right[best]
			matchedRight[best] = true
			a.alignWords(res, lt.token.Original, rt.token.Original)
			res.words.set(lt.token.Original, lt.index, rt.token.Original)
		} else {
			remLeft = append(remLeft, lt)
		}
	}
	for ri, rt := range right {
		if !matchedRight[ri] {
			remRight = append(remRight, rt)
		}
	}
	return remLeft, remRight
}

// zipChars records a plain positional pairing of two token strings,
// one rune per rune, per the original's
// `zip(leftToken.original, rightToken.original)` (aligner.py): this is
// deliberately NOT a longest-matching-block alignment. Reserving
// alignWords for token-level-matched pairs (alignTokens) avoids the
// LCS matcher inventing an empty-string substitution whenever an
// equal-length replace contains an internal repeated-and-shifted
// character, e.g. "teh" vs "the". Python's zip() truncates to the
// shorter sequence; the two token strings here are usually the same
// rune length (the caller only reaches here when the replace block
// has equal token *counts*, not necessarily equal characters per
// token), so the shorter-string truncation is preserved exactly.
func zipChars(res *result, left, right string) {
	al, ar := []rune(left), []rune(right)
	n := len(al)
	if len(ar) < n {
		n = len(ar)
	}
	for i := 0; i < n; i++ {
		l, r := string(al[i]), string(ar[i])
		res.full = append(res.full, Pair{l, r})
		res.confusion.add(l, r)
	}
}

// alignWords performs the character alignment within one token pair:
// a Ratcliff-Obershelp matcher over runes, with matching blocks
// recorded as self-mappings and the gaps between them recorded as
// substituted spans, per §4.2. Matching blocks longer than
// MovedBlockSkipLength whose offset relative to the previous block
// differs between the two sides are treated as re-ordering artifacts
// and are not recorded as matches.
func (a *Aligner) alignWords(res *result, left, right string) {
	al, ar := []rune(left), []rune(right)
	m := NewMatcher[rune](al, ar, nil)
	blocks := m.GetMatchingBlocks()

	aPos, bPos := 0, 0
	prevA, prevB := 0, 0
	for _, blk := range blocks {
		if blk.Size == 0 {
			continue
		}
		if blk.Size > a.Config.MovedBlockSkipLength && (blk.A-prevA) != (blk.B-prevB) {
			// Defensive against re-ordering artifacts: treat as if this
			// block were not a match at all.
			continue
		}
		if blk.A > aPos || blk.B > bPos {
			aStr := string(al[aPos:blk.A])
			bStr := string(ar[bPos:blk.B])
			if len(aStr) > 0 || len(bStr) > 0 {
				res.full = append(res.full, Pair{aStr, bStr})
				res.confusion.add(aStr, bStr)
			}
		}
		for _, ch := range al[blk.A : blk.A+blk.Size] {
			res.full = append(res.full, Pair{string(ch), string(ch)})
			res.confusion.add(string(ch), string(ch))
		}
		aPos, bPos = blk.A+blk.Size, blk.B+blk.Size
		prevA, prevB = blk.A, blk.B
	}
	if aPos < len(al) || bPos < len(ar) {
		aStr := string(al[aPos:])
		bStr := string(ar[bPos:])
		if len(aStr) > 0 || len(bStr) > 0 {
			res.full = append(res.full, Pair{aStr, bStr})
			res.confusion.add(aStr, bStr)
		}
	}
}

func isPunctuationOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(".,;:!?\"'`´()[]{}<>«»“”„›‹—–-·…/\\|@#$%^&*_+=~", r) {
			return false
		}
	}
	return true
}
