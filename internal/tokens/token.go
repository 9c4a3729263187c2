// Package tokens defines the Token data model shared by every stage of
// the correctocr pipeline: the aligner, the HMM decoder, the heuristic
// classifier and the orchestrator all read and mutate the same Token
// and TokenList types.
package tokens

import "strconv"

// Kind tags the provenance of a Token, replacing the subclass
// hierarchy (TextToken/PDFToken/HOCRToken) of the original
// implementation with a single struct plus a sum-type discriminant,
// per the design note on tagged variants.
type Kind int

const (
	KindText Kind = iota
	KindPDF
	KindHOCR
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPDF:
		return "pdf"
	case KindHOCR:
		return "hocr"
	default:
		return "unknown"
	}
}

// Heuristic is the action code assigned to a token once it has been
// classified into a bin and a decision looked up.
type Heuristic string

const (
	HeuristicNone      Heuristic = ""
	HeuristicOriginal  Heuristic = "original"
	HeuristicKBest     Heuristic = "kbest"
	HeuristicKDict     Heuristic = "kdict"
	HeuristicAnnotator Heuristic = "annotator"
	HeuristicMemoized  Heuristic = "memoized"
	HeuristicLinefeed  Heuristic = "linefeed"
)

// KBestItem is one candidate correction and its probability under the
// HMM. The zero value is the padding sentinel used when a decode
// request returns fewer than k real candidates.
type KBestItem struct {
	Candidate   string
	Probability float64
}

// IsSentinel reports whether this item is empty padding rather than a
// real decoded candidate.
func (k KBestItem) IsSentinel() bool {
	return k.Candidate == "" && k.Probability == 0
}

// Frame is the optional geometric placement of a token on a page,
// populated only for PDF/hOCR tokens (the zero value means "no frame").
type Frame struct {
	Page int
	X0   float64
	Y0   float64
	X1   float64
	Y1   float64
}

// Token is the immutable-original, mutable-annotation unit the whole
// pipeline operates on.
type Token struct {
	Kind Kind

	// Original is the immutable OCR-produced surface form.
	Original string

	// DocumentID and Index give the token's authoritative identity;
	// Index is preserved end-to-end across every pipeline stage.
	DocumentID string
	Index      int

	// Gold is the corrected form. Once set by a human it is preserved
	// across re-runs unless Force is requested by the caller.
	Gold       string
	goldByHand bool

	// KBest holds up to k candidate corrections, 1-indexed, ordered by
	// descending probability.
	KBest map[int]KBestItem

	// Bin is the heuristic bin number (1..9) assigned by Heuristics,
	// or 0 if not yet classified.
	Bin int

	// HeuristicAction is the action selected for Bin, and Selection is
	// the chosen k-best index when HeuristicAction is KBest or KDict.
	HeuristicAction Heuristic
	Selection       int

	// Decision records what was actually done with the token: the
	// resolved action plus, for KBest/KDict, the selected candidate's
	// rank. Unlike HeuristicAction (the bin's configured action code),
	// Decision is left blank until Autocorrect runs or a human
	// annotator overrides it — mirroring the original's bin.decision,
	// which an interactive annotator session could set independently
	// of the bin's default heuristic.
	Decision string

	Frame Frame

	IsDiscarded  bool
	IsHyphenated bool
}

// SetGoldByHuman records a human annotator's correction. This marks
// Gold as sticky: subsequent pipeline runs must not overwrite it
// unless Force is requested.
func (t *Token) SetGoldByHuman(word string) {
	t.Gold = word
	t.goldByHand = true
}

// GoldIsHuman reports whether Gold was set by a human annotator rather
// than an automatic heuristic.
func (t *Token) GoldIsHuman() bool { return t.goldByHand }

// Normalized returns the form to feed to the HMM decoder: the surface
// original. Structural linefeed tokens are returned unchanged as well.
func (t *Token) Normalized() string {
	return t.Original
}

// KBestOrdered returns the k-best candidates in rank order 1..k,
// padding with sentinel items if fewer than k are present.
func (t *Token) KBestOrdered(k int) []KBestItem {
	out := make([]KBestItem, k)
	for i := 1; i <= k; i++ {
		out[i-1] = t.KBest[i]
	}
	return out
}

// TokenList is an ordered collection of Tokens belonging to one
// document. Index order is authoritative.
type TokenList []*Token

// ByIndex returns the token whose Index field equals idx, or nil.
func (l TokenList) ByIndex(idx int) *Token {
	for _, t := range l {
		if t.Index == idx {
			return t
		}
	}
	return nil
}

// Originals returns the Original field of every token, in order —
// used by the aligner's token-level matcher.
func (l TokenList) Originals() []string {
	out := make([]string, len(l))
	for i, t := range l {
		out[i] = t.Original
	}
	return out
}

// ToRow renders a token as a TSV-record-shaped map, per the column
// order fixed by the external token-record format: Original, [Gold],
// 1-best, 1-best prob., ..., k-best, k-best prob., [Bin, Heuristic,
// Decision, Selection], Token type, Token info.
func (t *Token) ToRow(k int) map[string]string {
	row := map[string]string{
		"Original":   t.Original,
		"Token type": t.Kind.String(),
	}
	if t.Gold != "" {
		row["Gold"] = t.Gold
	}
	for i := 1; i <= k; i++ {
		item := t.KBest[i]
		row[strconv.Itoa(i)+"-best"] = item.Candidate
		row[strconv.Itoa(i)+"-best prob."] = strconv.FormatFloat(item.Probability, 'g', -1, 64)
	}
	if t.Bin != 0 {
		row["Bin"] = strconv.Itoa(t.Bin)
		row["Heuristic"] = string(t.HeuristicAction)
		row["Decision"] = t.Decision
		row["Selection"] = strconv.Itoa(t.Selection)
	}
	row["Token info"] = tokenInfo(t)
	return row
}

func tokenInfo(t *Token) string {
	switch t.Kind {
	case KindPDF, KindHOCR:
		return strconv.Itoa(t.Frame.Page) + "," +
			strconv.FormatFloat(t.Frame.X0, 'g', -1, 64) + "," +
			strconv.FormatFloat(t.Frame.Y0, 'g', -1, 64) + "," +
			strconv.FormatFloat(t.Frame.X1, 'g', -1, 64) + "," +
			strconv.FormatFloat(t.Frame.Y1, 'g', -1, 64)
	default:
		return t.Original
	}
}

// Header returns the TSV column header for a token record with k-best
// candidates, matching ToRow's column set.
func Header(k int) []string {
	h := []string{"Original", "Gold"}
	for i := 1; i <= k; i++ {
		h = append(h, strconv.Itoa(i)+"-best", strconv.Itoa(i)+"-best prob.")
	}
	h = append(h, "Bin", "Heuristic", "Decision", "Selection", "Token type", "Token info")
	return h
}
