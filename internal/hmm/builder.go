package hmm

import (
	"unicode/utf8"

	"github.com/corranwm/correctocr/internal/align"
	"github.com/corranwm/correctocr/internal/dictionary"
)

// Builder implements HMMBuilder (§4.3): it turns confusion counts and
// a corpus of known-good words into a fresh, row-stochastic Params.
type Builder struct {
	// Alpha is the additive (Laplace) smoothing constant, > 0.
	Alpha float64
	// Alphabet is the configured character set (§3); it is expanded
	// with every character observed in the training corpus.
	Alphabet []string
	// RemovalList is subtracted from the final alphabet.
	RemovalList []string
}

// Build runs the full HMMBuilder algorithm of §4.3 over confusion
// counts and a flat gold-word corpus (training-time gold words plus
// every dictionary word), returning fresh Params.
func (b *Builder) Build(confusion align.ConfusionCounts, goldWords []string, dict *dictionary.Dictionary) *Params {
	removal := toSet(b.RemovalList)

	alphabet := b.expandAlphabet(confusion, goldWords, removal)

	emis := b.buildEmission(confusion, goldWords, alphabet, removal)

	words := append([]string{}, goldWords...)
	if dict != nil {
		words = append(words, dict.Words()...)
	}
	initT, tranT := b.buildInitTran(words, alphabet, removal)

	return &Params{Init: initT, Tran: tranT, Emis: emis}
}

// expandAlphabet unions the configured characters, the characters
// seen in gold words, and the outer keys of confusion, then subtracts
// the removal list, per §4.3 "Alphabet expansion".
func (b *Builder) expandAlphabet(confusion align.ConfusionCounts, goldWords []string, removal map[string]bool) map[string]bool {
	alphabet := make(map[string]bool)
	for _, ch := range b.Alphabet {
		alphabet[ch] = true
	}
	for _, w := range goldWords {
		for _, r := range w {
			alphabet[string(r)] = true
		}
	}
	for s := range confusion {
		if utf8.RuneCountInString(s) == 1 {
			alphabet[s] = true
		}
	}
	for ch := range removal {
		delete(alphabet, ch)
	}
	return alphabet
}

// buildEmission runs the five-step emission construction of §4.3.
func (b *Builder) buildEmission(confusion align.ConfusionCounts, goldWords []string, alphabet map[string]bool, removal map[string]bool) map[string]map[string]float64 {
	textCounts := charCounts(goldWords)

	// confusion is keyed [observed][true] (align.ConfusionCounts);
	// counts is keyed [state][observed], the state being the true character.
	counts := make(map[string]map[string]int)
	for o, inner := range confusion {
		if utf8.RuneCountInString(o) != 1 || removal[o] {
			continue
		}
		for s, n := range inner {
			if utf8.RuneCountInString(s) != 1 || removal[s] {
				continue
			}
			if counts[s] == nil {
				counts[s] = make(map[string]int)
			}
			counts[s][o] += n
		}
	}

	// Step 1: alphabet characters absent as outer keys get a self row
	// seeded with their observed occurrence count.
	for ch := range alphabet {
		if _, ok := counts[ch]; !ok {
			counts[ch] = map[string]int{ch: textCounts[ch]}
		}
	}

	// Step 2: every row must carry every emitted character, 0 if absent.
	emitted := make(map[string]bool)
	for _, inner := range counts {
		for o := range inner {
			emitted[o] = true
		}
	}
	for _, inner := range counts {
		for o := range emitted {
			if _, ok := inner[o]; !ok {
				inner[o] = 0
			}
		}
	}

	// Step 3: additive smoothing.
	emis := make(map[string]map[string]float64, len(counts))
	for s, inner := range counts {
		total := 0
		for _, n := range inner {
			total += n
		}
		denom := float64(total) + b.Alpha*float64(len(inner))
		row := make(map[string]float64, len(inner))
		for o, n := range inner {
			row[o] = (float64(n) + b.Alpha) / denom
		}
		emis[s] = row
	}

	// Step 4: configured characters still missing as outer rows emit
	// only themselves with probability 1, and appear as zero elsewhere.
	for ch := range alphabet {
		if _, ok := emis[ch]; ok {
			continue
		}
		emis[ch] = map[string]float64{ch: 1.0}
		for other, row := range emis {
			if other != ch {
				row[ch] = 0
			}
		}
	}

	// Step 5: prune rows and inner keys outside the final alphabet.
	for s := range emis {
		if !alphabet[s] {
			delete(emis, s)
			continue
		}
		for o := range emis[s] {
			if !alphabet[o] {
				delete(emis[s], o)
			}
		}
	}
	return emis
}

// buildInitTran scans words (gold plus dictionary, per §4.3) to
// count initial-character and adjacent-pair frequencies, then applies
// additive smoothing over the full alphabet so the result is square
// and row-stochastic.
func (b *Builder) buildInitTran(words []string, alphabet map[string]bool, removal map[string]bool) (map[string]float64, map[string]map[string]float64) {
	rawInit := make(map[string]int)
	rawTran := make(map[string]map[string]int)

	for _, w := range words {
		runes := cleanRunes(w, alphabet)
		if len(runes) == 0 {
			continue
		}
		rawInit[string(runes[0])]++
		for i := 0; i < len(runes)-1; i++ {
			a, bb := string(runes[i]), string(runes[i+1])
			if rawTran[a] == nil {
				rawTran[a] = make(map[string]int)
			}
			rawTran[a][bb]++
		}
	}

	n := float64(len(alphabet))
	totalInit := 0
	for _, c := range rawInit {
		totalInit += c
	}
	initDenom := float64(totalInit) + b.Alpha*n

	initT := make(map[string]float64, len(alphabet))
	tranT := make(map[string]map[string]float64, len(alphabet))
	for a := range alphabet {
		initT[a] = (float64(rawInit[a]) + b.Alpha) / initDenom

		row := rawTran[a]
		total := 0
		for _, c := range row {
			total += c
		}
		tranDenom := float64(total) + b.Alpha*n
		tranRow := make(map[string]float64, len(alphabet))
		for bChar := range alphabet {
			tranRow[bChar] = (float64(row[bChar]) + b.Alpha) / tranDenom
		}
		tranT[a] = tranRow
	}
	return initT, tranT
}

func cleanRunes(w string, alphabet map[string]bool) []rune {
	var out []rune
	for _, r := range w {
		if alphabet[string(r)] {
			out = append(out, r)
		}
	}
	return out
}

func charCounts(words []string) map[string]int {
	out := make(map[string]int)
	for _, w := range words {
		for _, r := range w {
			out[string(r)]++
		}
	}
	return out
}

func toSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, s := range list {
		out[s] = true
	}
	return out
}
