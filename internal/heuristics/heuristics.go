// Package heuristics implements the nine-bin decision classifier of
// §4.5: given a token's relationship to the dictionary and its k-best
// candidates, assign exactly one bin and look up the configured
// action for it.
package heuristics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/corranwm/correctocr/internal/dictionary"
	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/tokens"
)

// dictCoverage is the zerokd/somekd/allkd classification of §4.5.
type dictCoverage int

const (
	zerokd dictCoverage = iota
	somekd
	allkd
)

// binTable pairs each bin number with the predicate that recognizes
// it, evaluated in order; it mirrors §4.5's truth table exactly.
var binTable = []struct {
	number int
	match  func(sameAsK1, origInDict, k1InDict bool, cov dictCoverage) bool
}{
	{1, func(same, o, k bool, cov dictCoverage) bool { return same && o }},
	{2, func(same, o, k bool, cov dictCoverage) bool { return same && !o && cov == zerokd }},
	{3, func(same, o, k bool, cov dictCoverage) bool { return same && !o && cov == somekd }},
	{4, func(same, o, k bool, cov dictCoverage) bool { return !same && !o && k }},
	{5, func(same, o, k bool, cov dictCoverage) bool { return !same && !o && cov == zerokd && !k }},
	{6, func(same, o, k bool, cov dictCoverage) bool { return !same && !o && cov == somekd && !k }},
	{7, func(same, o, k bool, cov dictCoverage) bool { return !same && o && k }},
	{8, func(same, o, k bool, cov dictCoverage) bool { return !same && o && !k && cov == zerokd }},
	{9, func(same, o, k bool, cov dictCoverage) bool { return !same && o && !k && cov == somekd }},
}

// Settings maps a bin number to its configured action.
type Settings map[int]tokens.Heuristic

// Classify evaluates the bin table for a token against dict and
// assigns Bin and HeuristicAction per the configured settings. It
// returns a *fileio.BinError if no bin matches, which is a
// programming error per §7: the caller should log it loudly and mark
// the token for annotator review rather than propagate it further.
func Classify(t *tokens.Token, dict *dictionary.Dictionary, settings Settings) error {
	k1 := ""
	if item, ok := t.KBest[1]; ok {
		k1 = item.Candidate
	}
	sameAsK1 := t.Original == k1
	origInDict := dict.Contains(t.Original)
	k1InDict := dict.Contains(k1)
	cov := coverage(t, dict)

	for _, b := range binTable {
		if b.match(sameAsK1, origInDict, k1InDict, cov) {
			t.Bin = b.number
			t.HeuristicAction = settings[b.number]
			if t.HeuristicAction == tokens.HeuristicKDict {
				t.Selection = kdictSelection(t, dict)
			}
			return nil
		}
	}
	return &fileio.BinError{Token: t.Original}
}

// coverage computes nkdict's zerokd/allkd/somekd classification: the
// count of distinct k-best candidates that are dictionary members,
// compared against the number of distinct candidates.
func coverage(t *tokens.Token, dict *dictionary.Dictionary) dictCoverage {
	distinct := make(map[string]struct{})
	inDict := 0
	for _, item := range t.KBest {
		if item.IsSentinel() {
			continue
		}
		if _, seen := distinct[item.Candidate]; seen {
			continue
		}
		distinct[item.Candidate] = struct{}{}
		if dict.Contains(item.Candidate) {
			inDict++
		}
	}
	switch {
	case inDict == 0:
		return zerokd
	case inDict == len(distinct):
		return allkd
	default:
		return somekd
	}
}

// kdictSelection returns the k-best index (1-based) of the first
// candidate, in original beam order, that is a dictionary member.
func kdictSelection(t *tokens.Token, dict *dictionary.Dictionary) int {
	indices := make([]int, 0, len(t.KBest))
	for i := range t.KBest {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		item := t.KBest[i]
		if item.IsSentinel() {
			continue
		}
		if dict.Contains(item.Candidate) {
			return i
		}
	}
	return 1
}

// Autocorrect applies the chosen heuristic action to Gold, per §4.6,
// and records what was actually done in Decision. Annotator-deferred
// tokens leave both Gold and Decision unset, pending a human override.
func Autocorrect(t *tokens.Token) {
	switch t.HeuristicAction {
	case tokens.HeuristicOriginal:
		t.Gold = t.Original
		t.Decision = string(tokens.HeuristicOriginal)
	case tokens.HeuristicKBest, tokens.HeuristicKDict:
		sel := t.Selection
		if sel == 0 {
			sel = 1
		}
		t.Gold = t.KBest[sel].Candidate
		t.Decision = fmt.Sprintf("%s:%d", t.HeuristicAction, sel)
	case tokens.HeuristicAnnotator:
		// leave Gold and Decision unset; deferred to a human.
	}
}

// LoadSettings reads the bin->action settings file of §6: tab-separated
// `bin_number<TAB>action_code`, action_code in {o,k,d,a}.
func LoadSettings(path string) (Settings, error) {
	rows, err := fileio.LoadLines(path, 0)
	if err != nil {
		return nil, err
	}
	settings := make(Settings, len(rows))
	for _, line := range rows {
		num, code, ok := parseSettingsLine(line)
		if !ok {
			continue
		}
		settings[num] = actionFromCode(code)
	}
	return settings, nil
}

func parseSettingsLine(line string) (num int, code string, ok bool) {
	fields := strings.Split(line, "\t")
	if len(fields) != 2 {
		return 0, "", false
	}
	n, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, "", false
	}
	return n, strings.TrimSpace(fields[1]), true
}

func actionFromCode(code string) tokens.Heuristic {
	switch code {
	case "o":
		return tokens.HeuristicOriginal
	case "k":
		return tokens.HeuristicKBest
	case "d":
		return tokens.HeuristicKDict
	case "a":
		return tokens.HeuristicAnnotator
	default:
		return tokens.HeuristicAnnotator
	}
}
