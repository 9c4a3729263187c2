package heuristics

import (
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/tokens"
)

func writeText(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &fileio.IOError{Path: path, Err: err}
	}
	return nil
}

// binStats tabulates, for one bin, how often the configured action
// would have produced the gold-correct token, per §4.5's report
// generator. It intentionally does not carry an equivalent of the
// source's dead, never-reported counter.
type binStats struct {
	total   int
	correct int
}

// Report is the tuning report over a corpus of gold-labelled tokens:
// per-bin token share and correctness of the configured action.
type Report struct {
	Bins     map[int]*binStats
	total    int
	underseg int
	overseg  int
}

// NewReport tabulates toks, which must already be classified
// (Bin/HeuristicAction populated) and carry a Gold label.
func NewReport(toks tokens.TokenList) *Report {
	r := &Report{Bins: make(map[int]*binStats)}
	for _, t := range toks {
		if t.Bin == 0 {
			continue
		}
		r.total++
		stat := r.Bins[t.Bin]
		if stat == nil {
			stat = &binStats{}
			r.Bins[t.Bin] = stat
		}
		stat.total++

		chosen := chosenCandidate(t)
		if chosen == t.Gold {
			stat.correct++
		}
		if t.IsHyphenated && len(t.Original) < len(t.Gold) {
			r.underseg++
		}
		if t.IsHyphenated && len(t.Original) > len(t.Gold) {
			r.overseg++
		}
	}
	return r
}

func chosenCandidate(t *tokens.Token) string {
	switch t.HeuristicAction {
	case tokens.HeuristicOriginal:
		return t.Original
	case tokens.HeuristicKBest, tokens.HeuristicKDict:
		sel := t.Selection
		if sel == 0 {
			sel = 1
		}
		return t.KBest[sel].Candidate
	default:
		return ""
	}
}

var binDescriptions = map[int]string{
	1: "original == 1-best, original in dictionary",
	2: "original == 1-best, not in dictionary, no k-best in dictionary",
	3: "original == 1-best, not in dictionary, some k-best in dictionary",
	4: "original != 1-best, not in dictionary, 1-best in dictionary",
	5: "original != 1-best, not in dictionary, 1-best not in dictionary, no k-best in dictionary",
	6: "original != 1-best, not in dictionary, 1-best not in dictionary, some k-best in dictionary",
	7: "original != 1-best, in dictionary, 1-best in dictionary",
	8: "original != 1-best, in dictionary, 1-best not in dictionary, no k-best in dictionary",
	9: "original != 1-best, in dictionary, 1-best not in dictionary, some k-best in dictionary",
}

// Write renders the human-readable text report of §6: one header and
// correctness tally per bin.
func (r *Report) Write(path string) error {
	nums := sortedBinNumbers(r.Bins)
	var out string
	for _, n := range nums {
		stat := r.Bins[n]
		share := 100 * float64(stat.total) / float64(max1(r.total))
		correctPct := 100 * float64(stat.correct) / float64(max1(stat.total))
		out += fmt.Sprintf("Bin %d: %s\n", n, binDescriptions[n])
		out += fmt.Sprintf("  tokens: %d (%.2f%% of corpus)\n", stat.total, share)
		out += fmt.Sprintf("  correct: %d (%.2f%%)\n", stat.correct, correctPct)
		out += fmt.Sprintf("  mismatches: %d\n\n", stat.total-stat.correct)
	}
	out += fmt.Sprintf("Under-segmented hyphenations: %d\n", r.underseg)
	out += fmt.Sprintf("Over-segmented hyphenations: %d\n", r.overseg)

	if err := fileio.EnsureDir(path); err != nil {
		return err
	}
	return writeText(path, out)
}

// Plot renders a bar chart of per-bin token share, in the same
// plot.New/Add/Save call sequence the original command-line plotting
// tools use.
func (r *Report) Plot(path string, width, height vg.Length) error {
	nums := sortedBinNumbers(r.Bins)

	values := make(plotter.Values, len(nums))
	for i, n := range nums {
		values[i] = 100 * float64(r.Bins[n].total) / float64(max1(r.total))
	}

	p := plot.New()
	p.Title.Text = "Token share by heuristic bin"
	p.Y.Label.Text = "% of tokens"

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return err
	}
	p.Add(bars)

	labels := make([]string, len(nums))
	for i, n := range nums {
		labels[i] = fmt.Sprintf("bin %d", n)
	}
	p.NominalX(labels...)

	if err := fileio.EnsureDir(path); err != nil {
		return err
	}
	return p.Save(width, height, path)
}

func sortedBinNumbers(bins map[int]*binStats) []int {
	nums := make([]int, 0, len(bins))
	for n := range bins {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

func max1(n int) int {
	if n == 0 {
		return 1
	}
	return n
}
