package tokens

import (
	"strconv"
	"strings"

	"github.com/corranwm/correctocr/internal/fileio"
)

// SaveList writes a TokenList as a TSV token-record file with k-best
// columns, the inverse of LoadList.
func SaveList(path string, toks TokenList, k int) error {
	rows := make([]map[string]string, len(toks))
	for i, t := range toks {
		rows[i] = t.ToRow(k)
	}
	return fileio.SaveTSVRows(path, Header(k), rows)
}

// LoadList reads a TSV token-record file written by SaveList (or by an
// external tokenizer following the same record format) back into a
// TokenList. Index is assigned by row order.
func LoadList(path string, k int) (TokenList, error) {
	rows, err := fileio.LoadTSVRows(path)
	if err != nil {
		return nil, err
	}
	out := make(TokenList, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row, i, k)
	}
	return out, nil
}

func fromRow(row map[string]string, index int, k int) *Token {
	t := &Token{
		Original: row["Original"],
		Gold:     row["Gold"],
		Index:    index,
		KBest:    map[int]KBestItem{},
	}
	if kind, ok := row["Token type"]; ok {
		switch kind {
		case "pdf":
			t.Kind = KindPDF
		case "hocr":
			t.Kind = KindHOCR
		default:
			t.Kind = KindText
		}
	}
	for i := 1; i <= k; i++ {
		cand, hasCand := row[strconv.Itoa(i)+"-best"]
		probStr, hasProb := row[strconv.Itoa(i)+"-best prob."]
		if !hasCand && !hasProb {
			continue
		}
		prob, _ := strconv.ParseFloat(strings.TrimSpace(probStr), 64)
		if cand == "" && prob == 0 {
			continue
		}
		t.KBest[i] = KBestItem{Candidate: cand, Probability: prob}
	}
	if binStr, ok := row["Bin"]; ok && binStr != "" {
		t.Bin, _ = strconv.Atoi(binStr)
	}
	if h, ok := row["Heuristic"]; ok && h != "" {
		t.HeuristicAction = Heuristic(h)
	}
	if d, ok := row["Decision"]; ok {
		t.Decision = d
	}
	if sel, ok := row["Selection"]; ok && sel != "" {
		t.Selection, _ = strconv.Atoi(sel)
	}
	return t
}
