// Package tokenize defines the external tokenizer boundary of §4.6:
// turning a source document into a TokenList is out of scope for this
// pipeline's core (§1), so it is modeled as a minimal interface with a
// real plain-text implementation and an external-tool wrapper for the
// PDF/hOCR front ends the original delegates to.
package tokenize

import (
	"bufio"
	"context"
	"os"
	"unicode"

	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/tokens"
)

// Tokenizer turns a document at path into an ordered TokenList.
type Tokenizer interface {
	Tokenize(ctx context.Context, documentID, path string) (tokens.TokenList, error)
}

// PlainText tokenizes whitespace-delimited text, preserving newlines
// as structural linefeed tokens, matching the original's load_text.
type PlainText struct{}

// Tokenize reads path and splits it on Unicode whitespace, keeping
// each line break as its own token so the pipeline's dehyphenation
// and linefeed-aware heuristics have a place to attach.
func (PlainText) Tokenize(ctx context.Context, documentID, path string) (tokens.TokenList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &fileio.IOError{Path: path, Err: err}
	}
	defer f.Close()

	var out tokens.TokenList
	idx := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		line := sc.Text()
		for _, word := range splitWhitespace(line) {
			out = append(out, &tokens.Token{
				Kind:       tokens.KindText,
				Original:   word,
				DocumentID: documentID,
				Index:      idx,
			})
			idx++
		}
		out = append(out, &tokens.Token{
			Kind:       tokens.KindText,
			Original:   "\n",
			DocumentID: documentID,
			Index:      idx,
		})
		idx++
	}
	if err := sc.Err(); err != nil {
		return nil, &fileio.IOError{Path: path, Err: err}
	}
	return out, nil
}

func splitWhitespace(line string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range line {
		if unicode.IsSpace(r) {
			flush()
			continue
		}
		cur = append(cur, r)
	}
	flush()
	return out
}
