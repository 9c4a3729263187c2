package tokenize

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"text/template"

	"github.com/biogo/external"

	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/tokens"
)

var errMissingInput = errors.New("tokenize: missing required input path")

// ExternalTool models the out-of-scope PDF/hOCR/image-extraction
// front end of §1 as an external collaborator: a struct-tag-driven
// command builder in the exact style of the teacher's blasr.BLASR —
// exported fields tagged buildarg:"...", rendered through
// github.com/biogo/external's Build/Must into an exec.Cmd — rather
// than an in-process PDF parser, which this pipeline does not own.
type ExternalTool struct {
	// Cmd is the external binary to invoke; defaults to "correctocr-tokenize".
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}correctocr-tokenize{{end}}"`

	// Input is the source document path.
	Input string `buildarg:"{{.}}"`

	// Kind selects the expected token provenance: "pdf" or "hocr".
	Kind string `buildarg:"{{if .}}--kind{{split}}{{.}}{{end}}"`

	// Output, if set, redirects the tool's TSV token records to a
	// file instead of stdout.
	Output string `buildarg:"{{if .}}--out{{split}}{{.}}{{end}}"`
}

// BuildCommand renders t into an exec.Cmd the way blasr.BLASR does.
func (t ExternalTool) BuildCommand() (*exec.Cmd, error) {
	if t.Input == "" {
		return nil, errMissingInput
	}
	cl := external.Must(external.Build(t, template.FuncMap{}))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Tokenize runs the external tool and parses its standard output into
// a TokenList: a header line, then one row per token whose first
// tab-separated column is the original text and whose optional second
// column is a "page,x0,y0,x1,y1" frame. The external tool's own
// correctness is out of scope; this wrapper only has to build the
// invocation and parse that output.
func (t ExternalTool) Tokenize(ctx context.Context, documentID, path string) (tokens.TokenList, error) {
	t.Input = path
	cmd, err := t.BuildCommand()
	if err != nil {
		return nil, err
	}
	cmd = exec.CommandContext(ctx, cmd.Path, cmd.Args[1:]...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, &fileio.IOError{Path: path, Err: err}
	}

	toks, err := parseTokenRecords(documentID, &stdout)
	if err != nil {
		return nil, err
	}
	if t.Kind == "hocr" {
		for _, tok := range toks {
			tok.Kind = tokens.KindHOCR
		}
	}
	return toks, nil
}

func parseTokenRecords(documentID string, r *bytes.Buffer) (tokens.TokenList, error) {
	var out tokens.TokenList
	sc := bufio.NewScanner(r)
	idx := 0
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) == 0 || fields[0] == "" {
			continue
		}
		kind := tokens.KindPDF
		var frame tokens.Frame
		if len(fields) > 1 {
			frame = parseFrame(fields[1])
		}
		out = append(out, &tokens.Token{
			Kind:       kind,
			Original:   fields[0],
			DocumentID: documentID,
			Index:      idx,
			Frame:      frame,
		})
		idx++
	}
	return out, nil
}

func parseFrame(s string) tokens.Frame {
	parts := strings.Split(s, ",")
	if len(parts) != 5 {
		return tokens.Frame{}
	}
	page, _ := strconv.Atoi(parts[0])
	x0, _ := strconv.ParseFloat(parts[1], 64)
	y0, _ := strconv.ParseFloat(parts[2], 64)
	x1, _ := strconv.ParseFloat(parts[3], 64)
	y1, _ := strconv.ParseFloat(parts[4], 64)
	return tokens.Frame{Page: page, X0: x0, Y0: y0, X1: x1, Y1: y1}
}
