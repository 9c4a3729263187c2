package fileio

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// EnsureDir creates the parent directory of path if it does not
// already exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Path: dir, Err: err}
	}
	return nil
}

// SaveJSON writes v as indented JSON to path, via a temp-file-then-rename
// so a reader never observes a half-written file.
func SaveJSON(path string, v any) error {
	if err := EnsureDir(path); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "\t")
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

// LoadJSON reads and unmarshals the JSON document at path into v.
func LoadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

// Exists reports whether path names a regular, readable file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Delete removes path if it exists; a missing file is not an error.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

// LoadTSVRows reads a tab-separated file with a header row and returns
// each data row as a map keyed by header column name, in the style of
// Python's csv.DictReader used throughout the original pipeline.
func LoadTSVRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SaveTSVRows writes rows as a tab-separated file with the given
// header, in column order.
func SaveTSVRows(path string, header []string, rows []map[string]string) error {
	if err := EnsureDir(path); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.Write(header); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Path: path, Err: err}
	}
	for _, row := range rows {
		rec := make([]string, len(header))
		for i, col := range header {
			rec[i] = row[col]
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			os.Remove(tmp)
			return &IOError{Path: path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return os.Rename(tmp, path)
}

// LoadLines reads path and returns its lines, stripped of line endings,
// skipping the first header many lines.
func LoadLines(path string, header int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	i := 0
	for sc.Scan() {
		i++
		if i <= header {
			continue
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return lines, nil
}

// CopyFile copies src to dst, creating dst's parent directory; it is
// not part of the pipeline's steady-state I/O.
func CopyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return &IOError{Path: src, Err: err}
	}
	defer in.Close()
	if err := EnsureDir(dst); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return &IOError{Path: dst, Err: err}
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
