// dictbuild builds or updates a Dictionary from one or more word-list
// files, one word per line, grouped by file name.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/corranwm/correctocr/internal/dictionary"
	"github.com/corranwm/correctocr/internal/fileio"
)

var (
	dictDir    = flag.String("dict", "", "dictionary directory to load and save")
	ignoreCase = flag.Bool("ignorecase", true, "case-insensitive dictionary")
)

func main() {
	flag.Parse()
	if *dictDir == "" {
		log.Fatal("dictbuild: -dict is required")
	}
	if flag.NArg() == 0 {
		log.Fatal("dictbuild: at least one word-list file is required")
	}

	dict, err := dictionary.Load(*dictDir, *ignoreCase)
	if err != nil {
		fileio.Exit(&fileio.IOError{Path: *dictDir, Err: err})
	}

	for _, path := range flag.Args() {
		group, n, err := addFile(dict, path)
		if err != nil {
			fileio.Exit(&fileio.IOError{Path: path, Err: err})
		}
		log.Printf("added %d words to group %q from %s", n, group, path)
	}

	if err := dict.Save(*dictDir); err != nil {
		fileio.Exit(&fileio.IOError{Path: *dictDir, Err: err})
	}
}

func addFile(dict *dictionary.Dictionary, path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	group := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		dict.Add(group, sc.Text())
		n++
	}
	return group, n, sc.Err()
}
