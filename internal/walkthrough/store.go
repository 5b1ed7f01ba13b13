package walkthrough

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileSuffix is the extension of persisted walkthrough documents
const FileSuffix = ".walkthrough.json"

// Decode reads a walkthrough JSON document
func Decode(r io.Reader) (*Walkthrough, error) {
	var wt Walkthrough
	if err := json.NewDecoder(r).Decode(&wt); err != nil {
		return nil, fmt.Errorf("decode walkthrough: %w", err)
	}
	return &wt, nil
}

// Encode writes a walkthrough as indented JSON
func Encode(w io.Writer, wt *Walkthrough) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(wt)
}

// Marshal returns the indented JSON form of a walkthrough
func Marshal(wt *Walkthrough) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, wt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads a walkthrough from disk
func Load(path string) (*Walkthrough, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wt, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wt, nil
}

// Save writes a walkthrough to disk, creating parent directories as needed.
// The file is written to a temporary sibling first and renamed into place.
func Save(path string, wt *Walkthrough) error {
	data, err := Marshal(wt)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// FindWalkthroughs lists *.walkthrough.json files directly inside dir, sorted by name
func FindWalkthroughs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), FileSuffix) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath derives the default JSON path for a markdown source,
// e.g. "docs/tour.md" -> "docs/tour.walkthrough.json"
func OutputPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + FileSuffix
}
