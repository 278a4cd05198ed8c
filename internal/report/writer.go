package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/KaramelBytes/ecoreport/internal/utils"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding of the template context.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatXLSX:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported output format %q (use json, yaml or xlsx)", s)
}

// Ext returns the file extension of f.
func (f Format) Ext() string { return "." + string(f) }

// Writer writes results into Dir. Output names are reserved under a lock so
// concurrent writers never pick the same file.
type Writer struct {
	Dir    string
	Format Format

	mu       sync.Mutex
	reserved map[string]bool
}

// NewWriter returns a Writer for dir.
func NewWriter(dir string, format Format) *Writer {
	return &Writer{Dir: dir, Format: format, reserved: make(map[string]bool)}
}

// Write encodes the context of res and returns the written path.
func (w *Writer) Write(res *Result) (string, error) {
	if err := utils.EnsureDir(w.Dir); err != nil {
		return "", fmt.Errorf("ensure output dir: %w", err)
	}
	data, err := Encode(res, w.Format)
	if err != nil {
		return "", err
	}
	path := w.reserve(res.Stem())
	if err := utils.SafeWriteFile(path, data); err != nil {
		w.release(path)
		return "", err
	}
	return path, nil
}

// reserve picks stem.ext, or stem__N.ext when taken on disk or by another
// write in flight.
func (w *Writer) reserve(stem string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ext := w.Format.Ext()
	cand := filepath.Join(w.Dir, stem+ext)
	for idx := 2; ; idx++ {
		if _, err := os.Stat(cand); os.IsNotExist(err) && !w.reserved[cand] {
			break
		}
		cand = filepath.Join(w.Dir, fmt.Sprintf("%s__%d%s", stem, idx, ext))
	}
	w.reserved[cand] = true
	return cand
}

func (w *Writer) release(path string) {
	w.mu.Lock()
	delete(w.reserved, path)
	w.mu.Unlock()
}

// Encode renders the context of res in format f.
func Encode(res *Result, f Format) ([]byte, error) {
	ctx := res.Context()
	switch f {
	case FormatJSON:
		return utils.PrettyJSON(ctx)
	case FormatYAML:
		b, err := yaml.Marshal(ctx)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	case FormatXLSX:
		return encodeXLSX(res, ctx)
	}
	return nil, fmt.Errorf("unsupported output format %q", f)
}
