// Package export writes converted pages to files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/mithrel/cosense/pkg/api"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
)

// ParseFormat accepts "md", "markdown" or "pdf".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want md or pdf)", s)
	}
}

// Writer writes exported pages into Dir.
type Writer struct {
	Dir string
}

// New creates a Writer targeting dir, defaulting to the working directory.
func New(dir string) (*Writer, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{Dir: dir}, nil
}

// Write renders p in format f and returns the written path.
func (w *Writer) Write(p api.RenderedPage, f Format) (string, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatMarkdown:
		data = []byte(Markdown(p))
	case FormatPDF:
		data, err = PDF(p)
		if err != nil {
			return "", fmt.Errorf("render pdf: %w", err)
		}
	default:
		return "", fmt.Errorf("unknown export format %q", f)
	}
	path := filepath.Join(w.Dir, FileName(p.Title)+"."+string(f))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// Markdown is the exported Markdown document with a source line.
func Markdown(p api.RenderedPage) string {
	md := strings.TrimRight(p.Markdown, "\n")
	return md + "\n\n---\n\nSource: <" + p.URL + ">\n"
}

// FileName turns a page title into a safe file name. Letters and digits
// of any script are kept.
func FileName(title string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}
