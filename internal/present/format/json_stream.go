package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/cosense/pkg/api"
)

// PageStreamWriter receives page list windows as they are fetched.
type PageStreamWriter interface {
	WritePages(pages []api.PageInfo) error
	Close() error
}

// JSONStreamWriter incrementally writes pages as a JSON array.
type JSONStreamWriter struct {
	w        io.Writer
	indent   bool
	wroteAny bool
}

func NewJSONStreamWriter(w io.Writer, indent bool) *JSONStreamWriter {
	return &JSONStreamWriter{w: w, indent: indent}
}

func (jw *JSONStreamWriter) WritePages(pages []api.PageInfo) error {
	for _, p := range pages {
		var (
			b   []byte
			err error
		)
		if jw.indent {
			b, err = json.MarshalIndent(p, "  ", "  ")
		} else {
			b, err = json.Marshal(p)
		}
		if err != nil {
			return err
		}
		sep := ","
		if !jw.wroteAny {
			sep = "["
		}
		if jw.indent {
			sep += "\n  "
		}
		if _, err := io.WriteString(jw.w, sep); err != nil {
			return err
		}
		if _, err := jw.w.Write(b); err != nil {
			return err
		}
		jw.wroteAny = true
	}
	return nil
}

// Close finishes the JSON array.
func (jw *JSONStreamWriter) Close() error {
	if !jw.wroteAny {
		_, err := io.WriteString(jw.w, "[]\n")
		return err
	}
	if jw.indent {
		_, err := io.WriteString(jw.w, "\n]\n")
		return err
	}
	_, err := io.WriteString(jw.w, "]\n")
	return err
}
