package format

import (
	"io"
	"text/tabwriter"

	"github.com/mithrel/cosense/pkg/api"
)

// PlainStreamWriter incrementally writes pages in the plain list format.
// Column widths are settled per window.
type PlainStreamWriter struct {
	tw          *tabwriter.Writer
	headers     bool
	wroteHeader bool
}

func NewPlainStreamWriter(w io.Writer, headers bool) *PlainStreamWriter {
	return &PlainStreamWriter{tw: newTabWriter(w), headers: headers}
}

// WritePages writes a window of pages and flushes.
func (pw *PlainStreamWriter) WritePages(pages []api.PageInfo) error {
	if pw.headers && !pw.wroteHeader {
		_, _ = io.WriteString(pw.tw, listHeader)
		pw.wroteHeader = true
	}
	for _, p := range pages {
		_, _ = io.WriteString(pw.tw, pageInfoRow(p))
	}
	return pw.tw.Flush()
}

func (pw *PlainStreamWriter) Close() error {
	return pw.tw.Flush()
}

var (
	_ PageStreamWriter = (*PlainStreamWriter)(nil)
	_ PageStreamWriter = (*JSONStreamWriter)(nil)
	_ PageStreamWriter = (*NDJSONStreamWriter)(nil)
)
