package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mithrel/cosense/pkg/api"
)

const (
	searchHeader = "id\ttitle\tsnippet\n"
	listHeader   = "id\ttitle\tviews\tlinked\tupdated\n"
)

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WritePlainSearch writes one row per hit: id, title, snippet.
func WritePlainSearch(w io.Writer, res api.SearchResult, headers bool) error {
	tw := newTabWriter(w)
	if headers {
		_, _ = io.WriteString(tw, searchHeader)
	}
	for _, p := range res.Pages {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", esc(p.ID), esc(p.Title), esc(p.Snippet()))
	}
	return tw.Flush()
}

// WritePlainPage writes the page text as stored on the server.
func WritePlainPage(w io.Writer, p api.RenderedPage) error {
	text := p.Text
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(w, text)
	return err
}

// WriteMarkdownPage writes the converted Markdown without styling.
func WriteMarkdownPage(w io.Writer, p api.RenderedPage) error {
	md := p.Markdown
	if !strings.HasSuffix(md, "\n") {
		md += "\n"
	}
	_, err := io.WriteString(w, md)
	return err
}

// Updated formats an update time relative to now.
func Updated(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func pageInfoRow(p api.PageInfo) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n",
		esc(p.ID), esc(p.Title), humanize.Comma(int64(p.Views)), humanize.Comma(int64(p.Linked)), Updated(p.UpdatedAt()))
}

// WritePlainPageList writes the page list with humanized counts and times.
func WritePlainPageList(w io.Writer, list api.PageList, headers bool) error {
	tw := newTabWriter(w)
	if headers {
		_, _ = io.WriteString(tw, listHeader)
	}
	for _, p := range list.Pages {
		_, _ = io.WriteString(tw, pageInfoRow(p))
	}
	return tw.Flush()
}
