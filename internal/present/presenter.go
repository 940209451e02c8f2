// Package present picks an output format for pages, search results and
// page listings.
package present

import (
	"context"
	"fmt"
	"io"

	"github.com/mithrel/cosense/internal/present/format"
	"github.com/mithrel/cosense/internal/present/tui"
	"github.com/mithrel/cosense/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModeMarkdown
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeTUI
)

var modeNames = map[string]Mode{
	"plain":    ModePlain,
	"markdown": ModeMarkdown,
	"pretty":   ModePretty,
	"json":     ModeJSON,
	"ndjson":   ModeNDJSON,
	"tui":      ModeTUI,
}

// ModeNames lists the accepted --output values.
var ModeNames = []string{"plain", "markdown", "pretty", "json", "ndjson", "tui"}

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	Style      string
	WordWrap   int
	// PageURL builds the browser URL of a title for search output.
	PageURL func(title string) string
}

// ParseMode parses an output mode name.
func ParseMode(s string) (Mode, bool) {
	m, ok := modeNames[s]
	if !ok {
		return ModePretty, false
	}
	return m, true
}

// RenderPage writes a single page.
func RenderPage(w io.Writer, p api.RenderedPage, opts Options) error {
	switch opts.Mode {
	case ModePlain:
		return format.WritePlainPage(w, p)
	case ModeMarkdown:
		return format.WriteMarkdownPage(w, p)
	case ModeJSON, ModeNDJSON:
		return format.WriteJSON(w, p, opts.JSONIndent && opts.Mode == ModeJSON)
	case ModePretty, ModeTUI:
		return format.WritePrettyPage(w, p, opts.Style, opts.WordWrap)
	default:
		return fmt.Errorf("unsupported output mode %d", opts.Mode)
	}
}

// RenderSearch writes search results. In TUI mode it runs the browser
// seeded with the result's query and prints the chosen page as pretty
// Markdown afterwards.
func RenderSearch(ctx context.Context, w io.Writer, src tui.Source, res api.SearchResult, opts Options, open func(string) error) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, res, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONSearch(w, res)
	case ModePlain:
		return format.WritePlainSearch(w, res, opts.Headers)
	case ModeMarkdown:
		_, err := io.WriteString(w, format.SearchMarkdown(res, opts.PageURL)+"\n")
		return err
	case ModePretty:
		return format.WritePrettySearch(w, res, opts.PageURL, opts.Style, opts.WordWrap)
	case ModeTUI:
		page, err := tui.Browse(ctx, src, tui.Options{
			InitialQuery: res.SearchQuery,
			Style:        opts.Style,
			WordWrap:     opts.WordWrap,
			PageURL:      opts.PageURL,
			Open:         open,
		})
		if err != nil || page == nil {
			return err
		}
		return format.WritePrettyPage(w, *page, opts.Style, opts.WordWrap)
	default:
		return fmt.Errorf("unsupported output mode %d", opts.Mode)
	}
}

// PageStream returns a writer for paged listings in the given mode.
func PageStream(w io.Writer, opts Options) (format.PageStreamWriter, error) {
	switch opts.Mode {
	case ModeJSON:
		return format.NewJSONStreamWriter(w, opts.JSONIndent), nil
	case ModeNDJSON:
		return format.NewNDJSONStreamWriter(w), nil
	case ModePlain, ModePretty, ModeMarkdown:
		return format.NewPlainStreamWriter(w, opts.Headers), nil
	default:
		return nil, fmt.Errorf("output mode %d does not support page listings", opts.Mode)
	}
}

// RenderPageList writes one page of a listing.
func RenderPageList(w io.Writer, list api.PageList, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, list, opts.JSONIndent)
	case ModeNDJSON:
		sw := format.NewNDJSONStreamWriter(w)
		return sw.WritePages(list.Pages)
	case ModePlain, ModePretty, ModeMarkdown:
		return format.WritePlainPageList(w, list, opts.Headers)
	default:
		return fmt.Errorf("output mode %d does not support page listings", opts.Mode)
	}
}
