package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/cosense/pkg/api"
)

const (
	DefaultStyle    = "dracula"
	DefaultWordWrap = 80
)

// Glamour renders Markdown for the terminal.
func Glamour(md, style string, wrap int) (string, error) {
	if style == "" {
		style = DefaultStyle
	}
	if wrap <= 0 {
		wrap = DefaultWordWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// PageMarkdown is the converted page with a source footer.
func PageMarkdown(p api.RenderedPage) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(p.Markdown))
	b.WriteString("\n\n---\n\n")
	fmt.Fprintf(&b, "[%s](%s)", p.Title, p.URL)
	if p.Stale {
		b.WriteString(" *(cached copy)*")
	}
	b.WriteString("\n")
	return b.String()
}

// WritePrettyPage renders a converted page with glamour.
func WritePrettyPage(w io.Writer, p api.RenderedPage, style string, wrap int) error {
	out, err := Glamour(PageMarkdown(p), style, wrap)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// SearchMarkdown lists search hits as a Markdown bullet list.
func SearchMarkdown(res api.SearchResult, pageURL func(title string) string) string {
	if len(res.Pages) == 0 {
		return "_No pages found._\n"
	}
	var b strings.Builder
	for _, p := range res.Pages {
		if pageURL != nil {
			fmt.Fprintf(&b, "* [%s](%s)", p.Title, pageURL(p.Title))
		} else {
			fmt.Fprintf(&b, "* %s", p.Title)
		}
		if s := p.Snippet(); s != "" {
			b.WriteString("  \n  " + s)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WritePrettySearch renders search hits with glamour.
func WritePrettySearch(w io.Writer, res api.SearchResult, pageURL func(string) string, style string, wrap int) error {
	out, err := Glamour(SearchMarkdown(res, pageURL), style, wrap)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
