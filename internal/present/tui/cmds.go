package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/cosense/internal/present/format"
	"github.com/mithrel/cosense/pkg/api"
)

// debounceMsg fires after typing pauses; stale sequence numbers are dropped.
type debounceMsg struct {
	seq   int
	query string
}

// searchResultMsg conveys the outcome of a search back to Update.
type searchResultMsg struct {
	seq int
	res api.SearchResult
	err error
	dur time.Duration
}

// pageResultMsg carries a fetched page and its terminal rendering.
type pageResultMsg struct {
	title    string
	page     api.RenderedPage
	rendered string
	err      error
	dur      time.Duration
}

type openResultMsg struct {
	url string
	err error
}

func debounceCmd(seq int, query string) tea.Cmd {
	return tea.Tick(debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq, query: query}
	})
}

func searchCmd(ctx context.Context, src Source, seq int, query string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		res, err := src.Search(ctx, query)
		return searchResultMsg{seq: seq, res: res, err: err, dur: time.Since(start)}
	}
}

// pageCmd fetches a page and renders its Markdown for a pane of width cols.
func pageCmd(ctx context.Context, src Source, title, style string, cols int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		page, err := src.Show(ctx, title)
		if err != nil {
			return pageResultMsg{title: title, err: err, dur: time.Since(start)}
		}
		rendered, rerr := format.Glamour(page.Markdown, style, max(20, cols-2))
		if rerr != nil {
			rendered = page.Markdown
		}
		return pageResultMsg{title: title, page: page, rendered: rendered, dur: time.Since(start)}
	}
}

func openCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		if url == "" {
			return openResultMsg{err: errors.New("no url for selection")}
		}
		return openResultMsg{url: url, err: open(url)}
	}
}
