package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/cosense/internal/pages"
	"github.com/mithrel/cosense/pkg/api"
)

type fakeSource struct {
	queries []string
	shown   []string
	pages   map[string]api.RenderedPage
}

func (f *fakeSource) Search(_ context.Context, q string) (api.SearchResult, error) {
	f.queries = append(f.queries, q)
	return api.SearchResult{SearchQuery: q, Pages: []api.PageSummary{{Title: "Alpha"}}}, nil
}

func (f *fakeSource) Show(_ context.Context, title string) (api.RenderedPage, error) {
	f.shown = append(f.shown, title)
	p, ok := f.pages[title]
	if !ok {
		return api.RenderedPage{}, errors.New("not found")
	}
	return p, nil
}

func result(seq int, titles ...string) searchResultMsg {
	var ps []api.PageSummary
	for _, t := range titles {
		ps = append(ps, api.PageSummary{Title: t, Lines: []string{t + " body"}})
	}
	return searchResultMsg{seq: seq, res: api.SearchResult{Pages: ps}}
}

func step(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok)
	return nm, cmd
}

func newTestModel(t *testing.T, src Source) model {
	t.Helper()
	m := newModel(context.Background(), src, Options{
		PageURL: func(title string) string { return "https://example.test/p/" + title },
	})
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestSearchResultsFillTable(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	m, cmd := step(t, m, result(0, "Alpha", "Beta"))
	require.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "Alpha", m.selectedTitle())
	assert.Equal(t, "2 pages", m.status)
	assert.NotNil(t, cmd, "selection change should load the page")
}

func TestOlderSearchResultsAreIgnored(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	m, _ = step(t, m, result(2, "New"))
	m, _ = step(t, m, result(1, "Old", "Older"))
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "New", m.selectedTitle())
}

func TestSearchFailureKeepsRows(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	m, _ = step(t, m, result(1, "Keep"))
	m, _ = step(t, m, searchResultMsg{seq: 2, err: errors.New("boom")})
	require.Len(t, m.table.Rows(), 1)
	assert.Contains(t, m.status, "Search failed: boom")
}

func TestStaleSearchShowsCachedRows(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	msg := result(1, "Cached")
	msg.err = &pages.StaleError{Err: errors.New("offline")}
	m, _ = step(t, m, msg)
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "Offline, 1 cached pages", m.status)
}

func TestTypingDebouncesSearch(t *testing.T) {
	src := &fakeSource{}
	m := newTestModel(t, src)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("go")})
	require.NotNil(t, cmd)
	assert.Equal(t, "go", m.input.Value())
	assert.Equal(t, 1, m.seq)

	// An outdated tick does nothing.
	_, cmd = step(t, m, debounceMsg{seq: 0, query: "g"})
	assert.Nil(t, cmd)

	_, cmd = step(t, m, debounceMsg{seq: 1, query: "go"})
	require.NotNil(t, cmd)
	out, ok := cmd().(searchResultMsg)
	require.True(t, ok)
	assert.Equal(t, 1, out.seq)
	assert.Equal(t, []string{"go"}, src.queries)
}

func TestPageResultFillsDetail(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	m, _ = step(t, m, result(0, "Alpha"))
	m, _ = step(t, m, pageResultMsg{
		title:    "Alpha",
		page:     api.RenderedPage{Title: "Alpha", ConversionError: "bad byte"},
		rendered: "rendered alpha",
	})
	assert.Contains(t, m.detail.View(), "rendered alpha")
	assert.Equal(t, "Failed to convert Cosense to Markdown: bad byte", m.status)

	// Cached detail needs no further fetch.
	assert.Nil(t, m.loadSelected())
}

func TestPageCmdRendersMarkdown(t *testing.T) {
	src := &fakeSource{pages: map[string]api.RenderedPage{
		"Alpha": {Title: "Alpha", Markdown: "# Alpha"},
	}}
	msg := pageCmd(context.Background(), src, "Alpha", "notty", 60)()
	res, ok := msg.(pageResultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	assert.Contains(t, res.rendered, "Alpha")
	assert.Equal(t, []string{"Alpha"}, src.shown)
}

func TestEnterChoosesSelection(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	m, _ = step(t, m, result(0, "Alpha", "Beta"))
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, "Beta", m.selectedTitle())

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Beta", m.chosen)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestOpenUsesPageURL(t *testing.T) {
	var opened string
	m := newTestModel(t, &fakeSource{})
	m.opts.Open = func(u string) error { opened = u; return nil }
	m, _ = step(t, m, result(0, "Alpha"))

	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	msg := cmd().(openResultMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, "https://example.test/p/Alpha", opened)
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.True(t, m.focusTable)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	require.NotNil(t, m.help)
	assert.Contains(t, m.View(), "Search browser")

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.help)
}
