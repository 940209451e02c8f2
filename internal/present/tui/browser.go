// Package tui implements the interactive search browser.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/cosense/internal/pages"
	"github.com/mithrel/cosense/pkg/api"
)

const debounce = 250 * time.Millisecond

// Source is what the browser reads pages from.
type Source interface {
	Search(ctx context.Context, query string) (api.SearchResult, error)
	Show(ctx context.Context, title string) (api.RenderedPage, error)
}

type Options struct {
	InitialQuery string
	Style        string
	WordWrap     int
	// PageURL builds the browser URL of a title.
	PageURL func(title string) string
	// Open launches a URL in the system browser.
	Open func(url string) error
}

// Browse runs the search browser. It returns the page chosen with enter,
// or nil when the user quit without choosing.
func Browse(ctx context.Context, src Source, opts Options) (*api.RenderedPage, error) {
	m := newModel(ctx, src, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(model)
	if !ok || fm.chosen == "" {
		return nil, nil
	}
	if page, ok := fm.pageData[fm.chosen]; ok {
		return &page, nil
	}
	page, err := src.Show(ctx, fm.chosen)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

type model struct {
	ctx  context.Context
	src  Source
	opts Options

	input  textinput.Model
	table  table.Model
	detail viewport.Model
	help   *helpModal

	pages     []api.PageSummary
	seq       int
	resultSeq int
	rendered  map[string]string
	pageData  map[string]api.RenderedPage
	shown     string
	chosen    string

	focusTable   bool
	width        int
	height       int
	status       string
	lastDuration time.Duration
}

func newModel(ctx context.Context, src Source, opts Options) model {
	if opts.PageURL == nil {
		opts.PageURL = func(string) string { return "" }
	}
	in := textinput.New()
	in.Placeholder = "Search pages"
	in.Prompt = "› "
	in.SetValue(opts.InitialQuery)
	in.Focus()

	m := model{
		ctx:      ctx,
		src:      src,
		opts:     opts,
		input:    in,
		detail:   viewport.New(40, 10),
		rendered: map[string]string{},
		pageData: map[string]api.RenderedPage{},
	}
	m.table = table.New(table.WithColumns(m.columnsFor(30, 30)), table.WithFocused(true))
	m.applyStyles()
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if q := strings.TrimSpace(m.input.Value()); q != "" {
		cmds = append(cmds, searchCmd(m.ctx, m.src, m.seq, q))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.applyLayout()
		if m.help != nil {
			m.help.resizeForTerm(msg.Width, msg.Height)
		}
		// Rendered detail depends on the pane width.
		m.rendered = map[string]string{}
		return m, m.loadSelected()

	case debounceMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, searchCmd(m.ctx, m.src, msg.seq, msg.query)

	case searchResultMsg:
		return m.applySearch(msg)

	case pageResultMsg:
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Failed to load %s: %v", msg.title, msg.err)
			return m, nil
		}
		m.pageData[msg.title] = msg.page
		m.rendered[msg.title] = msg.rendered
		if msg.title == m.selectedTitle() {
			m.showDetail(msg.title)
		}
		return m, nil

	case openResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Open failed: %v", msg.err)
		} else {
			m.status = "Opened " + msg.url
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.help != nil {
		switch key {
		case "?", "esc", "q", "enter":
			m.help = nil
			return m, nil
		}
		var cmd tea.Cmd
		m.help, cmd = m.help.update(msg)
		return m, cmd
	}

	switch key {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "shift+tab":
		m.focusTable = !m.focusTable
		if m.focusTable {
			m.input.Blur()
		} else {
			m.input.Focus()
		}
		return m, nil
	case "up", "down", "pgup", "pgdown", "ctrl+p", "ctrl+n":
		switch key {
		case "ctrl+p":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "ctrl+n":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		}
		before := m.selectedTitle()
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		if m.selectedTitle() != before {
			return m, tea.Batch(cmd, m.loadSelected())
		}
		return m, cmd
	case "ctrl+d":
		m.detail.SetYOffset(m.detail.YOffset + max(1, m.detail.Height/2))
		return m, nil
	case "ctrl+u":
		m.detail.SetYOffset(m.detail.YOffset - max(1, m.detail.Height/2))
		return m, nil
	case "enter":
		if t := m.selectedTitle(); t != "" {
			m.chosen = t
			return m, tea.Quit
		}
		return m, nil
	case "ctrl+o":
		return m, m.openSelected()
	}

	if m.focusTable {
		switch key {
		case "q":
			return m, tea.Quit
		case "o":
			return m, m.openSelected()
		case "?":
			m.help = newHelpModal(m.width, m.height)
			return m, nil
		case "j", "k", "g", "G", "home", "end":
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, tea.Batch(cmd, m.loadSelected())
		}
		return m, nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != prev {
		m.seq++
		return m, tea.Batch(cmd, debounceCmd(m.seq, strings.TrimSpace(q)))
	}
	return m, cmd
}

func (m model) applySearch(msg searchResultMsg) (tea.Model, tea.Cmd) {
	if msg.seq < m.resultSeq {
		return m, nil
	}
	m.resultSeq = msg.seq
	m.lastDuration = msg.dur

	var stale *pages.StaleError
	switch {
	case msg.err == nil:
		m.status = fmt.Sprintf("%d pages", len(msg.res.Pages))
	case len(msg.res.Pages) > 0 && errors.As(msg.err, &stale):
		m.status = fmt.Sprintf("Offline, %d cached pages", len(msg.res.Pages))
	default:
		// Previous rows stay visible.
		m.status = fmt.Sprintf("Search failed: %v", msg.err)
		return m, nil
	}

	m.pages = msg.res.Pages
	m.updateRows()
	m.table.SetCursor(0)
	return m, m.loadSelected()
}

func (m *model) updateRows() {
	rows := make([]table.Row, 0, len(m.pages))
	for _, p := range m.pages {
		rows = append(rows, table.Row{p.Title, p.Snippet()})
	}
	m.table.SetRows(rows)
}

func (m model) selectedTitle() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.pages) {
		return ""
	}
	return m.pages[idx].Title
}

// loadSelected shows the cached detail of the selected page or fetches it.
// The previous detail stays on screen while loading.
func (m *model) loadSelected() tea.Cmd {
	title := m.selectedTitle()
	if title == "" {
		return nil
	}
	if _, ok := m.rendered[title]; ok {
		m.showDetail(title)
		return nil
	}
	m.status = "Loading " + title + "…"
	return pageCmd(m.ctx, m.src, title, m.opts.Style, m.detail.Width)
}

func (m *model) showDetail(title string) {
	if m.shown != title {
		m.detail.GotoTop()
	}
	m.shown = title
	m.detail.SetContent(m.rendered[title])
	if p := m.pageData[title]; p.ConversionError != "" {
		m.status = "Failed to convert Cosense to Markdown: " + p.ConversionError
	} else if p.Stale {
		m.status = title + " (cached copy)"
	} else {
		m.status = title
	}
}

func (m model) openSelected() tea.Cmd {
	title := m.selectedTitle()
	if title == "" || m.opts.Open == nil {
		return nil
	}
	return openCmd(m.opts.Open, m.opts.PageURL(title))
}

func (m model) renderFooter() string {
	left := "↑/↓ select • tab focus • enter print • ctrl+o open • ? help • esc quit"

	var right string
	if m.status != "" {
		if m.lastDuration > 0 {
			right = fmt.Sprintf("%s (%s) ", m.status, m.lastDuration.Round(time.Millisecond))
		} else {
			right = m.status + " "
		}
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	space := width - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		return left + "\n" + right
	}
	return left + strings.Repeat(" ", space) + right
}

func (m model) View() string {
	pane := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(lipgloss.Color("240")).
		PaddingLeft(1)
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.table.View(), pane.Render(m.detail.View()))
	base := m.input.View() + "\n" + body + "\n" + m.renderFooter()
	if m.help != nil {
		return m.renderOverlay(base, m.help.View(), m.help.width, m.help.height)
	}
	return base
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := max(4, m.height-3)
	tableW := m.width * 2 / 5
	if tableW < 30 {
		tableW = min(30, m.width)
	}
	detailW := max(10, m.width-tableW-3)

	titleW := max(8, tableW*3/5)
	snippetW := max(8, tableW-titleW-4)
	m.table.SetColumns(m.columnsFor(titleW, snippetW))
	m.table.SetWidth(tableW)
	m.table.SetHeight(h)

	m.detail.Width = detailW
	m.detail.Height = h
	m.input.Width = max(10, m.width-4)
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

func (m *model) columnsFor(titleW, snippetW int) []table.Column {
	return []table.Column{
		{Title: "Title", Width: titleW},
		{Title: "Lines", Width: snippetW},
	}
}
