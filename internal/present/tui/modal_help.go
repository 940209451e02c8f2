package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

var helpLines = []string{
	"Search browser",
	"",
	"  type         edit the query (results refresh as you type)",
	"  ↑/↓ ctrl+p/n move the selection",
	"  tab          switch focus between query and results",
	"  j/k g/G      move within results (results focused)",
	"  ctrl+d/u     scroll the page preview",
	"  enter        print the selected page and exit",
	"  ctrl+o, o    open the selected page in the browser",
	"  ?            toggle this help (results focused)",
	"  esc, ctrl+c  quit",
}

type helpModal struct {
	vp     viewport.Model
	width  int
	height int
}

func newHelpModal(termW, termH int) *helpModal {
	h := &helpModal{vp: viewport.New(0, 0)}
	h.vp.SetContent(strings.Join(helpLines, "\n"))
	h.resizeForTerm(termW, termH)
	return h
}

// resizeForTerm sizes the box to the content, capped by the terminal.
func (h *helpModal) resizeForTerm(termW, termH int) {
	if termW <= 0 {
		termW = 80
	}
	if termH <= 0 {
		termH = 24
	}
	contentW := 0
	for _, l := range helpLines {
		contentW = max(contentW, lipglossv2.Width(l))
	}
	h.width = min(contentW+4, termW)
	h.height = min(len(helpLines)+2, termH)
	h.vp.Width = max(1, h.width-4)
	h.vp.Height = max(1, h.height-2)
}

func (h *helpModal) update(msg tea.Msg) (*helpModal, tea.Cmd) {
	var cmd tea.Cmd
	h.vp, cmd = h.vp.Update(msg)
	return h, cmd
}

func (h *helpModal) View() string {
	box := lipglossv2.NewStyle().
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63")).
		Padding(0, 1).
		Width(h.width).
		Height(h.height)
	return box.Render(h.vp.View())
}
