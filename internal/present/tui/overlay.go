package tui

import (
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// renderOverlay draws fg centered over a dimmed base view.
func (m model) renderOverlay(base, fg string, overlayW, overlayH int) string {
	termW, termH := m.width, m.height
	if termW <= 0 {
		termW = 80
	}
	if termH <= 0 {
		termH = 24
	}
	x := (termW - overlayW) / 2
	y := (termH - overlayH) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	dimBase := lipglossv2.NewStyle().Faint(true).Render(base)

	baseLayer := lipglossv2.NewLayer(dimBase).
		Width(termW).
		Height(termH)
	fgLayer := lipglossv2.NewLayer(fg).
		Width(overlayW).
		Height(overlayH).
		X(x).
		Y(y)

	return lipglossv2.NewCanvas(baseLayer, fgLayer).Render()
}
