package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/playterm/internal/output"
)

// focus opens the pane for kind. Panes open once their kind is running or
// has something to show.
func (m *Model) focus(kind output.Kind) {
	if r := m.store.Get(kind); r.IsEmpty() && r.State != output.StatePending {
		m.setStatusMessage(statusMsg{text: "No " + kind.Label() + " output yet", level: statusWarn})
		return
	}
	if err := m.store.SetFocus(kind); err != nil {
		m.setStatusMessage(statusMsg{text: err.Error(), level: statusWarn})
		return
	}
	m.applyLayout()
}

func (m *Model) cycleFocus(forward bool) {
	prev := m.store.Focus()
	if m.store.CycleFocus(forward) != prev {
		m.applyLayout()
	}
}

// renderTabs draws one tab per kind in Store.Tabs. It renders nothing
// until some kind has been dispatched.
func (m Model) renderTabs(width int) string {
	tabs := m.store.Tabs()
	if len(tabs) == 0 {
		return ""
	}
	focus := m.store.Focus()
	parts := make([]string, 0, len(tabs)+1)
	for _, kind := range tabs {
		label := kind.Label()
		var style lipgloss.Style
		switch {
		case m.store.Get(kind).State == output.StatePending:
			style = m.theme.TabPending
			if kind == focus {
				style = m.theme.TabActive
			}
			label = m.spinner.View() + label
		case kind == focus:
			style = m.theme.TabActive
		default:
			style = m.theme.TabInactive
		}
		parts = append(parts, style.Render(label))
	}
	if focus != output.KindNone {
		parts = append(parts, m.theme.Muted.Render("esc close"))
	}
	line := m.theme.Tabs.Render(strings.Join(parts, " "))
	return truncateLine(line, width)
}
