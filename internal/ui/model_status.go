package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) setStatusMessage(msg statusMsg) {
	m.statusMessage = msg
	if msg.level == statusError && strings.TrimSpace(msg.text) != "" {
		m.logger.Debug("status error", "text", msg.text)
	}
}

func (m Model) statusStyle() lipgloss.Style {
	switch m.statusMessage.level {
	case statusWarn:
		return m.theme.Warning
	case statusError:
		return m.theme.Error
	case statusSuccess:
		return m.theme.Success
	default:
		return m.theme.StatusBarValue
	}
}

func (m Model) renderStatusBar(width int) string {
	right := ""
	if n := m.store.InFlight(); n > 0 {
		right = m.spinner.View() + m.theme.StatusBarKey.Render(fmt.Sprintf("%d in flight", n))
	}
	avail := width - visibleWidth(right) - 2
	left := m.statusStyle().Render(truncatePlain(firstLine(m.statusMessage.text), maxInt(avail, 0)))
	gap := maxInt(width-visibleWidth(left)-visibleWidth(right)-2, 1)
	return m.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}
