package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/playterm/internal/output"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// applyLayout splits the screen between editor and output pane.
func (m *Model) applyLayout() {
	w, h := m.size()
	m.help.Width = w

	chrome := 2 // header and status bar
	chrome += lipgloss.Height(m.help.View(m.keys))
	if len(m.store.Tabs()) > 0 {
		chrome++
	}
	if m.showGistPrompt {
		chrome++
	}
	body := maxInt(h-chrome, 4)

	editorHeight := body - 2
	if m.store.Focus() != output.KindNone {
		outHeight := body / 2
		editorHeight = body - outHeight - 2
		m.output.Width = maxInt(w-2, 1)
		m.output.Height = maxInt(outHeight-2, 1)
	}
	m.editor.SetWidth(maxInt(w-2, 1))
	m.editor.SetHeight(maxInt(editorHeight, 1))
	m.refreshOutput()
}

// refreshOutput re-renders the focused pane when its result changed.
func (m *Model) refreshOutput() {
	kind := m.store.Focus()
	if kind == output.KindNone {
		m.renderedKind = output.KindNone
		return
	}
	r := m.store.Get(kind)
	if kind == m.renderedKind && r == m.renderedResult && r.State != output.StatePending {
		return
	}
	if kind != m.renderedKind {
		m.output.GotoTop()
	}
	m.renderedKind = kind
	m.renderedResult = r
	m.output.SetContent(renderPane(kind, r, paneOptions{
		theme:         m.theme,
		highlight:     m.cfg.Highlight,
		playgroundURL: m.cfg.PlaygroundURL,
		loading:       m.spinner.View(),
	}))
}

func (m Model) View() string {
	w, _ := m.size()
	var rows []string
	rows = append(rows, m.renderHeader(w))
	rows = append(rows, m.theme.EditorBorder.Render(m.editor.View()))
	if tabs := m.renderTabs(w); tabs != "" {
		rows = append(rows, tabs)
	}
	if m.store.Focus() != output.KindNone {
		rows = append(rows, m.theme.OutputBorder.Render(m.output.View()))
	}
	if m.showGistPrompt {
		rows = append(rows, m.theme.Prompt.Render(m.gistInput.View()))
	}
	rows = append(rows, m.renderStatusBar(w))
	rows = append(rows, m.help.View(m.keys))
	return strings.Join(rows, "\n")
}

func (m Model) renderHeader(width int) string {
	cfg := m.session.Configuration()
	segments := []string{
		m.theme.HeaderBrand.Render("playterm"),
		m.theme.PrimaryAction.Render(cfg.PrimaryLabel()),
	}
	values := []string{
		string(cfg.Channel),
		string(cfg.Mode),
		string(cfg.CrateType),
	}
	if cfg.Tests {
		values = append(values, "tests")
	}
	if !cfg.MIRAvailable() {
		values = append(values, "no mir")
	}
	for i, v := range values {
		seg := m.theme.HeaderSegment(i)
		segments = append(segments, lipgloss.NewStyle().
			Background(seg.Background).
			Foreground(seg.Foreground).
			Padding(0, 1).
			Render(v))
	}
	segments = append(segments, m.theme.Muted.Render(bufferStats(m.session.Code())))
	if m.cfg.Version != "" {
		segments = append(segments, m.theme.Muted.Render(m.cfg.Version))
	}
	return truncateLine(strings.Join(segments, " "), width)
}
