package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/playterm/internal/dispatch"
	"github.com/unkn0wn-root/playterm/internal/gist"
	"github.com/unkn0wn-root/playterm/internal/output"
	"github.com/unkn0wn-root/playterm/internal/playground"
)

// syncSession pushes the editor buffer into the session so the next
// dispatch snapshots what the user sees.
func (m *Model) syncSession() {
	if v := m.editor.Value(); v != m.session.Code() {
		m.session.SetCode(v)
	}
}

// runCmd wraps a dispatch into a tea.Cmd and keeps the spinner going while
// anything is in flight.
func (m *Model) runCmd(cmd dispatch.Cmd) tea.Cmd {
	run := func() tea.Msg {
		return completionMsg{completion: cmd()}
	}
	if m.spinning {
		return run
	}
	m.spinning = true
	return tea.Batch(run, m.spinner.Tick)
}

func (m *Model) execute() tea.Cmd {
	m.syncSession()
	label := m.session.Configuration().PrimaryLabel()
	m.setStatusMessage(statusMsg{text: label + "...", level: statusInfo})
	return m.runCmd(m.dispatcher.Execute(m.ctx))
}

func (m *Model) compileTo(target playground.Target) tea.Cmd {
	m.syncSession()
	if target == playground.TargetMIR && !m.session.Configuration().MIRAvailable() {
		m.setStatusMessage(statusMsg{text: "MIR output usually needs the beta or nightly channel", level: statusWarn})
	} else {
		m.setStatusMessage(statusMsg{text: "Compiling to " + output.KindForTarget(target).Label() + "...", level: statusInfo})
	}
	return m.runCmd(m.dispatcher.CompileTo(m.ctx, target))
}

func (m *Model) format(style playground.FormatStyle) tea.Cmd {
	m.syncSession()
	m.setStatusMessage(statusMsg{text: "Formatting...", level: statusInfo})
	return m.runCmd(m.dispatcher.Format(m.ctx, style))
}

func (m *Model) lint() tea.Cmd {
	m.syncSession()
	m.setStatusMessage(statusMsg{text: "Running clippy...", level: statusInfo})
	return m.runCmd(m.dispatcher.Lint(m.ctx))
}

func (m *Model) saveSnippet() tea.Cmd {
	m.syncSession()
	m.setStatusMessage(statusMsg{text: "Saving gist...", level: statusInfo})
	return m.runCmd(m.dispatcher.SaveSnippet(m.ctx))
}

func (m *Model) loadSnippet(id string) tea.Cmd {
	m.setStatusMessage(statusMsg{text: "Loading gist " + id + "...", level: statusInfo})
	return m.runCmd(m.dispatcher.LoadSnippet(m.ctx, id))
}

// handleCompletion applies a finished dispatch. Superseded completions are
// dropped silently.
func (m *Model) handleCompletion(msg completionMsg) {
	c := msg.completion
	before := m.editor.Value()
	if !m.dispatcher.Apply(c) {
		return
	}
	if c.ReplaceCode {
		after := m.session.Code()
		m.editor.SetValue(after)
		if c.Kind == output.KindFormat {
			m.setStatusMessage(statusMsg{text: changeSummary(before, after), level: statusSuccess})
			return
		}
	}

	r := c.Result
	switch {
	case r.State == output.StateFailed:
		m.setStatusMessage(statusMsg{text: c.Kind.Label() + " failed: " + firstLine(r.Error), level: statusError})
	case c.Kind == output.KindGist:
		m.setStatusMessage(statusMsg{
			text:  fmt.Sprintf("Gist %s ready; f6 to view, alt+y to copy the permalink", r.Gist.ID),
			level: statusSuccess,
		})
	default:
		hint := ""
		if c.Kind.Focusable() && m.store.Focus() != c.Kind {
			hint = "; " + m.keys.Focus[c.Kind].Help().Key + " to view"
		}
		m.setStatusMessage(statusMsg{
			text:  fmt.Sprintf("%s finished in %s%s", c.Kind.Label(), c.Elapsed.Round(time.Millisecond), hint),
			level: statusSuccess,
		})
	}
}

func (m *Model) copyPermalink() {
	r := m.store.Get(output.KindGist)
	if r.State != output.StateSucceeded || r.Gist.ID == "" {
		m.setStatusMessage(statusMsg{text: "No gist to copy yet", level: statusWarn})
		return
	}
	link := gist.Permalink(m.cfg.PlaygroundURL, r.Gist.ID)
	if err := m.copyText(link); err != nil {
		m.setStatusMessage(statusMsg{text: "Clipboard unavailable: " + link, level: statusWarn})
		return
	}
	m.setStatusMessage(statusMsg{text: "Copied " + link, level: statusSuccess})
}

func (m *Model) saveDefaults() {
	if m.cfg.SaveDefaults == nil {
		m.setStatusMessage(statusMsg{text: "Saving defaults is not available", level: statusWarn})
		return
	}
	cfg := m.session.Configuration()
	if err := m.cfg.SaveDefaults(cfg); err != nil {
		m.setStatusMessage(statusMsg{text: "Save defaults failed: " + err.Error(), level: statusError})
		return
	}
	m.setStatusMessage(statusMsg{
		text:  fmt.Sprintf("Saved defaults: %s %s %s", cfg.Channel, cfg.Mode, cfg.CrateType),
		level: statusSuccess,
	})
}
