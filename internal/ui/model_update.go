package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/playterm/internal/output"
	"github.com/unkn0wn-root/playterm/internal/playground"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.ready = true
		m.applyLayout()
		return m, nil
	case completionMsg:
		m.handleCompletion(typed)
		m.applyLayout()
		return m, nil
	case statusMsg:
		m.setStatusMessage(typed)
		return m, nil
	case spinner.TickMsg:
		if m.store.InFlight() == 0 {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		m.refreshOutput()
		return m, cmd
	case tea.KeyMsg:
		if m.showGistPrompt {
			return m.updateGistPrompt(typed)
		}
		if cmd, handled := m.handleKey(typed); handled {
			m.refreshOutput()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	cmds = append(cmds, cmd)
	m.syncSession()
	return m, tea.Batch(cmds...)
}

// handleKey runs global bindings. Keys it does not claim go to the editor.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := m.keys
	if kind, ok := k.focusTarget(msg); ok {
		m.focus(kind)
		return nil, true
	}

	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit, true
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.applyLayout()
		return nil, true
	case key.Matches(msg, k.Run):
		return m.execute(), true
	case key.Matches(msg, k.Asm):
		return m.compileTo(playground.TargetAssembly), true
	case key.Matches(msg, k.LLVMIR):
		return m.compileTo(playground.TargetLLVMIR), true
	case key.Matches(msg, k.MIR):
		return m.compileTo(playground.TargetMIR), true
	case key.Matches(msg, k.Format):
		return m.format(playground.FormatDefault), true
	case key.Matches(msg, k.FormatRFC):
		return m.format(playground.FormatRFC), true
	case key.Matches(msg, k.Clippy):
		return m.lint(), true
	case key.Matches(msg, k.GistSave):
		return m.saveSnippet(), true
	case key.Matches(msg, k.GistLoad):
		m.showGistPrompt = true
		m.gistInput.Reset()
		m.editor.Blur()
		return m.gistInput.Focus(), true
	case key.Matches(msg, k.CopyLink):
		m.copyPermalink()
		return nil, true
	case key.Matches(msg, k.Channel):
		cfg := m.session.Update(func(c *playground.Configuration) { c.Channel = c.NextChannel() })
		m.setStatusMessage(statusMsg{text: "Channel: " + string(cfg.Channel), level: statusInfo})
		return nil, true
	case key.Matches(msg, k.Mode):
		cfg := m.session.Update(func(c *playground.Configuration) { c.Mode = c.NextMode() })
		m.setStatusMessage(statusMsg{text: "Mode: " + string(cfg.Mode), level: statusInfo})
		return nil, true
	case key.Matches(msg, k.Tests):
		m.session.Update(func(c *playground.Configuration) { c.Tests = !c.Tests })
		return nil, true
	case key.Matches(msg, k.CrateType):
		m.session.Update(func(c *playground.Configuration) {
			if c.CrateType == playground.CrateBinary {
				c.CrateType = playground.CrateLibrary
			} else {
				c.CrateType = playground.CrateBinary
			}
		})
		return nil, true
	case key.Matches(msg, k.Editor):
		cfg := m.session.Update(func(c *playground.Configuration) {
			if c.Editor == playground.EditorAdvanced {
				c.Editor = playground.EditorSimple
			} else {
				c.Editor = playground.EditorAdvanced
			}
		})
		m.editor.ShowLineNumbers = cfg.Editor == playground.EditorAdvanced
		return nil, true
	case key.Matches(msg, k.SaveDefaults):
		m.saveDefaults()
		return nil, true
	case key.Matches(msg, k.NextTab):
		m.cycleFocus(true)
		return nil, true
	case key.Matches(msg, k.PrevTab):
		m.cycleFocus(false)
		return nil, true
	case key.Matches(msg, k.Close):
		if m.store.Focus() == output.KindNone {
			return nil, false
		}
		m.store.Close()
		m.applyLayout()
		return nil, true
	case key.Matches(msg, k.ScrollUp):
		m.output.PageUp()
		return nil, true
	case key.Matches(msg, k.ScrollDown):
		m.output.PageDown()
		return nil, true
	}
	return nil, false
}

func (m Model) updateGistPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeGistPrompt()
		return m, nil
	case tea.KeyEnter:
		id := strings.TrimSpace(m.gistInput.Value())
		m.closeGistPrompt()
		if id == "" {
			m.setStatusMessage(statusMsg{text: "Gist id is required", level: statusWarn})
			return m, nil
		}
		cmd := m.loadSnippet(id)
		m.refreshOutput()
		return m, cmd
	}
	var cmd tea.Cmd
	m.gistInput, cmd = m.gistInput.Update(msg)
	return m, cmd
}

func (m *Model) closeGistPrompt() {
	m.showGistPrompt = false
	m.gistInput.Blur()
	m.editor.Focus()
}
