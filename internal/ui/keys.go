package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/playterm/internal/output"
)

type keyMap struct {
	Run          key.Binding
	Asm          key.Binding
	LLVMIR       key.Binding
	MIR          key.Binding
	Format       key.Binding
	FormatRFC    key.Binding
	Clippy       key.Binding
	GistSave     key.Binding
	GistLoad     key.Binding
	CopyLink     key.Binding
	Channel      key.Binding
	Mode         key.Binding
	Tests        key.Binding
	CrateType    key.Binding
	Editor       key.Binding
	SaveDefaults key.Binding
	NextTab      key.Binding
	PrevTab      key.Binding
	Close        key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	Help         key.Binding
	Quit         key.Binding

	Focus map[output.Kind]key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Run:          key.NewBinding(key.WithKeys("ctrl+r", "alt+enter"), key.WithHelp("ctrl+r", "run")),
		Asm:          key.NewBinding(key.WithKeys("alt+a"), key.WithHelp("alt+a", "asm")),
		LLVMIR:       key.NewBinding(key.WithKeys("alt+l"), key.WithHelp("alt+l", "llvm ir")),
		MIR:          key.NewBinding(key.WithKeys("alt+m"), key.WithHelp("alt+m", "mir")),
		Format:       key.NewBinding(key.WithKeys("alt+f"), key.WithHelp("alt+f", "format")),
		FormatRFC:    key.NewBinding(key.WithKeys("alt+F"), key.WithHelp("alt+F", "format (rfc)")),
		Clippy:       key.NewBinding(key.WithKeys("alt+c"), key.WithHelp("alt+c", "clippy")),
		GistSave:     key.NewBinding(key.WithKeys("alt+s"), key.WithHelp("alt+s", "share gist")),
		GistLoad:     key.NewBinding(key.WithKeys("alt+o"), key.WithHelp("alt+o", "load gist")),
		CopyLink:     key.NewBinding(key.WithKeys("alt+y"), key.WithHelp("alt+y", "copy permalink")),
		Channel:      key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1", "channel")),
		Mode:         key.NewBinding(key.WithKeys("alt+2"), key.WithHelp("alt+2", "mode")),
		Tests:        key.NewBinding(key.WithKeys("alt+3"), key.WithHelp("alt+3", "tests")),
		CrateType:    key.NewBinding(key.WithKeys("alt+4"), key.WithHelp("alt+4", "crate type")),
		Editor:       key.NewBinding(key.WithKeys("alt+5"), key.WithHelp("alt+5", "editor")),
		SaveDefaults: key.NewBinding(key.WithKeys("alt+w"), key.WithHelp("alt+w", "save as defaults")),
		NextTab:      key.NewBinding(key.WithKeys("alt+]"), key.WithHelp("alt+]", "next tab")),
		PrevTab:      key.NewBinding(key.WithKeys("alt+["), key.WithHelp("alt+[", "prev tab")),
		Close:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close output")),
		ScrollUp:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Help:         key.NewBinding(key.WithKeys("f10"), key.WithHelp("f10", "help")),
		Quit:         key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "quit")),
		Focus: map[output.Kind]key.Binding{
			output.KindExecute: key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "execution")),
			output.KindClippy:  key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "clippy")),
			output.KindAsm:     key.NewBinding(key.WithKeys("f3"), key.WithHelp("f3", "asm")),
			output.KindLLVMIR:  key.NewBinding(key.WithKeys("f4"), key.WithHelp("f4", "llvm ir")),
			output.KindMIR:     key.NewBinding(key.WithKeys("f5"), key.WithHelp("f5", "mir")),
			output.KindGist:    key.NewBinding(key.WithKeys("f6"), key.WithHelp("f6", "gist")),
		},
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Format, k.Clippy, k.GistSave, k.Close, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	focus := make([]key.Binding, 0, len(k.Focus))
	for _, kind := range []output.Kind{
		output.KindExecute, output.KindClippy, output.KindAsm,
		output.KindLLVMIR, output.KindMIR, output.KindGist,
	} {
		focus = append(focus, k.Focus[kind])
	}
	return [][]key.Binding{
		{k.Run, k.Asm, k.LLVMIR, k.MIR, k.Format, k.FormatRFC, k.Clippy},
		{k.GistSave, k.GistLoad, k.CopyLink},
		{k.Channel, k.Mode, k.Tests, k.CrateType, k.Editor, k.SaveDefaults},
		append(focus, k.NextTab, k.PrevTab, k.Close),
		{k.ScrollUp, k.ScrollDown, k.Help, k.Quit},
	}
}

// focusTarget reports which pane a focus key selects.
func (k keyMap) focusTarget(msg tea.KeyMsg) (output.Kind, bool) {
	for kind, binding := range k.Focus {
		if key.Matches(msg, binding) {
			return kind, true
		}
	}
	return output.KindNone, false
}
