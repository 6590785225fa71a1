package ui

import (
	"context"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/playterm/internal/dispatch"
	"github.com/unkn0wn-root/playterm/internal/highlight"
	"github.com/unkn0wn-root/playterm/internal/logging"
	"github.com/unkn0wn-root/playterm/internal/output"
	"github.com/unkn0wn-root/playterm/internal/playground"
	"github.com/unkn0wn-root/playterm/internal/theme"
)

type Config struct {
	Dispatcher    *dispatch.Dispatcher
	Theme         *theme.Theme
	Highlight     highlight.Options
	PlaygroundURL string
	Context       context.Context
	Logger        *slog.Logger
	Version       string
	// Clipboard overrides the system clipboard writer.
	Clipboard func(string) error
	// SaveDefaults persists the session configuration. Nil disables the key.
	SaveDefaults func(playground.Configuration) error
}

type Model struct {
	cfg        Config
	ctx        context.Context
	theme      theme.Theme
	dispatcher *dispatch.Dispatcher
	store      *output.Store
	session    *playground.Session
	logger     *slog.Logger
	copyText   func(string) error

	keys      keyMap
	help      help.Model
	editor    textarea.Model
	output    viewport.Model
	spinner   spinner.Model
	gistInput textinput.Model

	width          int
	height         int
	ready          bool
	spinning       bool
	showHelp       bool
	showGistPrompt bool
	statusMessage  statusMsg
	renderedKind   output.Kind
	renderedResult output.Result
}

func New(cfg Config) Model {
	th := theme.DefaultTheme()
	if cfg.Theme != nil {
		th = *cfg.Theme
	}
	d := cfg.Dispatcher
	if d == nil {
		d = dispatch.New(dispatch.Config{})
		cfg.Dispatcher = d
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	copyText := cfg.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	session := d.Session()

	editor := textarea.New()
	editor.Placeholder = "fn main() { ... }"
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.SetValue(session.Code())
	editor.ShowLineNumbers = session.Configuration().Editor == playground.EditorAdvanced
	editor.Focus()

	gistInput := textinput.New()
	gistInput.Placeholder = "gist id"
	gistInput.CharLimit = 0
	gistInput.Prompt = "gist> "

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		cfg:        cfg,
		ctx:        ctx,
		theme:      th,
		dispatcher: d,
		store:      d.Store(),
		session:    session,
		logger:     logger,
		copyText:   copyText,
		keys:       defaultKeyMap(),
		help:       help.New(),
		editor:     editor,
		output:     viewport.New(0, 0),
		spinner:    spin,
		gistInput:  gistInput,
		statusMessage: statusMsg{
			text:  "Ready. " + session.Configuration().PrimaryLabel() + " with ctrl+r, f10 for help.",
			level: statusInfo,
		},
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}
