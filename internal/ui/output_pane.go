package ui

import (
	"strings"

	"github.com/unkn0wn-root/playterm/internal/gist"
	"github.com/unkn0wn-root/playterm/internal/highlight"
	"github.com/unkn0wn-root/playterm/internal/output"
	"github.com/unkn0wn-root/playterm/internal/theme"
)

type paneOptions struct {
	theme         theme.Theme
	highlight     highlight.Options
	playgroundURL string
	loading       string
}

// renderPane draws the body of one output pane.
func renderPane(kind output.Kind, r output.Result, opts paneOptions) string {
	th := opts.theme
	switch r.State {
	case output.StateIdle:
		return th.Muted.Render("Nothing here yet")
	case output.StatePending:
		return opts.loading + th.Muted.Render("Waiting for "+kind.Label()+"...")
	case output.StateFailed:
		return section(th, "Errors", th.Error.Render(r.Error))
	}

	if kind == output.KindGist {
		return renderGist(r.Gist, opts)
	}

	var parts []string
	if r.Error != "" {
		parts = append(parts, section(th, "Errors", th.Error.Render(r.Error)))
	}
	if r.Code != "" && kind.HasCode() {
		parts = append(parts, section(th, "Result", highlight.Code(kind, r.Code, opts.highlight)))
	}
	if r.Stderr != "" {
		parts = append(parts, section(th, "Standard Error", r.Stderr))
	}
	if r.Stdout != "" {
		parts = append(parts, section(th, "Standard Output", r.Stdout))
	}
	if len(parts) == 0 {
		return th.Muted.Render("No output")
	}
	return strings.Join(parts, "\n\n")
}

func renderGist(g output.Gist, opts paneOptions) string {
	th := opts.theme
	if g.ID == "" {
		return th.Muted.Render("No gist")
	}
	lines := []string{
		section(th, "Permalink to the playground", th.Link.Render(gist.Permalink(opts.playgroundURL, g.ID))),
	}
	if g.URL != "" {
		lines = append(lines, section(th, "Direct link to the gist", th.Link.Render(g.URL)))
	}
	return strings.Join(lines, "\n\n")
}

func section(th theme.Theme, heading, body string) string {
	return th.PaneHeading.Render(heading) + "\n" + strings.TrimRight(body, "\n")
}
