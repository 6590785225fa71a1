// Package highlight colours pane content with chroma.
package highlight

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/quick"

	"github.com/unkn0wn-root/playterm/internal/output"
)

const (
	DefaultFormatter = "terminal16m"
	DefaultStyle     = "monokai"
)

// Options picks the chroma formatter and style. Disabled returns input
// untouched, used for --no-color and non-terminal output.
type Options struct {
	Formatter string
	Style     string
	Disabled  bool
}

func Defaults() Options {
	return Options{Formatter: DefaultFormatter, Style: DefaultStyle}
}

// LexerFor names the chroma lexer for a pane's code.
func LexerFor(kind output.Kind) string {
	switch kind {
	case output.KindAsm:
		return "nasm"
	case output.KindLLVMIR:
		return "llvm"
	case output.KindMIR, output.KindExecute, output.KindClippy, output.KindFormat, output.KindGist:
		return "rust"
	default:
		return ""
	}
}

// Code highlights content for kind. On any failure the source is returned.
func Code(kind output.Kind, content string, opts Options) string {
	return Source(LexerFor(kind), content, opts)
}

func Source(lexer, content string, opts Options) string {
	if opts.Disabled || lexer == "" || strings.TrimSpace(content) == "" {
		return content
	}
	formatter := opts.Formatter
	if formatter == "" {
		formatter = DefaultFormatter
	}
	style := opts.Style
	if style == "" {
		style = DefaultStyle
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, lexer, formatter, style); err != nil {
		return content
	}
	return buf.String()
}
