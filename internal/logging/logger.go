package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/unkn0wn-root/playterm/internal/errdef"
)

const FileName = "playterm.log"

type Options struct {
	// Dir is where the log file is created. Empty disables logging.
	Dir    string
	Level  string
	Format string
}

// Discard returns a logger that drops everything. The TUI owns the terminal,
// so this is the default.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// New builds a file backed logger. The returned closer releases the file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return Discard(), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, nil, errdef.Wrap(errdef.CodeConfig, err, "create log dir")
	}
	path := filepath.Join(opts.Dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errdef.Wrap(errdef.CodeConfig, err, "open log file")
	}
	return NewWithWriter(f, opts.Level, opts.Format), f, nil
}

// NewWithWriter creates a logger writing to w without touching the global
// default logger.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		handler = slog.NewTextHandler(w, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
