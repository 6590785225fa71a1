package history

import (
	"log/slog"
	"sync"

	"github.com/unkn0wn-root/playterm/internal/errdef"
	"github.com/unkn0wn-root/playterm/internal/logging"
)

const defaultWriterBuffer = 64

type appender interface {
	Append(entry Entry) error
}

// Writer appends entries on a background goroutine so callers on the UI
// loop never wait on the database.
type Writer struct {
	dst     appender
	logger  *slog.Logger
	entries chan Entry
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewWriter(dst appender, buffer int, logger *slog.Logger) *Writer {
	if buffer <= 0 {
		buffer = defaultWriterBuffer
	}
	if logger == nil {
		logger = logging.Discard()
	}
	w := &Writer{
		dst:     dst,
		logger:  logger,
		entries: make(chan Entry, buffer),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) run() {
	defer close(w.done)
	for entry := range w.entries {
		if err := w.dst.Append(entry); err != nil {
			w.logger.Warn("history append failed", "id", entry.ID, "error", err)
		}
	}
}

// Append queues entry. It fails without blocking when the queue is full or
// the writer is closed.
func (w *Writer) Append(entry Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errdef.New(errdef.CodeHistory, "history writer closed")
	}
	select {
	case w.entries <- entry:
		return nil
	default:
		return errdef.New(errdef.CodeHistory, "history queue full, dropped %s", entry.ID)
	}
}

// Close writes every queued entry and stops the writer.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.entries)
	w.mu.Unlock()
	<-w.done
	return nil
}
