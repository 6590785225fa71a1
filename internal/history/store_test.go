package history

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func openTemp(t *testing.T, max int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"), max)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndEntriesNewestFirst(t *testing.T) {
	store := openTemp(t, 10)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.Append(Entry{
			ID:         strconv.Itoa(i),
			ExecutedAt: base.Add(time.Duration(i) * time.Minute),
			Kind:       "execute",
			State:      "succeeded",
			Duration:   time.Duration(i) * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := store.Entries(0)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "2" || entries[2].ID != "0" {
		t.Fatalf("expected newest first, got %s..%s", entries[0].ID, entries[2].ID)
	}
	if entries[1].Duration != time.Millisecond {
		t.Fatalf("expected duration round trip, got %s", entries[1].Duration)
	}
}

func TestAppendPrunesToMax(t *testing.T) {
	store := openTemp(t, 2)
	base := time.Now()
	for i := 0; i < 5; i++ {
		if err := store.Append(Entry{ID: strconv.Itoa(i), ExecutedAt: base.Add(time.Duration(i) * time.Second), Kind: "clippy", State: "failed"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	entries, err := store.Entries(0)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "4" || entries[1].ID != "3" {
		t.Fatalf("expected the two newest entries, got %+v", entries)
	}
}

func TestByKindAndDelete(t *testing.T) {
	store := openTemp(t, 10)
	_ = store.Append(Entry{ID: "a", Kind: "execute", State: "succeeded", Superseded: true})
	_ = store.Append(Entry{ID: "b", Kind: "format", State: "failed", Error: "rustfmt"})

	got, err := store.ByKind("format", 5)
	if err != nil {
		t.Fatalf("by kind: %v", err)
	}
	if len(got) != 1 || got[0].Error != "rustfmt" {
		t.Fatalf("unexpected format entries %+v", got)
	}
	exec, _ := store.ByKind("execute", 0)
	if len(exec) != 1 || !exec[0].Superseded {
		t.Fatalf("expected superseded flag to persist, got %+v", exec)
	}

	removed, err := store.Delete("a")
	if err != nil || !removed {
		t.Fatalf("expected delete to remove entry, got %v (%v)", removed, err)
	}
	removed, _ = store.Delete("a")
	if removed {
		t.Fatalf("second delete should report nothing removed")
	}
}

func TestAppendRequiresID(t *testing.T) {
	store := openTemp(t, 1)
	if err := store.Append(Entry{Kind: "execute"}); err == nil {
		t.Fatalf("expected missing id error")
	}
}

func TestAppendClipsSnippetOnRuneBoundary(t *testing.T) {
	store := openTemp(t, 5)
	snippet := strings.Repeat("a", snippetLimit-1) + "é tail"
	if err := store.Append(Entry{ID: "u", Kind: "execute", State: "succeeded", Snippet: snippet}); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, err := store.Entries(1)
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries: %v %+v", err, entries)
	}
	got := entries[0].Snippet
	if !utf8.ValidString(got) {
		t.Fatalf("stored snippet is not valid UTF-8")
	}
	if len(got) != snippetLimit-1 {
		t.Fatalf("expected clip before the split rune, got %d bytes", len(got))
	}
}

func TestClear(t *testing.T) {
	store := openTemp(t, 5)
	_ = store.Append(Entry{ID: "a", Kind: "execute", State: "succeeded"})
	_ = store.Append(Entry{ID: "b", Kind: "clippy", State: "failed"})

	n, err := store.Clear()
	if err != nil || n != 2 {
		t.Fatalf("expected 2 removed, got %d (%v)", n, err)
	}
	entries, _ := store.Entries(0)
	if len(entries) != 0 {
		t.Fatalf("expected empty history, got %+v", entries)
	}
}

func TestWriterFlushesOnClose(t *testing.T) {
	store := openTemp(t, 50)
	w := NewWriter(store, 4, nil)
	for i := 0; i < 3; i++ {
		if err := w.Append(Entry{ID: strconv.Itoa(i), Kind: "execute", State: "succeeded"}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	entries, _ := store.Entries(0)
	if len(entries) != 3 {
		t.Fatalf("expected queued entries to be written, got %d", len(entries))
	}
	if err := w.Append(Entry{ID: "late"}); err == nil {
		t.Fatalf("append after close should fail")
	}
}

type blockingAppender struct {
	release chan struct{}
}

func (b blockingAppender) Append(Entry) error {
	<-b.release
	return nil
}

func TestWriterDoesNotBlockWhenFull(t *testing.T) {
	dst := blockingAppender{release: make(chan struct{})}
	w := NewWriter(dst, 1, nil)

	var failed bool
	for i := 0; i < 3; i++ {
		if err := w.Append(Entry{ID: strconv.Itoa(i)}); err != nil {
			failed = true
		}
	}
	if !failed {
		t.Fatalf("expected a full queue to reject entries")
	}
	close(dst.release)
	_ = w.Close()
}
