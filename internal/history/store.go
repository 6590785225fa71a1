package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"

	"github.com/unkn0wn-root/playterm/internal/errdef"
)

const snippetLimit = 2048

// Entry is one settled dispatch.
type Entry struct {
	ID         string
	ExecutedAt time.Time
	Kind       string
	State      string
	Superseded bool
	Channel    string
	Mode       string
	Duration   time.Duration
	Error      string
	Snippet    string
}

type Store struct {
	db         *sql.DB
	maxEntries int
	mu         sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	executed_at INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	state       TEXT NOT NULL,
	superseded  INTEGER NOT NULL DEFAULT 0,
	channel     TEXT NOT NULL DEFAULT '',
	mode        TEXT NOT NULL DEFAULT '',
	duration_ns INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	snippet     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS runs_executed_at ON runs(executed_at DESC);
`

// Open creates a sqlite backed history store with a bounded entry count.
func Open(path string, maxEntries int) (*Store, error) {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errdef.Wrap(errdef.CodeHistory, err, "create history dir")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "open history")
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errdef.Wrap(errdef.CodeHistory, err, "migrate history")
	}
	return &Store{db: db, maxEntries: maxEntries}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append records an entry and prunes the oldest rows beyond the limit.
func (s *Store) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(entry.ID) == "" {
		return errdef.New(errdef.CodeHistory, "entry id is required")
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now()
	}
	snippet := clipSnippet(entry.Snippet, snippetLimit)

	tx, err := s.db.Begin()
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "begin append")
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO runs (id, executed_at, kind, state, superseded, channel, mode, duration_ns, error, snippet)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ExecutedAt.UnixNano(),
		entry.Kind,
		entry.State,
		boolInt(entry.Superseded),
		entry.Channel,
		entry.Mode,
		int64(entry.Duration),
		entry.Error,
		snippet,
	)
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "insert entry")
	}
	_, err = tx.Exec(
		`DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY executed_at DESC, id DESC LIMIT ?
		)`,
		s.maxEntries,
	)
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "prune history")
	}
	if err := tx.Commit(); err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "commit append")
	}
	return nil
}

// Entries returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *Store) Entries(limit int) ([]Entry, error) {
	return s.query(`SELECT id, executed_at, kind, state, superseded, channel, mode, duration_ns, error, snippet
		FROM runs ORDER BY executed_at DESC, id DESC LIMIT ?`, limitArg(limit))
}

// ByKind filters entries by operation kind, newest first.
func (s *Store) ByKind(kind string, limit int) ([]Entry, error) {
	return s.query(`SELECT id, executed_at, kind, state, superseded, channel, mode, duration_ns, error, snippet
		FROM runs WHERE kind = ? ORDER BY executed_at DESC, id DESC LIMIT ?`, kind, limitArg(limit))
}

// Delete removes an entry by id and reports whether a record was removed.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return false, errdef.Wrap(errdef.CodeHistory, err, "delete entry")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errdef.Wrap(errdef.CodeHistory, err, "delete entry")
	}
	return n > 0, nil
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM runs`)
	if err != nil {
		return 0, errdef.Wrap(errdef.CodeHistory, err, "clear history")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errdef.Wrap(errdef.CodeHistory, err, "clear history")
	}
	return int(n), nil
}

func (s *Store) query(q string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "query history")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			executedAt int64
			superseded int
			duration   int64
		)
		if err := rows.Scan(&e.ID, &executedAt, &e.Kind, &e.State, &superseded, &e.Channel, &e.Mode, &duration, &e.Error, &e.Snippet); err != nil {
			return nil, errdef.Wrap(errdef.CodeHistory, err, "scan history")
		}
		e.ExecutedAt = time.Unix(0, executedAt)
		e.Superseded = superseded != 0
		e.Duration = time.Duration(duration)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "read history")
	}
	return entries, nil
}

// clipSnippet cuts s to at most limit bytes without splitting a rune.
func clipSnippet(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
