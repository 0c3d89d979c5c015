package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		serverUrl TEXT NOT NULL,
		startedAt REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entries (
		sessionId TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		stamp TEXT NOT NULL,
		text TEXT NOT NULL,
		sequenceNumber INTEGER NOT NULL,
		createdAt REAL NOT NULL,
		UNIQUE(sessionId, kind, sequenceNumber)
	);
`

// Store provides access to the archive database.
type Store struct {
	db *sql.DB
}

// Open opens the archive at path with WAL, creating it and its schema if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginSession records the start of a dashboard run.
func (s *Store) BeginSession(id, serverURL string, startedAt time.Time) error {
	_, err := s.db.Exec(`INSERT INTO sessions (id, serverUrl, startedAt) VALUES (?, ?, ?)`,
		id, serverURL, unixFromTime(startedAt))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SaveEntry appends an entry to its session. Sequence numbers are per kind.
func (s *Store) SaveEntry(e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO entries (sessionId, kind, stamp, text, sequenceNumber, createdAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.SessionID, string(e.Kind), e.Stamp, e.Text, e.SequenceNumber, unixFromTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert %s entry: %w", e.Kind, err)
	}
	return nil
}

// Sessions returns all sessions, most recent first, with their entry counts.
func (s *Store) Sessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT s.id, s.serverUrl, s.startedAt, COUNT(e.sessionId)
		FROM sessions s
		LEFT JOIN entries e ON e.sessionId = s.id
		GROUP BY s.id
		ORDER BY s.startedAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var startedAt float64
		if err := rows.Scan(&sess.ID, &sess.ServerURL, &startedAt, &sess.EntryCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.StartedAt = timeFromUnix(startedAt)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// LatestSession returns the most recent session, or nil if the archive is empty.
func (s *Store) LatestSession() (*Session, error) {
	sessions, err := s.Sessions(1)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// EntriesForSession returns a session's entries of one kind in sequence order.
func (s *Store) EntriesForSession(sessionID string, kind Kind) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT sessionId, kind, stamp, text, sequenceNumber, createdAt
		FROM entries
		WHERE sessionId = ? AND kind = ?
		ORDER BY sequenceNumber ASC
	`, sessionID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var k string
		var createdAt float64
		if err := rows.Scan(&e.SessionID, &k, &e.Stamp, &e.Text, &e.SequenceNumber, &createdAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Kind = Kind(k)
		e.CreatedAt = timeFromUnix(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
