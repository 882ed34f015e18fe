// Package session persists CLI login sessions in a local SQLite database so
// the token survives between invocations.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/drgym/internal/client"
	_ "modernc.org/sqlite"
)

// ErrNoSession is returned by Load when no usable session is stored.
var ErrNoSession = errors.New("no session")

// Store keeps one session per server URL.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the session database at dir/session.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating session dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "session.db"))
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		server     TEXT PRIMARY KEY,
		username   TEXT NOT NULL,
		token      TEXT NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		saved_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sessions table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Save records s as the current session for server, replacing any previous one.
func (st *Store) Save(server string, s client.Session) error {
	_, err := st.db.Exec(
		`INSERT OR REPLACE INTO sessions (server, username, token, expires_at) VALUES (?, ?, ?, ?)`,
		server, s.Username, s.Token, s.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Load returns the session stored for server. Expired sessions are removed
// and reported as ErrNoSession.
func (st *Store) Load(server string) (client.Session, error) {
	var s client.Session
	err := st.db.QueryRow(
		`SELECT username, token, expires_at FROM sessions WHERE server = ?`, server,
	).Scan(&s.Username, &s.Token, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return client.Session{}, ErrNoSession
	}
	if err != nil {
		return client.Session{}, fmt.Errorf("loading session: %w", err)
	}
	if !st.now().Before(s.ExpiresAt) {
		if err := st.Clear(server); err != nil {
			return client.Session{}, err
		}
		return client.Session{}, ErrNoSession
	}
	return s, nil
}

// Clear forgets the session for server.
func (st *Store) Clear(server string) error {
	if _, err := st.db.Exec(`DELETE FROM sessions WHERE server = ?`, server); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Close closes the session database.
func (st *Store) Close() error {
	return st.db.Close()
}
