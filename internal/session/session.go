package session

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoSession is returned by Load when no complete session is stored.
var ErrNoSession = errors.New("no stored session")

// Session is the locally persisted proof of a logged-in identity.
// A session missing any field is treated as no session at all.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Complete reports whether all three identity fields are present.
func (s Session) Complete() bool {
	return s.UserID != "" && s.Username != "" && s.Token != ""
}

// Store persists the active session in a local SQLite database.
// At most one session row exists at a time.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the session database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	createSessionTable := `
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		user_id TEXT NOT NULL,
		username TEXT NOT NULL,
		token TEXT NOT NULL
	);`

	if _, err := db.Exec(createSessionTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session table: %w", err)
	}

	return &Store{db: db}, nil
}

// Save overwrites any previously stored session with s.
func (st *Store) Save(s Session) error {
	tx, err := st.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT OR REPLACE INTO session (id, user_id, username, token) VALUES (1, ?, ?, ?)",
		s.UserID, s.Username, s.Token,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return tx.Commit()
}

// Load returns the stored session, or ErrNoSession when no row exists or
// any of the three fields is empty.
func (st *Store) Load() (Session, error) {
	var s Session
	err := st.db.QueryRow("SELECT user_id, username, token FROM session WHERE id = 1").
		Scan(&s.UserID, &s.Username, &s.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if !s.Complete() {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (st *Store) Clear() error {
	if _, err := st.db.Exec("DELETE FROM session WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (st *Store) Close() error {
	return st.db.Close()
}
