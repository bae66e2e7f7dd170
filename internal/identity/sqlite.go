package identity

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists balances in a local SQLite database. Every write
// to a balance also appends a row to the balance_log journal so chip
// movement can be audited after the fact.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if necessary) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS players (
			id         TEXT PRIMARY KEY,
			balance    INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating players table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS balance_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id   TEXT NOT NULL,
			balance     INTEGER NOT NULL,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (player_id) REFERENCES players(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("creating balance_log table: %w", err)
	}
	return nil
}

// GetBalance returns the player's chip balance.
func (s *SQLiteStore) GetBalance(playerID string) (int, error) {
	var balance int
	err := s.db.QueryRow("SELECT balance FROM players WHERE id = ?", playerID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnknownPlayer
	}
	if err != nil {
		return 0, fmt.Errorf("getting balance: %w", err)
	}
	return balance, nil
}

// SetBalance overwrites the player's balance and journals the change.
func (s *SQLiteStore) SetBalance(playerID string, chips int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO players (id, balance)
		VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET balance = ?, updated_at = CURRENT_TIMESTAMP
	`, playerID, chips, chips)
	if err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO balance_log (player_id, balance)
		VALUES (?, ?)
	`, playerID, chips)
	if err != nil {
		return fmt.Errorf("journaling balance: %w", err)
	}

	return tx.Commit()
}

// EnsureBalance creates the player with the starting balance if absent
// and returns the balance now on record.
func (s *SQLiteStore) EnsureBalance(playerID string, starting int) (int, error) {
	_, err := s.db.Exec(`
		INSERT INTO players (id, balance)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, playerID, starting)
	if err != nil {
		return 0, fmt.Errorf("ensuring balance: %w", err)
	}
	return s.GetBalance(playerID)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
