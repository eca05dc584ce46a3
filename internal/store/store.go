package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS wins (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id    TEXT NOT NULL,
	player_id  INTEGER NOT NULL,
	player_name TEXT NOT NULL,
	won_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_wins_player ON wins(player_id);
`

// Store keeps the historical win tally in SQLite. In-progress game state is
// never persisted; only the one fact that survives a game, who won it.
type Store struct {
	db *sql.DB
}

type WinnerRow struct {
	PlayerID int64
	Name     string
	Wins     int
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite allows one writer; keep the pool to a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA synchronous = NORMAL`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordWin appends one win. Called exactly once per WinnerDeclared event.
func (s *Store) RecordWin(gameID string, playerID int64, name string) error {
	_, err := s.db.Exec(
		`INSERT INTO wins (game_id, player_id, player_name, won_at) VALUES (?, ?, ?, ?)`,
		gameID, playerID, name, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record win: %w", err)
	}
	return nil
}

// TopWinners returns up to n players ordered by win count, most wins first.
// The most recently recorded name is reported for each player.
func (s *Store) TopWinners(n int) ([]WinnerRow, error) {
	rows, err := s.db.Query(`
		SELECT player_id,
		       (SELECT player_name FROM wins w2 WHERE w2.player_id = w.player_id ORDER BY w2.id DESC LIMIT 1),
		       COUNT(*) AS wins
		FROM wins w
		GROUP BY player_id
		ORDER BY wins DESC, player_id ASC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query winners: %w", err)
	}
	defer rows.Close()

	var out []WinnerRow
	for rows.Next() {
		var r WinnerRow
		if err := rows.Scan(&r.PlayerID, &r.Name, &r.Wins); err != nil {
			return nil, fmt.Errorf("scan winner: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
