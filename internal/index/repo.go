package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/cardsmith/internal/apperr"
)

// CardRow represents a row in the cards table.
type CardRow struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Mode      string    `json:"mode"`
	Category  string    `json:"category"`
	Author    string    `json:"author"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertCard inserts or replaces a card and its FTS entry within a transaction.
// body is the plain text used for search.
func (db *DB) UpsertCard(c CardRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO cards (id, title, mode, category, author, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			mode       = excluded.mode,
			category   = excluded.category,
			author     = excluded.author,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, c.ID, c.Title, c.Mode, c.Category, c.Author, c.Checksum, body, c.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert card: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, c.ID, c.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteCard removes a card and its FTS entry.
func (db *DB) DeleteCard(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete card: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a card, or empty string if not found.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM cards WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// GetCard returns the catalogue row of a card.
func (db *DB) GetCard(id string) (*CardRow, error) {
	var c CardRow
	err := db.conn.QueryRow(`
		SELECT id, title, mode, category, author, checksum, updated_at
		FROM cards WHERE id = ?
	`, id).Scan(&c.ID, &c.Title, &c.Mode, &c.Category, &c.Author, &c.Checksum, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: card %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get card: %w", err)
	}
	return &c, nil
}

// ListCards returns a page of cards and the total count. mode filters by
// card mode when non-empty; sort is "title" or, by default, most recently
// updated first.
func (db *DB) ListCards(limit, offset int, mode, sort string) ([]CardRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	order := "updated_at DESC, id"
	if sort == "title" {
		order = "title COLLATE NOCASE, id"
	}

	where, args := "", []any{}
	if mode != "" {
		where = "WHERE mode = ?"
		args = append(args, mode)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM cards `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count cards: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT id, title, mode, category, author, checksum, updated_at
		FROM cards `+where+`
		ORDER BY `+order+`
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list cards: %w", err)
	}
	defer rows.Close()

	out := []CardRow{}
	for rows.Next() {
		var c CardRow
		if err := rows.Scan(&c.ID, &c.Title, &c.Mode, &c.Category, &c.Author, &c.Checksum, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// AllChecksums returns id → checksum for every indexed card.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM cards`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}
