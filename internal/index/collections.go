package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/cardsmith/internal/apperr"
	"github.com/starford/cardsmith/internal/models"
)

// SavePreset stores p. Saving an existing id replaces its payload but keeps
// its position in the collection.
func (db *DB) SavePreset(p models.AdvancedPreset) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("index: encode preset: %w", err)
	}
	if err := ValidatePreset(payload); err != nil {
		return err
	}
	return db.putRecord("presets", p.ID, p.Name, payload)
}

// GetPreset loads one preset.
func (db *DB) GetPreset(id string) (*models.AdvancedPreset, error) {
	payload, err := db.getRecord("presets", id)
	if err != nil {
		return nil, err
	}
	var p models.AdvancedPreset
	if err := decodePreset(payload, &p); err != nil {
		return nil, fmt.Errorf("index: preset %s: %w", id, apperr.ErrNotFound)
	}
	return &p, nil
}

// ListPresets returns every preset in insertion order. Records that no longer
// decode are skipped.
func (db *DB) ListPresets() ([]models.AdvancedPreset, error) {
	out := []models.AdvancedPreset{}
	err := db.eachRecord("presets", func(id string, payload []byte) {
		var p models.AdvancedPreset
		if err := decodePreset(payload, &p); err != nil {
			db.logger.Warn("index: skipping unreadable preset",
				slog.String("id", id), slog.String("error", err.Error()))
			return
		}
		out = append(out, p)
	})
	return out, err
}

// DeletePreset removes a preset.
func (db *DB) DeletePreset(id string) error {
	return db.deleteRecord("presets", id)
}

func decodePreset(payload []byte, p *models.AdvancedPreset) error {
	if err := ValidatePreset(payload); err != nil {
		return err
	}
	return json.Unmarshal(payload, p)
}

// SaveDraft stores d. Saving an existing id replaces it in place.
func (db *DB) SaveDraft(d models.Draft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("index: encode draft: %w", err)
	}
	return db.putRecord("drafts", d.ID, d.Name, payload)
}

// GetDraft loads one draft.
func (db *DB) GetDraft(id string) (*models.Draft, error) {
	payload, err := db.getRecord("drafts", id)
	if err != nil {
		return nil, err
	}
	var d models.Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("index: draft %s: %w", id, apperr.ErrNotFound)
	}
	return &d, nil
}

// ListDrafts returns every draft in insertion order. Records that no longer
// decode are skipped.
func (db *DB) ListDrafts() ([]models.Draft, error) {
	out := []models.Draft{}
	err := db.eachRecord("drafts", func(id string, payload []byte) {
		var d models.Draft
		if err := json.Unmarshal(payload, &d); err != nil {
			db.logger.Warn("index: skipping unreadable draft",
				slog.String("id", id), slog.String("error", err.Error()))
			return
		}
		out = append(out, d)
	})
	return out, err
}

// DeleteDraft removes a draft.
func (db *DB) DeleteDraft(id string) error {
	return db.deleteRecord("drafts", id)
}

// The helpers below take the table name from the fixed set above, never
// from user input.

func (db *DB) putRecord(table, id, name string, payload []byte) error {
	_, err := db.conn.Exec(`
		INSERT INTO `+table+` (id, name, payload) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name    = excluded.name,
			payload = excluded.payload
	`, id, name, string(payload))
	if err != nil {
		return fmt.Errorf("index: save %s: %w", table, err)
	}
	return nil
}

func (db *DB) getRecord(table, id string) ([]byte, error) {
	var payload string
	err := db.conn.QueryRow(`SELECT payload FROM `+table+` WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: %s %s: %w", table, id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get %s: %w", table, err)
	}
	return []byte(payload), nil
}

func (db *DB) eachRecord(table string, fn func(id string, payload []byte)) error {
	rows, err := db.conn.Query(`SELECT id, payload FROM ` + table + ` ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("index: list %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return err
		}
		fn(id, []byte(payload))
	}
	return rows.Err()
}

func (db *DB) deleteRecord(table, id string) error {
	res, err := db.conn.Exec(`DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("index: delete %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("index: %s %s: %w", table, id, apperr.ErrNotFound)
	}
	return nil
}
