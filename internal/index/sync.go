package index

import (
	"log/slog"

	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/parser"
	"github.com/starford/cardsmith/internal/storage"
)

// Sync walks the card library and brings the index up to date:
//   - new/changed records are decoded and upserted
//   - records removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.ID] = struct{}{}

		if checksums[m.ID] == m.Checksum {
			continue
		}

		data, err := store.Read(m.ID)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("id", m.ID), slog.String("error", err.Error()))
			continue
		}
		if err := IndexRecord(db, m.ID, data); err != nil {
			logger.Warn("sync: index failed", slog.String("id", m.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", m.ID))
		}
	}

	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if err := db.DeleteCard(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}

	return nil
}

// IndexRecord decodes a raw card record and upserts it into the DB.
func IndexRecord(db *DB, id string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	card := res.Card
	card.ID = id
	return db.UpsertCard(RowFor(card), res.Text)
}

// RowFor builds the catalogue row of a card.
func RowFor(c models.Card) CardRow {
	return CardRow{
		ID:        c.ID,
		Title:     c.State.Title,
		Mode:      c.State.Mode,
		Category:  c.State.Category,
		Author:    c.State.Author,
		Checksum:  c.Checksum,
		UpdatedAt: c.UpdatedAt,
	}
}
