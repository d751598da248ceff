//go:build sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM cards_fts`).Scan(&count); err != nil {
		t.Fatalf("cards_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := CardRow{ID: "fts", Title: "FTS Card", Checksum: "f1", UpdatedAt: time.Now()}
	if err := db.UpsertCard(row, "The card library provides powerful full-text search."); err != nil {
		t.Fatalf("UpsertCard: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "fts" {
		t.Errorf("id = %q", results[0].ID)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertCard(CardRow{ID: "gone", Checksum: "g", UpdatedAt: time.Now()}, "vanishing content")
	_ = db.DeleteCard("gone")

	results, err := db.Search("vanishing", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results after delete, got %d", len(results))
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertCard(CardRow{ID: "r", Checksum: "1", UpdatedAt: time.Now()}, "original words")
	_ = db.UpsertCard(CardRow{ID: "r", Checksum: "2", UpdatedAt: time.Now()}, "replacement words")

	if results, _ := db.Search("original", 10); len(results) != 0 {
		t.Errorf("old content still searchable: %+v", results)
	}
	if results, _ := db.Search("replacement", 10); len(results) != 1 {
		t.Errorf("new content not searchable: %+v", results)
	}
}
