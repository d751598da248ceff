package index

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/cardsmith/internal/apperr"
	"github.com/starford/cardsmith/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "cardsmith-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"cards", "presets", "drafts"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
	if err := db.Ping(); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := CardRow{ID: "c1", Title: "Hello", Mode: models.ModeCover, Checksum: "abc123", UpdatedAt: time.Now()}
	if err := db.UpsertCard(row, "hello world body"); err != nil {
		t.Fatalf("UpsertCard: %v", err)
	}
	cs, err := db.GetChecksum("c1")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
	got, err := db.GetCard("c1")
	if err != nil || got.Title != "Hello" {
		t.Errorf("GetCard = %+v, %v", got, err)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("missing")
	if err != nil || cs != "" {
		t.Errorf("GetChecksum = %q, %v", cs, err)
	}
	if _, err := db.GetCard("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetCard err = %v", err)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertCard(CardRow{ID: "u", Title: "v1", Checksum: "1", UpdatedAt: time.Now()}, "one")
	_ = db.UpsertCard(CardRow{ID: "u", Title: "v2", Checksum: "2", UpdatedAt: time.Now()}, "two")
	all, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all["u"] != "2" {
		t.Errorf("AllChecksums = %v", all)
	}
}

func TestDeleteCard(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertCard(CardRow{ID: "del", Checksum: "x", UpdatedAt: time.Now()}, "body")
	if err := db.DeleteCard("del"); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}
	if cs, _ := db.GetChecksum("del"); cs != "" {
		t.Error("card should be removed")
	}
}

func TestListCards_FilterSortPage(t *testing.T) {
	db := testDB(t)
	base := time.Now().Add(-time.Hour)
	_ = db.UpsertCard(CardRow{ID: "a", Title: "beta", Mode: models.ModeCover, UpdatedAt: base}, "")
	_ = db.UpsertCard(CardRow{ID: "b", Title: "Alpha", Mode: models.ModeLongText, UpdatedAt: base.Add(time.Minute)}, "")
	_ = db.UpsertCard(CardRow{ID: "c", Title: "gamma", Mode: models.ModeCover, UpdatedAt: base.Add(2 * time.Minute)}, "")

	rows, total, err := db.ListCards(2, 0, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(rows) != 2 || rows[0].ID != "c" {
		t.Errorf("recent page = %+v total=%d", rows, total)
	}
	rows, _, _ = db.ListCards(10, 0, "", "title")
	if rows[0].Title != "Alpha" || rows[2].Title != "gamma" {
		t.Errorf("title order = %+v", rows)
	}
	rows, total, _ = db.ListCards(10, 0, models.ModeCover, "")
	if total != 2 || len(rows) != 2 {
		t.Errorf("mode filter = %+v total=%d", rows, total)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertCard(CardRow{ID: "s1", Title: "Poem", Checksum: "s", UpdatedAt: time.Now()}, "moonlight over the river")
	_ = db.UpsertCard(CardRow{ID: "s2", Title: "Essay", Checksum: "t", UpdatedAt: time.Now()}, "city noise")
	results, err := db.Search("moonlight", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "s1" {
		t.Errorf("results = %+v", results)
	}
}

func testPreset(id, name string) models.AdvancedPreset {
	return models.NewAdvancedPreset(id, name, models.NewCoverState(), true, false, []models.TransformationRule{
		{ID: "r1", Name: "red", Pattern: "Li", Scope: models.ScopeMatch, IsActive: true, Formatting: models.FormattingStyles{Color: "red"}},
	})
}

func TestPresets_InsertionOrderAndReplace(t *testing.T) {
	db := testDB(t)
	for _, p := range []models.AdvancedPreset{testPreset("p1", "first"), testPreset("p2", "second"), testPreset("p3", "third")} {
		if err := db.SavePreset(p); err != nil {
			t.Fatalf("SavePreset: %v", err)
		}
	}
	renamed := testPreset("p1", "first again")
	if err := db.SavePreset(renamed); err != nil {
		t.Fatal(err)
	}
	list, err := db.ListPresets()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != "p1" || list[0].Name != "first again" || list[2].ID != "p3" {
		t.Errorf("list = %+v", list)
	}
	got, err := db.GetPreset("p2")
	if err != nil || len(got.Rules) != 1 || *got.CoverState.AccentColor != "#c0392b" {
		t.Errorf("GetPreset = %+v, %v", got, err)
	}
	if err := db.DeletePreset("p2"); err != nil {
		t.Fatal(err)
	}
	if err := db.DeletePreset("p2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestPresets_CorruptPayloadSkipped(t *testing.T) {
	db := testDB(t)
	_ = db.SavePreset(testPreset("ok", "fine"))
	if _, err := db.conn.Exec(`INSERT INTO presets (id, name, payload) VALUES ('bad', 'bad', '{not json')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.conn.Exec(`INSERT INTO presets (id, name, payload) VALUES ('shape', 'shape', '{"id":"shape"}')`); err != nil {
		t.Fatal(err)
	}
	list, err := db.ListPresets()
	if err != nil {
		t.Fatalf("ListPresets: %v", err)
	}
	if len(list) != 1 || list[0].ID != "ok" {
		t.Errorf("list = %+v", list)
	}
	if _, err := db.GetPreset("bad"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("corrupt preset should read as absent, got %v", err)
	}
}

func TestValidatePreset(t *testing.T) {
	if err := ValidatePreset([]byte(`{"id":"x","name":"n","includeStyle":true,"includeContent":false,"coverState":{},"rules":[{"id":"r","name":"r","pattern":"a","formatting":{},"scope":"word","isActive":true}]}`)); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad scope err = %v", err)
	}
	if err := ValidatePreset([]byte(`[]`)); err == nil {
		t.Error("array should be rejected")
	}
}

func TestDrafts(t *testing.T) {
	db := testDB(t)
	s := models.NewCoverState()
	s.Title = "Draft title"
	s.BodyText = "<div>body</div>"
	if err := db.SaveDraft(models.DraftFromState("d1", "one", s)); err != nil {
		t.Fatal(err)
	}
	_ = db.SaveDraft(models.DraftFromState("d2", "two", s))
	list, err := db.ListDrafts()
	if err != nil || len(list) != 2 || list[0].ID != "d1" {
		t.Fatalf("ListDrafts = %+v, %v", list, err)
	}
	d, err := db.GetDraft("d1")
	if err != nil || d.BodyText != "<div>body</div>" {
		t.Errorf("GetDraft = %+v, %v", d, err)
	}
	if err := db.DeleteDraft("d1"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetDraft("d1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}
