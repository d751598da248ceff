package index

import "github.com/starford/cardsmith/internal/models"

// CardIndex defines the card catalogue operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type CardIndex interface {
	UpsertCard(c CardRow, body string) error
	DeleteCard(id string) error
	GetChecksum(id string) (string, error)
	GetCard(id string) (*CardRow, error)
	ListCards(limit, offset int, mode, sort string) ([]CardRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// PresetStore persists advanced presets in insertion order.
type PresetStore interface {
	SavePreset(p models.AdvancedPreset) error
	GetPreset(id string) (*models.AdvancedPreset, error)
	ListPresets() ([]models.AdvancedPreset, error)
	DeletePreset(id string) error
}

// DraftStore persists content drafts in insertion order.
type DraftStore interface {
	SaveDraft(d models.Draft) error
	GetDraft(id string) (*models.Draft, error)
	ListDrafts() ([]models.Draft, error)
	DeleteDraft(id string) error
}

// Verify *DB satisfies the interfaces at compile time.
var (
	_ CardIndex   = (*DB)(nil)
	_ PresetStore = (*DB)(nil)
	_ DraftStore  = (*DB)(nil)
)
