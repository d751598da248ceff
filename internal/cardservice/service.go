// Package cardservice coordinates card records on disk, the SQLite index and
// the per-field editing sessions.
package cardservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/cardsmith/internal/apperr"
	"github.com/starford/cardsmith/internal/checksum"
	"github.com/starford/cardsmith/internal/index"
	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/parser"
	"github.com/starford/cardsmith/internal/sanitize"
	"github.com/starford/cardsmith/internal/sse"
	"github.com/starford/cardsmith/internal/storage"
	"github.com/starford/cardsmith/internal/workspace"
)

// Publisher receives change notifications. *sse.Broker implements it.
type Publisher interface {
	PublishCardEvent(kind, id string)
	PublishPresetEvent(kind, id string)
}

type nopPublisher struct{}

func (nopPublisher) PublishCardEvent(string, string)   {}
func (nopPublisher) PublishPresetEvent(string, string) {}

// CardListItem is a lightweight item in a list response.
type CardListItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Mode      string    `json:"mode"`
	Category  string    `json:"category"`
	Author    string    `json:"author"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store    storage.Provider
	db       *index.DB
	sessions *workspace.Manager
	pub      Publisher
	logger   *slog.Logger

	// mu serializes read-modify-write cycles on card records.
	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher routes change notifications to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.pub = p
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a new card service.
func NewService(store storage.Provider, db *index.DB, opts ...Option) *Service {
	s := &Service{
		store:    store,
		db:       db,
		sessions: workspace.NewManager(),
		pub:      nopPublisher{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ Publisher = (*sse.Broker)(nil)

// GetCard reads a card record.
func (s *Service) GetCard(_ context.Context, id string) (*models.Card, error) {
	return s.load(id)
}

// CreateCard stores a new card with a fresh id. Empty presentation fields
// get their defaults.
func (s *Service) CreateCard(_ context.Context, state models.CoverState) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &models.Card{ID: uuid.NewString(), State: clean(state)}
	if err := s.save(c); err != nil {
		return nil, err
	}
	s.pub.PublishCardEvent(sse.KindCreated, c.ID)
	return c, nil
}

// ImportMarkdown creates a card from a Markdown manuscript.
func (s *Service) ImportMarkdown(ctx context.Context, data []byte) (*models.Card, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cardservice: empty manuscript: %w", apperr.ErrInvalidInput)
	}
	return s.CreateCard(ctx, parser.FromMarkdown(data))
}

// UpdateCard replaces the state of a card. When ifMatch is non-empty it must
// equal the checksum of the stored record.
func (s *Service) UpdateCard(_ context.Context, id string, state models.CoverState, ifMatch string) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != existing.Checksum {
		return nil, apperr.ErrConflict
	}
	c := &models.Card{ID: id, State: clean(state)}
	if err := s.save(c); err != nil {
		return nil, err
	}
	s.pub.PublishCardEvent(sse.KindUpdated, id)
	return c, nil
}

// DeleteCard removes a card from storage and index and closes its sessions.
func (s *Service) DeleteCard(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.sessions.Drop(id)
	if err := s.db.DeleteCard(id); err != nil {
		return err
	}
	s.pub.PublishCardEvent(sse.KindDeleted, id)
	return nil
}

// ListCards returns paginated cards with an optional mode filter.
func (s *Service) ListCards(_ context.Context, limit, offset int, mode, sort string) ([]CardListItem, int, error) {
	rows, total, err := s.db.ListCards(limit, offset, mode, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]CardListItem, len(rows))
	for i, r := range rows {
		items[i] = CardListItem{
			ID:        r.ID,
			Title:     r.Title,
			Mode:      r.Mode,
			Category:  r.Category,
			Author:    r.Author,
			Checksum:  r.Checksum,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	res, err := s.db.Search(query, limit)
	return nonNilSlice(res), err
}

func (s *Service) load(id string) (*models.Card, error) {
	data, err := s.store.Read(id)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	c := res.Card
	c.ID = id
	return &c, nil
}

// save writes c and indexes it. On return c carries the checksum of the
// stored record.
func (s *Service) save(c *models.Card) error {
	c.Checksum = ""
	c.UpdatedAt = time.Now().UTC()
	c.State.FillDefaults()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("cardservice: encode card: %w", err)
	}
	if err := s.store.Write(c.ID, data); err != nil {
		return err
	}
	c.Checksum = checksum.Sum(data)
	if err := index.IndexRecord(s.db, c.ID, data); err != nil {
		s.logger.Warn("cardservice: index failed", slog.String("id", c.ID), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// clean sanitizes the user-supplied fields of a state.
func clean(st models.CoverState) models.CoverState {
	st.Title = sanitize.Text(st.Title)
	st.Subtitle = sanitize.Text(st.Subtitle)
	st.Author = sanitize.Text(st.Author)
	st.Category = sanitize.Text(st.Category)
	st.BodyText = sanitize.Document(st.BodyText)
	st.SecondaryBodyText = sanitize.Document(st.SecondaryBodyText)
	if st.Mode != models.ModeLongText {
		st.Mode = models.ModeCover
	}
	return st
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
