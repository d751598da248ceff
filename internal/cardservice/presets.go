package cardservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/cardsmith/internal/apperr"
	"github.com/starford/cardsmith/internal/index"
	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/rules"
	"github.com/starford/cardsmith/internal/sse"
)

// PresetRequest describes a preset snapshot of an existing card.
type PresetRequest struct {
	Name           string                      `json:"name"`
	CardID         string                      `json:"cardId"`
	IncludeStyle   bool                        `json:"includeStyle"`
	IncludeContent bool                        `json:"includeContent"`
	Rules          []models.TransformationRule `json:"rules"`
}

// Validate checks the request fields.
func (r PresetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.CardID, validation.Required),
	)
}

// ApplyPreset merges the preset's snapshot into st and replays its rules over
// both document fields.
func ApplyPreset(st *models.CoverState, p models.AdvancedPreset) {
	p.CoverState.Apply(st)
	st.BodyText = rules.ApplyRules(st.BodyText, p.Rules)
	st.SecondaryBodyText = rules.ApplyRules(st.SecondaryBodyText, p.Rules)
}

// SavePreset snapshots a card into a new advanced preset.
func (s *Service) SavePreset(_ context.Context, req PresetRequest) (*models.AdvancedPreset, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperr.ErrInvalidInput)
	}
	if err := rules.ValidateAll(req.Rules); err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperr.ErrInvalidInput)
	}
	c, err := s.load(req.CardID)
	if err != nil {
		return nil, err
	}
	p := models.NewAdvancedPreset(uuid.NewString(), req.Name, c.State, req.IncludeStyle, req.IncludeContent, req.Rules)
	if err := s.db.SavePreset(p); err != nil {
		return nil, err
	}
	s.pub.PublishPresetEvent(sse.KindSaved, p.ID)
	return &p, nil
}

// ImportPresets stores presets from an exported JSON payload holding either
// one preset or an array of them. Presets without an id get a fresh one.
// The batch is validated as a whole before anything is stored.
func (s *Service) ImportPresets(_ context.Context, payload []byte) ([]models.AdvancedPreset, error) {
	var list []models.AdvancedPreset
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode presets: %v: %w", err, apperr.ErrInvalidInput)
		}
	} else {
		var p models.AdvancedPreset
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("decode preset: %v: %w", err, apperr.ErrInvalidInput)
		}
		list = []models.AdvancedPreset{p}
	}

	for i := range list {
		p := &list[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		if p.Rules == nil {
			p.Rules = []models.TransformationRule{}
		}
		if err := rules.ValidateAll(p.Rules); err != nil {
			return nil, fmt.Errorf("preset %d: %v: %w", i, err, apperr.ErrInvalidInput)
		}
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("cardservice: encode preset: %w", err)
		}
		if err := index.ValidatePreset(raw); err != nil {
			return nil, fmt.Errorf("preset %d: %w", i, err)
		}
	}
	for _, p := range list {
		if err := s.db.SavePreset(p); err != nil {
			return nil, err
		}
		s.pub.PublishPresetEvent(sse.KindSaved, p.ID)
	}
	return list, nil
}

// GetPreset loads one preset.
func (s *Service) GetPreset(_ context.Context, id string) (*models.AdvancedPreset, error) {
	return s.db.GetPreset(id)
}

// ListPresets returns every preset in creation order.
func (s *Service) ListPresets(_ context.Context) ([]models.AdvancedPreset, error) {
	return s.db.ListPresets()
}

// DeletePreset removes a preset.
func (s *Service) DeletePreset(_ context.Context, id string) error {
	if err := s.db.DeletePreset(id); err != nil {
		return err
	}
	s.pub.PublishPresetEvent(sse.KindDeleted, id)
	return nil
}

// ApplyPresetToCard applies a stored preset to a card and stores the result.
func (s *Service) ApplyPresetToCard(_ context.Context, presetID, cardID string) (*models.Card, error) {
	p, err := s.db.GetPreset(presetID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(cardID)
	if err != nil {
		return nil, err
	}
	ApplyPreset(&c.State, *p)
	if err := s.save(c); err != nil {
		return nil, err
	}
	s.pub.PublishCardEvent(sse.KindUpdated, cardID)
	return c, nil
}

// SaveDraft snapshots the text content of a card under name.
func (s *Service) SaveDraft(_ context.Context, cardID, name string) (*models.Draft, error) {
	if err := validation.Validate(name, validation.Required, validation.Length(1, 120)); err != nil {
		return nil, fmt.Errorf("name: %v: %w", err, apperr.ErrInvalidInput)
	}
	c, err := s.load(cardID)
	if err != nil {
		return nil, err
	}
	d := models.DraftFromState(uuid.NewString(), name, c.State)
	if err := s.db.SaveDraft(d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDraft loads one draft.
func (s *Service) GetDraft(_ context.Context, id string) (*models.Draft, error) {
	return s.db.GetDraft(id)
}

// ListDrafts returns every draft in creation order.
func (s *Service) ListDrafts(_ context.Context) ([]models.Draft, error) {
	return s.db.ListDrafts()
}

// DeleteDraft removes a draft.
func (s *Service) DeleteDraft(_ context.Context, id string) error {
	return s.db.DeleteDraft(id)
}

// LoadDraft replaces the text content of a card with a draft.
func (s *Service) LoadDraft(_ context.Context, draftID, cardID string) (*models.Card, error) {
	d, err := s.db.GetDraft(draftID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(cardID)
	if err != nil {
		return nil, err
	}
	d.ApplyTo(&c.State)
	c.State = clean(c.State)
	if err := s.save(c); err != nil {
		return nil, err
	}
	s.pub.PublishCardEvent(sse.KindUpdated, cardID)
	return c, nil
}
