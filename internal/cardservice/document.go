package cardservice

import (
	"context"
	"fmt"

	"github.com/starford/cardsmith/internal/apperr"
	"github.com/starford/cardsmith/internal/match"
	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/rules"
	"github.com/starford/cardsmith/internal/sse"
	"github.com/starford/cardsmith/internal/workspace"
)

// open loads a card and returns the editing session of one of its document
// fields, re-synchronised with the stored document.
func (s *Service) open(id, field string) (*models.Card, *workspace.Session, error) {
	c, err := s.load(id)
	if err != nil {
		return nil, nil, err
	}
	doc, ok := c.State.Field(field)
	if !ok {
		return nil, nil, fmt.Errorf("field %q: %w", field, apperr.ErrInvalidInput)
	}
	return c, s.sessions.Open(id, field, doc), nil
}

func (s *Service) view(id, field string, fn func(*workspace.Session) error) (workspace.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, sess, err := s.open(id, field)
	if err != nil {
		return workspace.State{}, err
	}
	if fn != nil {
		if err := fn(sess); err != nil {
			return workspace.State{}, err
		}
	}
	return sess.State(), nil
}

// edit computes a new document through fn, persists it and only then commits
// it to the session. A proposal equal to the current document is not written.
func (s *Service) edit(id, field string, fn func(*workspace.Session) (string, error)) (workspace.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, sess, err := s.open(id, field)
	if err != nil {
		return workspace.State{}, err
	}
	next, err := fn(sess)
	if err != nil {
		return workspace.State{}, err
	}
	if next == sess.Document() {
		return sess.State(), nil
	}
	c.State.SetField(field, next)
	if err := s.save(c); err != nil {
		return workspace.State{}, err
	}
	sess.Commit(next)
	s.pub.PublishCardEvent(sse.KindUpdated, id)
	return sess.State(), nil
}

// Units returns the session state of a document field.
func (s *Service) Units(_ context.Context, id, field string) (workspace.State, error) {
	return s.view(id, field, nil)
}

// FindUnits runs a query and selects every matching unit.
func (s *Service) FindUnits(_ context.Context, id, field string, q match.Query) (workspace.State, error) {
	return s.view(id, field, func(sess *workspace.Session) error {
		sess.Search(q)
		return nil
	})
}

// Toggle flips one match in or out of the selection.
func (s *Service) Toggle(_ context.Context, id, field string, unit int) (workspace.State, error) {
	return s.view(id, field, func(sess *workspace.Session) error {
		sess.Toggle(unit)
		return nil
	})
}

// SelectAll selects every match.
func (s *Service) SelectAll(_ context.Context, id, field string) (workspace.State, error) {
	return s.view(id, field, func(sess *workspace.Session) error {
		sess.SelectAll()
		return nil
	})
}

// SelectNone clears the selection.
func (s *Service) SelectNone(_ context.Context, id, field string) (workspace.State, error) {
	return s.view(id, field, func(sess *workspace.Session) error {
		sess.SelectNone()
		return nil
	})
}

// Align sets the alignment of every selected unit.
func (s *Service) Align(_ context.Context, id, field, alignment string) (workspace.State, error) {
	return s.edit(id, field, func(sess *workspace.Session) (string, error) {
		return sess.Align(alignment)
	})
}

// StyleMatches wraps every occurrence of the current query inside the
// selected units.
func (s *Service) StyleMatches(_ context.Context, id, field string, f models.FormattingStyles) (workspace.State, error) {
	return s.edit(id, field, func(sess *workspace.Session) (string, error) {
		return sess.StyleMatches(f)
	})
}

// Highlight records an explicit text range of one unit.
func (s *Service) Highlight(_ context.Context, id, field string, unit, start, end int) (workspace.State, error) {
	return s.view(id, field, func(sess *workspace.Session) error {
		_, err := sess.Highlight(unit, start, end)
		return err
	})
}

// ClearHighlight drops the active highlight.
func (s *Service) ClearHighlight(_ context.Context, id, field string) (workspace.State, error) {
	return s.view(id, field, func(sess *workspace.Session) error {
		sess.ClearHighlight()
		return nil
	})
}

// StyleHighlight wraps the active highlight in f.
func (s *Service) StyleHighlight(_ context.Context, id, field string, f models.FormattingStyles) (workspace.State, error) {
	if f.IsZero() {
		return workspace.State{}, fmt.Errorf("empty formatting: %w", apperr.ErrInvalidInput)
	}
	return s.edit(id, field, func(sess *workspace.Session) (string, error) {
		return sess.StyleHighlight(f)
	})
}

// SetSlot stores text for one cell of the pending row. With text empty and
// fromHighlight set the active highlight is routed into the slot instead.
func (s *Service) SetSlot(_ context.Context, id, field, slot, text string, fromHighlight bool) (workspace.State, error) {
	sl, ok := workspace.ParseSlot(slot)
	if !ok {
		return workspace.State{}, fmt.Errorf("slot %q: %w", slot, apperr.ErrInvalidInput)
	}
	return s.view(id, field, func(sess *workspace.Session) error {
		if fromHighlight {
			_, err := sess.RouteHighlight(sl)
			return err
		}
		return sess.SetSlot(sl, text)
	})
}

// ResetRow clears the pending row.
func (s *Service) ResetRow(_ context.Context, id, field string) (workspace.State, error) {
	return s.view(id, field, func(sess *workspace.Session) error {
		sess.ResetRow()
		return nil
	})
}

// ComposeRow replaces unit target with the pending row. The row is cleared
// once the document is stored.
func (s *Service) ComposeRow(_ context.Context, id, field string, target int) (workspace.State, error) {
	var composed *workspace.Session
	st, err := s.edit(id, field, func(sess *workspace.Session) (string, error) {
		composed = sess
		return sess.ComposeRow(target)
	})
	if err != nil {
		return st, err
	}
	composed.ResetRow()
	st.Row = workspace.Row{}
	return st, nil
}

// ScanRules derives formatting rules from the styles already present in a
// document field.
func (s *Service) ScanRules(_ context.Context, id, field string) ([]models.TransformationRule, error) {
	c, err := s.load(id)
	if err != nil {
		return nil, err
	}
	doc, ok := c.State.Field(field)
	if !ok {
		return nil, fmt.Errorf("field %q: %w", field, apperr.ErrInvalidInput)
	}
	return rules.ScanForRules(doc), nil
}

// ApplyRules replays list against a document field.
func (s *Service) ApplyRules(_ context.Context, id, field string, list []models.TransformationRule) (workspace.State, error) {
	if err := rules.ValidateAll(list); err != nil {
		return workspace.State{}, fmt.Errorf("%v: %w", err, apperr.ErrInvalidInput)
	}
	return s.edit(id, field, func(sess *workspace.Session) (string, error) {
		return rules.ApplyRules(sess.Document(), list), nil
	})
}
