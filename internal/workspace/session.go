// Package workspace keeps the interactive editing state of one document
// field: the current query, its matches, the user's selection and an
// explicitly highlighted text range.
//
// Transformations are computed against the committed document and returned
// without being applied. The caller persists the result and then calls
// Commit, so a failed write never leaves a half-applied document behind.
package workspace

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/starford/cardsmith/internal/apperr"
	"github.com/starford/cardsmith/internal/match"
	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/richtext"
	"github.com/starford/cardsmith/internal/transform"
)

// Slot is a cell of a three-column row.
type Slot string

const (
	SlotLeft   Slot = "left"
	SlotCenter Slot = "center"
	SlotRight  Slot = "right"
)

// Highlight is the active text range chosen by the user.
type Highlight struct {
	Unit  int    `json:"unit"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Row holds the pending contents of a three-column row.
type Row struct {
	Left   string `json:"left"`
	Center string `json:"center"`
	Right  string `json:"right"`
}

// State is a snapshot of a session for display.
type State struct {
	Query     match.Query     `json:"query"`
	Awaiting  bool            `json:"awaiting"`
	Matches   []int           `json:"matches"`
	Selected  []int           `json:"selected"`
	Units     []richtext.Unit `json:"units"`
	Highlight *Highlight      `json:"highlight,omitempty"`
	Row       Row             `json:"row"`
}

// Session is safe for concurrent use. Readers of the document never see a
// partially applied change.
type Session struct {
	doc atomic.Pointer[string]

	mu        sync.Mutex
	units     []richtext.Unit
	query     match.Query
	awaiting  bool
	sel       *match.Selection
	highlight *Highlight
	row       Row
}

// NewSession opens a session on doc with no query.
func NewSession(doc string) *Session {
	s := &Session{sel: match.NewSelection(nil), awaiting: true}
	s.Commit(doc)
	return s
}

// Document returns the committed document.
func (s *Session) Document() string {
	return *s.doc.Load()
}

// Commit swaps in a new document, recomputes the units and re-runs the
// current query. The selection is reset to the new matches and any
// highlight is dropped because its offsets no longer apply.
func (s *Session) Commit(doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Store(&doc)
	s.units = richtext.Parse(doc).Units
	s.highlight = nil
	s.requery()
}

// Search runs q against the committed document and selects every match.
func (s *Session) Search(q match.Query) match.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	return s.requery()
}

func (s *Session) requery() match.Result {
	res := match.Find(s.units, s.query)
	s.awaiting = res.Awaiting
	s.sel.Reset(res.Indices)
	return res
}

// Toggle flips one match in or out of the selection.
func (s *Session) Toggle(i int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Toggle(i)
	return s.sel.Indices()
}

// SelectAll selects every match.
func (s *Session) SelectAll() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SelectAll()
	return s.sel.Indices()
}

// SelectNone clears the selection.
func (s *Session) SelectNone() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SelectNone()
	return s.sel.Indices()
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Query:    s.query,
		Awaiting: s.awaiting,
		Matches:  s.sel.Matches(),
		Selected: s.sel.Indices(),
		Units:    append([]richtext.Unit{}, s.units...),
		Row:      s.row,
	}
	if s.highlight != nil {
		h := *s.highlight
		st.Highlight = &h
	}
	return st
}

// Align returns the document with the selected units aligned to a.
func (s *Session) Align(a string) (string, error) {
	al, ok := transform.ParseAlignment(a)
	if !ok {
		return "", fmt.Errorf("alignment %q: %w", a, apperr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return transform.ApplyAlignment(s.Document(), s.sel.Indices(), al), nil
}

// StyleMatches returns the document with every occurrence of the current
// query inside the selected units wrapped in f.
func (s *Session) StyleMatches(f models.FormattingStyles) (string, error) {
	if f.IsZero() {
		return "", fmt.Errorf("empty formatting: %w", apperr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.awaiting {
		return "", fmt.Errorf("no query: %w", apperr.ErrInvalidInput)
	}
	return transform.ApplyMatchStyle(s.Document(), s.sel.Indices(), s.query, f), nil
}

// Highlight records the rune range [start, end) of a unit's plain text as
// the active highlight and returns it.
func (s *Session) Highlight(unit, start, end int) (Highlight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if unit < 0 || unit >= len(s.units) {
		return Highlight{}, fmt.Errorf("unit %d: %w", unit, apperr.ErrNotFound)
	}
	runes := []rune(s.units[unit].PlainText)
	if start < 0 || end <= start || end > len(runes) {
		return Highlight{}, fmt.Errorf("range [%d,%d): %w", start, end, apperr.ErrInvalidInput)
	}
	h := Highlight{Unit: unit, Start: start, End: end, Text: string(runes[start:end])}
	s.highlight = &h
	return h, nil
}

// ClearHighlight drops the active highlight.
func (s *Session) ClearHighlight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = nil
}

// StyleHighlight returns the document with the active highlight wrapped in f.
func (s *Session) StyleHighlight(f models.FormattingStyles) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.highlight == nil {
		return "", fmt.Errorf("no active highlight: %w", apperr.ErrInvalidInput)
	}
	h := s.highlight
	return transform.WrapRange(s.Document(), h.Unit, h.Start, h.End, f), nil
}

// SetSlot stores text for one row cell.
func (s *Session) SetSlot(slot Slot, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setSlot(slot, text)
}

// RouteHighlight copies the active highlight's text into slot.
func (s *Session) RouteHighlight(slot Slot) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.highlight == nil {
		return s.row, fmt.Errorf("no active highlight: %w", apperr.ErrInvalidInput)
	}
	if err := s.setSlot(slot, s.highlight.Text); err != nil {
		return s.row, err
	}
	return s.row, nil
}

func (s *Session) setSlot(slot Slot, text string) error {
	text = strings.TrimSpace(text)
	switch slot {
	case SlotLeft:
		s.row.Left = text
	case SlotCenter:
		s.row.Center = text
	case SlotRight:
		s.row.Right = text
	default:
		return fmt.Errorf("slot %q: %w", slot, apperr.ErrInvalidInput)
	}
	return nil
}

// ComposeRow returns the document with unit target replaced by the pending
// row. The pending row is kept until ResetRow.
func (s *Session) ComposeRow(target int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if target < 0 || target >= len(s.units) {
		return "", fmt.Errorf("unit %d: %w", target, apperr.ErrNotFound)
	}
	return transform.ApplyThreeColumnRow(s.Document(), target, s.row.Left, s.row.Center, s.row.Right), nil
}

// ResetRow clears the pending row.
func (s *Session) ResetRow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.row = Row{}
}

// ParseSlot validates a slot name.
func ParseSlot(v string) (Slot, bool) {
	switch sl := Slot(strings.ToLower(v)); sl {
	case SlotLeft, SlotCenter, SlotRight:
		return sl, true
	}
	return "", false
}
