package match

import "slices"

// Selection is the subset of the current matches the user has picked. The
// selected set is always contained in the match set.
type Selection struct {
	matches  []int
	selected map[int]struct{}
}

// NewSelection returns a selection with every match selected.
func NewSelection(matches []int) *Selection {
	s := &Selection{}
	s.Reset(matches)
	return s
}

// Reset replaces the match set and selects all of it. Call it whenever the
// query or the document changes.
func (s *Selection) Reset(matches []int) {
	s.matches = slices.Clone(matches)
	slices.Sort(s.matches)
	s.matches = slices.Compact(s.matches)
	s.SelectAll()
}

// Toggle flips membership of i. Indices that are not matches are ignored.
func (s *Selection) Toggle(i int) {
	if !s.isMatch(i) {
		return
	}
	if _, ok := s.selected[i]; ok {
		delete(s.selected, i)
		return
	}
	s.selected[i] = struct{}{}
}

// SelectAll selects every current match.
func (s *Selection) SelectAll() {
	s.selected = make(map[int]struct{}, len(s.matches))
	for _, i := range s.matches {
		s.selected[i] = struct{}{}
	}
}

// SelectNone clears the selection but keeps the matches.
func (s *Selection) SelectNone() {
	s.selected = make(map[int]struct{})
}

// Contains reports whether i is selected.
func (s *Selection) Contains(i int) bool {
	_, ok := s.selected[i]
	return ok
}

// Indices returns the selected indices in ascending order.
func (s *Selection) Indices() []int {
	out := make([]int, 0, len(s.selected))
	for _, i := range s.matches {
		if _, ok := s.selected[i]; ok {
			out = append(out, i)
		}
	}
	return out
}

// Matches returns a copy of the current match set.
func (s *Selection) Matches() []int {
	return append([]int{}, s.matches...)
}

// Len returns the number of selected indices.
func (s *Selection) Len() int { return len(s.selected) }

func (s *Selection) isMatch(i int) bool {
	_, found := slices.BinarySearch(s.matches, i)
	return found
}
