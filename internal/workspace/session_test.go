package workspace

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/starford/cardsmith/internal/apperr"
	"github.com/starford/cardsmith/internal/match"
	"github.com/starford/cardsmith/internal/models"
)

const doc = "<div>Hello world</div><div>Goodbye</div><div>hello again</div>"

func TestSession_SearchSelectsAllMatches(t *testing.T) {
	s := NewSession(doc)
	if st := s.State(); !st.Awaiting || len(st.Selected) != 0 {
		t.Fatalf("fresh session = %+v", st)
	}
	res := s.Search(match.Query{Text: "hello"})
	if !slices.Equal(res.Indices, []int{0, 2}) {
		t.Fatalf("matches = %v", res.Indices)
	}
	if got := s.Toggle(0); !slices.Equal(got, []int{2}) {
		t.Errorf("after toggle = %v", got)
	}
	s.Search(match.Query{Text: "good"})
	if got := s.State().Selected; !slices.Equal(got, []int{1}) {
		t.Errorf("requery must reset selection, got %v", got)
	}
}

func TestSession_AlignDoesNotCommit(t *testing.T) {
	s := NewSession(doc)
	s.Search(match.Query{Text: "Hello world"})
	out, err := s.Align("center")
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if s.Document() != doc {
		t.Error("Align must not change the committed document")
	}
	want := `<div style="text-align:center">Hello world</div><div>Goodbye</div><div>hello again</div>`
	if out != want {
		t.Errorf("out = %q", out)
	}
	if _, err := s.Align("sideways"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSession_CommitResetsAgainstNewUnits(t *testing.T) {
	s := NewSession(doc)
	s.Search(match.Query{Text: "hello"})
	s.SelectNone()
	s.Commit("<div>hello</div>")
	st := s.State()
	if !slices.Equal(st.Selected, []int{0}) || len(st.Units) != 1 {
		t.Errorf("after commit = %+v", st)
	}
}

func TestSession_StyleMatchesNeedsQuery(t *testing.T) {
	s := NewSession(doc)
	if _, err := s.StyleMatches(models.FormattingStyles{Color: "red"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
	s.Search(match.Query{Text: "again"})
	out, err := s.StyleMatches(models.FormattingStyles{Color: "red"})
	if err != nil {
		t.Fatalf("StyleMatches: %v", err)
	}
	want := `<div>Hello world</div><div>Goodbye</div><div>hello <span style="color:red">again</span></div>`
	if out != want {
		t.Errorf("out = %q", out)
	}
}

func TestSession_HighlightRoutesIntoRow(t *testing.T) {
	s := NewSession(doc)
	h, err := s.Highlight(0, 6, 11)
	if err != nil {
		t.Fatalf("Highlight: %v", err)
	}
	if h.Text != "world" {
		t.Errorf("highlight text = %q", h.Text)
	}
	row, err := s.RouteHighlight(SlotRight)
	if err != nil || row.Right != "world" {
		t.Fatalf("RouteHighlight = %+v, %v", row, err)
	}
	if err := s.SetSlot(SlotLeft, "By"); err != nil {
		t.Fatal(err)
	}
	out, err := s.ComposeRow(1)
	if err != nil {
		t.Fatalf("ComposeRow: %v", err)
	}
	want := `<div>Hello world</div>` +
		`<div style="display:flex;width:100%"><div style="flex:1;text-align:left">By</div>` +
		`<div style="flex:1;text-align:center">&nbsp;</div>` +
		`<div style="flex:1;text-align:right">world</div></div>` +
		`<div>hello again</div>`
	if out != want {
		t.Errorf("out = %q", out)
	}
	if _, err := s.Highlight(0, 5, 50); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad range err = %v", err)
	}
	if _, err := s.Highlight(9, 0, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("bad unit err = %v", err)
	}
}

func TestSession_StyleHighlight(t *testing.T) {
	s := NewSession(doc)
	if _, err := s.StyleHighlight(models.FormattingStyles{IsBold: true}); err == nil {
		t.Error("expected error without highlight")
	}
	if _, err := s.Highlight(1, 0, 4); err != nil {
		t.Fatal(err)
	}
	out, err := s.StyleHighlight(models.FormattingStyles{IsBold: true})
	if err != nil {
		t.Fatal(err)
	}
	want := `<div>Hello world</div><div><span style="font-weight:bold">Good</span>bye</div><div>hello again</div>`
	if out != want {
		t.Errorf("out = %q", out)
	}
	s.Commit(out)
	if s.State().Highlight != nil {
		t.Error("commit should drop the highlight")
	}
}

func TestSession_ConcurrentReadersSeeWholeDocuments(t *testing.T) {
	s := NewSession(doc)
	s.Search(match.Query{Text: "hello"})
	next, _ := s.Align("right")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if d := s.Document(); d != doc && d != next {
					t.Errorf("torn document %q", d)
					return
				}
			}
		}()
	}
	for j := 0; j < 50; j++ {
		if j%2 == 0 {
			s.Commit(next)
		} else {
			s.Commit(doc)
		}
	}
	wg.Wait()
}

func TestManager_OpenAndDrop(t *testing.T) {
	m := NewManager()
	a := m.Open("c1", "body", doc)
	if b := m.Open("c1", "body", doc); a != b {
		t.Error("Open should reuse the session")
	}
	a.Search(match.Query{Text: "hello"})
	m.Open("c1", "body", "<div>hello</div>")
	if got := a.State().Selected; !slices.Equal(got, []int{0}) {
		t.Errorf("changed document should re-commit, selected = %v", got)
	}
	m.Open("c1", "secondary", "")
	m.Open("c2", "body", "")
	m.Drop("c1")
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}
