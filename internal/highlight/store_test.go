package highlight

import (
	"testing"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

func TestStore_AddQueryRoundTrip(t *testing.T) {
	s := NewStore()
	for i := range 3 {
		s.Add(lumidoc.Highlight{
			Color:    "yellow",
			SpanID:   "span1",
			Position: &lumidoc.Position{StartIndex: i, EndIndex: i + 1},
		})
	}

	got := s.Get("span1")
	if len(got) != 3 {
		t.Fatalf("expected 3 highlights, got %d", len(got))
	}
	for i, h := range got {
		if h.Position.StartIndex != i {
			t.Errorf("highlight %d out of append order: start %d", i, h.Position.StartIndex)
		}
	}
}

func TestStore_RemoveDeletesWholeSpanList(t *testing.T) {
	s := NewStore()
	s.Add(
		lumidoc.Highlight{Color: "yellow", SpanID: "span1"},
		lumidoc.Highlight{Color: "green", SpanID: "span1"},
		lumidoc.Highlight{Color: "yellow", SpanID: "span2"},
	)

	s.Remove("span1")
	if got := s.Get("span1"); len(got) != 0 {
		t.Errorf("expected empty list after remove, got %d", len(got))
	}
	if got := s.Get("span2"); len(got) != 1 {
		t.Errorf("remove must not touch other spans, got %d", len(got))
	}

	// Removing an unknown span id is a no-op, not an error.
	s.Remove("never-existed")
}

func TestStore_ClearAndUnknownQuery(t *testing.T) {
	s := NewStore()
	s.Add(lumidoc.Highlight{Color: "yellow", SpanID: "a"})
	s.Add(lumidoc.Highlight{Color: "yellow", SpanID: "b"})

	s.Clear()
	if len(s.SpanIDs()) != 0 {
		t.Error("expected no spans after clear")
	}
	if got := s.Get("a"); len(got) != 0 {
		t.Errorf("expected empty list for cleared span, got %d", len(got))
	}
	if got := s.Get("unknown"); len(got) != 0 {
		t.Errorf("expected empty list for unknown span, got %d", len(got))
	}
}

func answerWith(id string, spanIDs ...string) lumidoc.Answer {
	sels := make([]lumidoc.HighlightSelection, 0, len(spanIDs))
	for _, sid := range spanIDs {
		sels = append(sels, lumidoc.HighlightSelection{SpanID: sid})
	}
	return lumidoc.Answer{
		ID:      id,
		Request: lumidoc.AnswerRequest{Highlight: "some text", HighlightedSpans: sels},
	}
}

func TestAnswerStore_PopulateCountsAndOrder(t *testing.T) {
	s := NewAnswerStore()
	a1 := answerWith("a1", "s1", "s2")
	a2 := answerWith("a2", "s2", "s3")
	a2.Request.HighlightedSpans[0].Position = &lumidoc.Position{StartIndex: 2, EndIndex: 9}

	s.Populate([]lumidoc.Answer{a1, a2})

	if got := s.Get("s1"); len(got) != 1 {
		t.Errorf("s1: expected 1 highlight, got %d", len(got))
	}
	shared := s.Get("s2")
	if len(shared) != 2 {
		t.Fatalf("s2: expected 2 highlights (one per referencing answer), got %d", len(shared))
	}
	if shared[0].AnswerID != "a1" || shared[1].AnswerID != "a2" {
		t.Error("shared span highlights must follow answer list order")
	}
	if shared[0].Position != nil {
		t.Error("descriptor without position must produce a whole-span highlight")
	}
	if shared[1].Position == nil || shared[1].Position.StartIndex != 2 {
		t.Error("descriptor position must carry through")
	}
	for _, h := range shared {
		if h.Color != AnswerColor {
			t.Errorf("expected fixed answer color %q, got %q", AnswerColor, h.Color)
		}
	}
}

func TestAnswerStore_RepopulateDiscardsPrevious(t *testing.T) {
	s := NewAnswerStore()
	s.Populate([]lumidoc.Answer{answerWith("a1", "s1", "s2"), answerWith("a2", "s2")})
	s.Populate([]lumidoc.Answer{answerWith("a3", "s9")})

	if got := s.Get("s2"); len(got) != 0 {
		t.Errorf("expected first population fully discarded, got %d on s2", len(got))
	}
	if got := s.Get("s9"); len(got) != 1 || got[0].AnswerID != "a3" {
		t.Errorf("expected only second population, got %+v", got)
	}
}

func TestImageStore_Membership(t *testing.T) {
	s := NewImageStore()
	s.Add("images/fig1.png")
	if !s.Contains("images/fig1.png") {
		t.Error("expected membership after add")
	}
	if s.Contains("images/fig2.png") {
		t.Error("unexpected membership")
	}
	s.Remove("images/fig1.png")
	if s.Contains("images/fig1.png") {
		t.Error("expected removal")
	}
	s.Remove("images/never-added") // no-op
	s.Add("a")
	s.Add("b")
	s.Clear()
	if s.Contains("a") || s.Contains("b") {
		t.Error("expected empty set after clear")
	}
}
