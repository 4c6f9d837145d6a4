// Package session holds per-document reading state: the document, its span
// index, the highlight stores, collapse state, and the answer history. A
// session is the unit the HTTP API operates on.
package session

import (
	"sort"
	"sync"

	"github.com/lumiread/lumiread/internal/docindex"
	"github.com/lumiread/lumiread/internal/highlight"
	"github.com/lumiread/lumiread/internal/lumidoc"
	"github.com/lumiread/lumiread/internal/viewstate"
)

// Session is the state for one open document.
type Session struct {
	mu sync.Mutex

	docID string
	doc   *lumidoc.Document
	index *docindex.Index

	userHighlights   *highlight.Store
	answerHighlights *highlight.AnswerStore
	imageHighlights  *highlight.ImageStore
	view             *viewstate.Tracker

	answers   []lumidoc.Answer
	summaries map[string]string // section id -> summary
}

// NewSession builds a session around a document: the index is built once and
// all stores start empty.
func NewSession(docID string, doc *lumidoc.Document) *Session {
	idx := docindex.Build(doc)
	return &Session{
		docID:            docID,
		doc:              doc,
		index:            idx,
		userHighlights:   highlight.NewStore(),
		answerHighlights: highlight.NewAnswerStore(),
		imageHighlights:  highlight.NewImageStore(),
		view:             viewstate.NewTracker(idx),
		summaries:        make(map[string]string),
	}
}

func (s *Session) DocID() string               { return s.docID }
func (s *Session) Document() *lumidoc.Document { return s.doc }
func (s *Session) Index() *docindex.Index      { return s.index }

// LoadDocument replaces the session's document. The index is rebuilt and
// every store and the history reset: highlights and answers address spans of
// the old document and cannot survive it.
func (s *Session) LoadDocument(doc *lumidoc.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc
	s.index = docindex.Build(doc)
	s.userHighlights.Clear()
	s.answerHighlights.Clear()
	s.imageHighlights.Clear()
	s.view = viewstate.NewTracker(s.index)
	s.answers = nil
	s.summaries = make(map[string]string)
}

// AddUserHighlight records a user highlight. Unknown span ids are ignored
// silently.
func (s *Session) AddUserHighlight(h lumidoc.Highlight) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index.Span(h.SpanID); !ok {
		return false
	}
	s.userHighlights.Add(h)
	return true
}

// RemoveUserHighlights drops all user highlights on a span.
func (s *Session) RemoveUserHighlights(spanID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userHighlights.Remove(spanID)
}

// ClearUserHighlights drops every user highlight.
func (s *Session) ClearUserHighlights() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userHighlights.Clear()
}

// UserHighlights returns the highlights on a span.
func (s *Session) UserHighlights(spanID string) []lumidoc.Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userHighlights.Get(spanID)
}

// HighlightedSpanIDs returns the ids of every span carrying a user
// highlight, sorted.
func (s *Session) HighlightedSpanIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.userHighlights.SpanIDs()
	sort.Strings(ids)
	return ids
}

// AnswerHighlights returns the answer-derived highlights on a span.
func (s *Session) AnswerHighlights(spanID string) []lumidoc.Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answerHighlights.Get(spanID)
}

// ToggleImageHighlight flips an image's highlight membership and reports the
// new state.
func (s *Session) ToggleImageHighlight(storagePath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.imageHighlights.Contains(storagePath) {
		s.imageHighlights.Remove(storagePath)
		return false
	}
	s.imageHighlights.Add(storagePath)
	return true
}

// ImageHighlighted reports whether an image is highlighted.
func (s *Session) ImageHighlighted(storagePath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageHighlights.Contains(storagePath)
}

// AddAnswer appends an answer to the history and repopulates the answer
// highlight store from the full history.
func (s *Session) AddAnswer(ans lumidoc.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers = append(s.answers, ans)
	s.answerHighlights.Populate(s.answers)
}

// RemoveAnswer drops an answer by id and repopulates the answer highlights.
// Removing an unknown id is a no-op.
func (s *Session) RemoveAnswer(answerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.answers[:0]
	for _, a := range s.answers {
		if a.ID != answerID {
			kept = append(kept, a)
		}
	}
	s.answers = kept
	s.answerHighlights.Populate(s.answers)
}

// Answers returns a copy of the answer history in insertion order.
func (s *Session) Answers() []lumidoc.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]lumidoc.Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

// SetAnswers replaces the history wholesale, e.g. when restoring a persisted
// session.
func (s *Session) SetAnswers(answers []lumidoc.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers = append([]lumidoc.Answer(nil), answers...)
	s.answerHighlights.Populate(s.answers)
}

// View returns the collapse/view-state tracker. The tracker is not
// internally synchronized; callers mutating it directly must hold no
// expectation of concurrent safety. The Toggle/Collapse wrappers below
// serialize access under the session lock.
func (s *Session) View() *viewstate.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// ToggleSection flips a section's collapse state and reports it.
func (s *Session) ToggleSection(sectionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.ToggleSection(sectionID)
}

// CollapseAllSections collapses every section.
func (s *Session) CollapseAllSections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.CollapseAll()
}

// ExpandAllSections expands every section.
func (s *Session) ExpandAllSections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ExpandAll()
}

// ToggleAnswerCollapsed flips an answer's collapse state and reports it.
func (s *Session) ToggleAnswerCollapsed(answerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.ToggleAnswer(answerID)
}

// SetSummary stores a generated summary for a section.
func (s *Session) SetSummary(sectionID, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[sectionID] = summary
}

// Summary returns a section's summary, if one was generated.
func (s *Session) Summary(sectionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.summaries[sectionID]
	return sum, ok
}

// Summaries returns a copy of all section summaries.
func (s *Session) Summaries() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.summaries))
	for k, v := range s.summaries {
		out[k] = v
	}
	return out
}
