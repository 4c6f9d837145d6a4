// Package highlight holds the mutable highlight collections overlaid on a
// document: ad-hoc user highlights, highlights derived from answer history,
// and whole-image highlight membership. Stores are not internally
// synchronized; a single-threaded event-driven host is assumed, and
// multi-threaded callers must serialize access per store.
package highlight

import "github.com/lumiread/lumiread/internal/lumidoc"

// AnswerColor is the fixed color applied to answer-derived highlights.
const AnswerColor = "purple"

// Store maps span ids to ordered highlight lists.
type Store struct {
	bySpan map[string][]lumidoc.Highlight
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{bySpan: make(map[string][]lumidoc.Highlight)}
}

// Add appends highlights to the lists of their target spans, never
// overwriting existing entries.
func (s *Store) Add(highlights ...lumidoc.Highlight) {
	for _, h := range highlights {
		s.bySpan[h.SpanID] = append(s.bySpan[h.SpanID], h)
	}
}

// Remove deletes all highlights for a span. Unknown ids are a no-op.
func (s *Store) Remove(spanID string) {
	delete(s.bySpan, spanID)
}

// Clear empties the store.
func (s *Store) Clear() {
	s.bySpan = make(map[string][]lumidoc.Highlight)
}

// Get returns a span's highlights in append order. Unknown ids yield an
// empty list.
func (s *Store) Get(spanID string) []lumidoc.Highlight {
	return s.bySpan[spanID]
}

// SpanIDs returns the ids of all spans with at least one highlight.
func (s *Store) SpanIDs() []string {
	ids := make([]string, 0, len(s.bySpan))
	for id := range s.bySpan {
		ids = append(ids, id)
	}
	return ids
}

// AnswerStore holds highlights derived from the answer history. It is
// rebuilt wholesale whenever the history changes.
type AnswerStore struct {
	Store
}

// NewAnswerStore returns an empty answer-derived store.
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{Store: Store{bySpan: make(map[string][]lumidoc.Highlight)}}
}

// Populate clears the store, then appends one highlight per highlighted-span
// descriptor of every answer's originating request, in answer order and
// descriptor order within an answer. That processing order is the stable
// ordering of accumulated highlights on a shared span.
func (s *AnswerStore) Populate(answers []lumidoc.Answer) {
	s.Clear()
	for _, ans := range answers {
		for _, sel := range ans.Request.HighlightedSpans {
			s.Add(lumidoc.Highlight{
				Color:    AnswerColor,
				SpanID:   sel.SpanID,
				Position: sel.Position,
				AnswerID: ans.ID,
			})
		}
	}
}

// ImageStore tracks which images are highlighted, at whole-image
// granularity, keyed by storage path.
type ImageStore struct {
	paths map[string]struct{}
}

// NewImageStore returns an empty image highlight set.
func NewImageStore() *ImageStore {
	return &ImageStore{paths: make(map[string]struct{})}
}

// Add marks an image as highlighted.
func (s *ImageStore) Add(storagePath string) {
	s.paths[storagePath] = struct{}{}
}

// Remove unmarks an image. Unknown paths are a no-op.
func (s *ImageStore) Remove(storagePath string) {
	delete(s.paths, storagePath)
}

// Contains reports whether an image is highlighted.
func (s *ImageStore) Contains(storagePath string) bool {
	_, ok := s.paths[storagePath]
	return ok
}

// Clear empties the set.
func (s *ImageStore) Clear() {
	s.paths = make(map[string]struct{})
}
