// Package viewstate tracks per-document UI state: which sections and
// answers are collapsed and which sidebar tab is active. It consults the
// document index for structural validity but holds no text algorithms; a new
// document load replaces the tracker outright.
package viewstate

import "github.com/lumiread/lumiread/internal/docindex"

// SidebarTab names the panel shown next to the document.
type SidebarTab string

const (
	TabSummary  SidebarTab = "summary"
	TabAnswers  SidebarTab = "answers"
	TabConcepts SidebarTab = "concepts"
)

// Tracker is the mutable view state for one loaded document.
type Tracker struct {
	index             *docindex.Index
	collapsedSections map[string]struct{}
	collapsedAnswers  map[string]struct{}
	sidebarTab        SidebarTab
}

// NewTracker returns a fresh tracker bound to a document index. All sections
// start expanded and the summary tab is active.
func NewTracker(index *docindex.Index) *Tracker {
	return &Tracker{
		index:             index,
		collapsedSections: make(map[string]struct{}),
		collapsedAnswers:  make(map[string]struct{}),
		sidebarTab:        TabSummary,
	}
}

// ToggleSection flips a section's collapse state and reports the new state.
// Unknown section ids are a no-op and report false.
func (t *Tracker) ToggleSection(sectionID string) bool {
	if _, ok := t.index.Section(sectionID); !ok {
		return false
	}
	if _, collapsed := t.collapsedSections[sectionID]; collapsed {
		delete(t.collapsedSections, sectionID)
		return false
	}
	t.collapsedSections[sectionID] = struct{}{}
	return true
}

// SectionCollapsed reports whether a section is collapsed.
func (t *Tracker) SectionCollapsed(sectionID string) bool {
	_, ok := t.collapsedSections[sectionID]
	return ok
}

// CollapseAll collapses every known section.
func (t *Tracker) CollapseAll() {
	doc := t.index.Document()
	if doc == nil {
		return
	}
	for _, sec := range doc.Sections {
		t.collapseRecursive(sec.ID)
	}
}

func (t *Tracker) collapseRecursive(sectionID string) {
	sec, ok := t.index.Section(sectionID)
	if !ok {
		return
	}
	t.collapsedSections[sec.ID] = struct{}{}
	for _, sub := range sec.SubSections {
		t.collapseRecursive(sub.ID)
	}
}

// ExpandAll expands every section.
func (t *Tracker) ExpandAll() {
	t.collapsedSections = make(map[string]struct{})
}

// ToggleAnswer flips an answer's collapse state and reports the new state.
func (t *Tracker) ToggleAnswer(answerID string) bool {
	if _, collapsed := t.collapsedAnswers[answerID]; collapsed {
		delete(t.collapsedAnswers, answerID)
		return false
	}
	t.collapsedAnswers[answerID] = struct{}{}
	return true
}

// AnswerCollapsed reports whether an answer is collapsed.
func (t *Tracker) AnswerCollapsed(answerID string) bool {
	_, ok := t.collapsedAnswers[answerID]
	return ok
}

// SetSidebarTab switches the active sidebar tab.
func (t *Tracker) SetSidebarTab(tab SidebarTab) {
	t.sidebarTab = tab
}

// SidebarTab returns the active sidebar tab.
func (t *Tracker) SidebarTab() SidebarTab {
	return t.sidebarTab
}
