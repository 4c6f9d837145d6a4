// Package docindex builds the per-document lookup tables: span id to span,
// span id to owning section, and section id to parent section. The index is
// built in one pass at document load and rebuilt wholesale on every new
// document; it holds read-only references into the document tree and is
// never incrementally patched.
package docindex

import "github.com/lumiread/lumiread/internal/lumidoc"

// Index is the precomputed lookup for one loaded document.
type Index struct {
	doc            *lumidoc.Document
	spans          map[string]*lumidoc.Span
	spanSection    map[string]*lumidoc.Section
	sectionByID    map[string]*lumidoc.Section
	sectionParents map[string]*lumidoc.Section
}

// Build walks the document and constructs the index. Abstract, reference,
// footnote, and caption spans are all indexed; abstract spans carry no
// owning section. The owning section of a span nested in subsections is the
// nearest ancestor section.
func Build(doc *lumidoc.Document) *Index {
	idx := &Index{
		doc:            doc,
		spans:          make(map[string]*lumidoc.Span),
		spanSection:    make(map[string]*lumidoc.Section),
		sectionByID:    make(map[string]*lumidoc.Section),
		sectionParents: make(map[string]*lumidoc.Section),
	}
	if doc == nil {
		return idx
	}

	if doc.Abstract != nil {
		for i := range doc.Abstract.Contents {
			idx.indexContent(&doc.Abstract.Contents[i], nil)
		}
	}
	for i := range doc.Sections {
		idx.indexSection(&doc.Sections[i], nil)
	}
	for i := range doc.References {
		idx.indexSpan(&doc.References[i].Span, nil)
	}
	for i := range doc.Footnotes {
		idx.indexSpan(&doc.Footnotes[i].Span, nil)
	}
	return idx
}

func (idx *Index) indexSection(sec *lumidoc.Section, parent *lumidoc.Section) {
	idx.sectionByID[sec.ID] = sec
	if parent != nil {
		idx.sectionParents[sec.ID] = parent
	}
	for i := range sec.Contents {
		idx.indexContent(&sec.Contents[i], sec)
	}
	for i := range sec.SubSections {
		idx.indexSection(&sec.SubSections[i], sec)
	}
}

func (idx *Index) indexContent(c *lumidoc.Content, owner *lumidoc.Section) {
	switch {
	case c.TextContent != nil:
		for i := range c.TextContent.Spans {
			idx.indexSpan(&c.TextContent.Spans[i], owner)
		}
	case c.ListContent != nil:
		idx.indexList(c.ListContent, owner)
	case c.ImageContent != nil:
		idx.indexSpan(c.ImageContent.Caption, owner)
	case c.FigureContent != nil:
		for i := range c.FigureContent.Images {
			idx.indexSpan(c.FigureContent.Images[i].Caption, owner)
		}
		idx.indexSpan(c.FigureContent.Caption, owner)
	case c.HTMLFigureContent != nil:
		idx.indexSpan(c.HTMLFigureContent.Caption, owner)
	}
}

func (idx *Index) indexList(list *lumidoc.ListContent, owner *lumidoc.Section) {
	for i := range list.ListItems {
		item := &list.ListItems[i]
		for j := range item.Spans {
			idx.indexSpan(&item.Spans[j], owner)
		}
		if item.SubListContent != nil {
			idx.indexList(item.SubListContent, owner)
		}
	}
}

func (idx *Index) indexSpan(span *lumidoc.Span, owner *lumidoc.Section) {
	if span == nil {
		return
	}
	idx.spans[span.ID] = span
	if owner != nil {
		idx.spanSection[span.ID] = owner
	}
}

// Span returns the span for an id, or nil and false when unknown.
func (idx *Index) Span(id string) (*lumidoc.Span, bool) {
	s, ok := idx.spans[id]
	return s, ok
}

// SectionForSpan returns the section that directly contains a span, or nil
// and false for abstract, reference, footnote, and unknown spans.
func (idx *Index) SectionForSpan(id string) (*lumidoc.Section, bool) {
	s, ok := idx.spanSection[id]
	return s, ok
}

// Section returns a section by id, or nil and false when unknown.
func (idx *Index) Section(id string) (*lumidoc.Section, bool) {
	s, ok := idx.sectionByID[id]
	return s, ok
}

// ParentSection returns a section's parent, or nil and false for top-level
// sections and unknown ids.
func (idx *Index) ParentSection(id string) (*lumidoc.Section, bool) {
	s, ok := idx.sectionParents[id]
	return s, ok
}

// SpanIDs returns the set of all indexed span ids.
func (idx *Index) SpanIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(idx.spans))
	for id := range idx.spans {
		ids[id] = struct{}{}
	}
	return ids
}

// Document returns the indexed document.
func (idx *Index) Document() *lumidoc.Document {
	return idx.doc
}
