package docindex

import (
	"testing"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

func textBlock(spanIDs ...string) lumidoc.Content {
	spans := make([]lumidoc.Span, 0, len(spanIDs))
	for _, id := range spanIDs {
		spans = append(spans, lumidoc.Span{ID: id, Text: "text for " + id})
	}
	return lumidoc.Content{ID: "c-" + spanIDs[0], TextContent: &lumidoc.TextContent{TagName: "p", Spans: spans}}
}

func fixtureDoc() *lumidoc.Document {
	return &lumidoc.Document{
		Abstract: &lumidoc.Abstract{
			Contents: []lumidoc.Content{textBlock("abs1", "abs2")},
		},
		Sections: []lumidoc.Section{
			{
				ID:       "sec1",
				Heading:  lumidoc.Heading{HeadingLevel: 1, Text: "Introduction"},
				Contents: []lumidoc.Content{textBlock("s1a"), textBlock("s1b")},
				SubSections: []lumidoc.Section{
					{
						ID:       "sec1.1",
						Heading:  lumidoc.Heading{HeadingLevel: 2, Text: "Background"},
						Contents: []lumidoc.Content{textBlock("s11a")},
						SubSections: []lumidoc.Section{
							{
								ID:       "sec1.1.1",
								Heading:  lumidoc.Heading{HeadingLevel: 3, Text: "Prior Work"},
								Contents: []lumidoc.Content{textBlock("s111a")},
							},
						},
					},
				},
			},
			{
				ID:      "sec2",
				Heading: lumidoc.Heading{HeadingLevel: 1, Text: "Methods"},
				Contents: []lumidoc.Content{
					{
						ID: "c-list",
						ListContent: &lumidoc.ListContent{
							ListItems: []lumidoc.ListItem{
								{
									Spans: []lumidoc.Span{{ID: "li1", Text: "item one"}},
									SubListContent: &lumidoc.ListContent{
										ListItems: []lumidoc.ListItem{
											{Spans: []lumidoc.Span{{ID: "li1a", Text: "nested item"}}},
										},
									},
								},
							},
						},
					},
					{
						ID: "c-fig",
						FigureContent: &lumidoc.FigureContent{
							Images: []lumidoc.ImageContent{
								{StoragePath: "images/fig1a.png", Caption: &lumidoc.Span{ID: "cap1a", Text: "sub caption"}},
							},
							Caption: &lumidoc.Span{ID: "capfig", Text: "figure caption"},
						},
					},
				},
			},
		},
		References: []lumidoc.Reference{
			{ID: "r1", Span: lumidoc.Span{ID: "ref1", Text: "Author et al. 2024"}},
		},
		Footnotes: []lumidoc.Footnote{
			{ID: "f1", Span: lumidoc.Span{ID: "fn1", Text: "footnote body"}},
		},
	}
}

func TestBuild_IndexesEveryReachableSpan(t *testing.T) {
	idx := Build(fixtureDoc())

	want := []string{
		"abs1", "abs2",
		"s1a", "s1b", "s11a", "s111a",
		"li1", "li1a", "cap1a", "capfig",
		"ref1", "fn1",
	}
	ids := idx.SpanIDs()
	if len(ids) != len(want) {
		t.Fatalf("expected %d indexed spans, got %d (%v)", len(want), len(ids), ids)
	}
	for _, id := range want {
		span, ok := idx.Span(id)
		if !ok {
			t.Errorf("span %q not indexed", id)
			continue
		}
		if span.ID != id {
			t.Errorf("span lookup %q returned span %q", id, span.ID)
		}
	}
}

func TestBuild_SectionOwnership(t *testing.T) {
	idx := Build(fixtureDoc())

	tests := []struct {
		spanID  string
		wantSec string // "" means no owning section
	}{
		{"s1a", "sec1"},
		{"s11a", "sec1.1"},   // nearest containing section, not the top-level root
		{"s111a", "sec1.1.1"},
		{"li1", "sec2"},
		{"li1a", "sec2"}, // nested list items belong to the block's section
		{"cap1a", "sec2"},
		{"capfig", "sec2"},
		{"abs1", ""},
		{"ref1", ""},
		{"fn1", ""},
	}
	for _, tt := range tests {
		sec, ok := idx.SectionForSpan(tt.spanID)
		if tt.wantSec == "" {
			if ok {
				t.Errorf("span %q: expected no owning section, got %q", tt.spanID, sec.ID)
			}
			continue
		}
		if !ok {
			t.Errorf("span %q: expected section %q, got none", tt.spanID, tt.wantSec)
			continue
		}
		if sec.ID != tt.wantSec {
			t.Errorf("span %q: expected section %q, got %q", tt.spanID, tt.wantSec, sec.ID)
		}
	}
}

func TestBuild_SectionParents(t *testing.T) {
	idx := Build(fixtureDoc())

	if _, ok := idx.ParentSection("sec1"); ok {
		t.Error("top-level section should have no parent")
	}
	parent, ok := idx.ParentSection("sec1.1")
	if !ok || parent.ID != "sec1" {
		t.Errorf("expected parent sec1, got %v ok=%v", parent, ok)
	}
	parent, ok = idx.ParentSection("sec1.1.1")
	if !ok || parent.ID != "sec1.1" {
		t.Errorf("expected parent sec1.1, got %v ok=%v", parent, ok)
	}
	if _, ok := idx.ParentSection("nope"); ok {
		t.Error("unknown section id should have no parent")
	}
}

func TestBuild_UnknownLookupsReturnAbsent(t *testing.T) {
	idx := Build(fixtureDoc())

	if _, ok := idx.Span("missing"); ok {
		t.Error("unknown span id should not be found")
	}
	if _, ok := idx.SectionForSpan("missing"); ok {
		t.Error("unknown span id should have no section")
	}
	if _, ok := idx.Section("missing"); ok {
		t.Error("unknown section id should not be found")
	}
}

func TestBuild_EmptyAndNilDocuments(t *testing.T) {
	for name, doc := range map[string]*lumidoc.Document{
		"nil":   nil,
		"empty": {},
	} {
		idx := Build(doc)
		if n := len(idx.SpanIDs()); n != 0 {
			t.Errorf("%s document: expected 0 spans, got %d", name, n)
		}
		if _, ok := idx.Span("anything"); ok {
			t.Errorf("%s document: lookup should be absent", name)
		}
	}
}
