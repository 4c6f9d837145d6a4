package importer

import (
	"strings"
	"testing"
)

func TestTextParser_ParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Metadata.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Metadata.Title)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
	sec := doc.Sections[0]
	if sec.Heading.Text != "notes" {
		t.Errorf("expected section heading %q, got %q", "notes", sec.Heading.Text)
	}
	if len(sec.Contents) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(sec.Contents))
	}

	// Hard-wrapped first paragraph joins into one block of two sentences.
	first := sec.Contents[0].TextContent
	if len(first.Spans) != 2 {
		t.Fatalf("expected 2 sentence spans in first paragraph, got %d", len(first.Spans))
	}
	if first.Spans[0].Text != "First paragraph line one." {
		t.Errorf("unexpected span: %q", first.Spans[0].Text)
	}
	if first.Spans[1].Text != "First paragraph line two." {
		t.Errorf("unexpected span: %q", first.Spans[1].Text)
	}

	second := sec.Contents[1].TextContent
	if len(second.Spans) != 1 || second.Spans[0].Text != "Second paragraph." {
		t.Errorf("unexpected second paragraph: %+v", second.Spans)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Metadata.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Metadata.Title)
	}
	if len(doc.Sections) != 0 {
		t.Errorf("expected 0 sections for empty input, got %d", len(doc.Sections))
	}
}

func TestTextParser_WhitespaceOnlyLinesSeparateParagraphs(t *testing.T) {
	// Lines with only whitespace count as blank.
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
	if got := len(doc.Sections[0].Contents); got != 2 {
		t.Errorf("expected 2 paragraphs, got %d", got)
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	input := "Para one.\n\n\n\nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(doc.Sections[0].Contents); got != 2 {
		t.Errorf("expected 2 paragraphs, got %d", got)
	}
}
