package answer

import (
	"strings"
	"testing"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

func TestBuildPrompt_QueryOnly(t *testing.T) {
	req := &lumidoc.AnswerRequest{Query: "What is the main claim?"}
	prompt, err := BuildPrompt(nil, req, "{ id: s1, text: Hello.}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, `asked the following question: "What is the main claim?"`) {
		t.Errorf("expected query section, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "{ id: s1, text: Hello.}") {
		t.Errorf("expected spans context in prompt")
	}
	if strings.Contains(prompt, "highlighted") {
		t.Errorf("query-only prompt should not mention a highlight")
	}
}

func TestBuildPrompt_HighlightOnly(t *testing.T) {
	req := &lumidoc.AnswerRequest{Highlight: "stochastic gradient descent"}
	prompt, err := BuildPrompt(nil, req, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "wants a definition") {
		t.Errorf("expected definition prompt, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "stochastic gradient descent") {
		t.Errorf("expected highlighted text in prompt")
	}
}

func TestBuildPrompt_QueryWithHighlight(t *testing.T) {
	req := &lumidoc.AnswerRequest{Query: "Why?", Highlight: "the loss plateaus"}
	prompt, err := BuildPrompt(nil, req, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "highlighted the following text") || !strings.Contains(prompt, `asked the following question: "Why?"`) {
		t.Errorf("expected combined prompt, got:\n%s", prompt)
	}
}

func TestBuildPrompt_Image(t *testing.T) {
	req := &lumidoc.AnswerRequest{Image: &lumidoc.ImageInfo{Caption: "Figure 2: loss curves"}}
	prompt, err := BuildPrompt(nil, req, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "Figure 2: loss curves") {
		t.Errorf("expected caption in prompt, got:\n%s", prompt)
	}

	req.Query = "What does the dashed line mean?"
	prompt, err = BuildPrompt(nil, req, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "question about a figure") {
		t.Errorf("expected image-question prompt, got:\n%s", prompt)
	}
}

func TestBuildPrompt_EmptyRequestFails(t *testing.T) {
	if _, err := BuildPrompt(nil, &lumidoc.AnswerRequest{}, ""); err == nil {
		t.Error("expected error for empty request")
	}
}

func TestBuildPrompt_MetadataBlock(t *testing.T) {
	doc := &lumidoc.Document{Metadata: &lumidoc.Metadata{
		Title:   "Attention Is All You Need",
		Authors: []string{"Vaswani", "Shazeer"},
	}}
	prompt, err := BuildPrompt(doc, &lumidoc.AnswerRequest{Query: "q"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "Title: Attention Is All You Need") {
		t.Errorf("expected title in metadata block")
	}
	if !strings.Contains(prompt, "Authors: Vaswani, Shazeer") {
		t.Errorf("expected authors in metadata block")
	}
}
