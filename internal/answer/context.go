package answer

import (
	"fmt"
	"strings"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

// CollectSpans gathers every span in the document in reading order: abstract,
// sections (depth-first), then references and footnotes. Captions count.
func CollectSpans(doc *lumidoc.Document) []lumidoc.Span {
	if doc == nil {
		return nil
	}
	var out []lumidoc.Span

	if doc.Abstract != nil {
		for _, c := range doc.Abstract.Contents {
			out = append(out, contentSpans(&c)...)
		}
	}

	var walk func(secs []lumidoc.Section)
	walk = func(secs []lumidoc.Section) {
		for i := range secs {
			for j := range secs[i].Contents {
				out = append(out, contentSpans(&secs[i].Contents[j])...)
			}
			walk(secs[i].SubSections)
		}
	}
	walk(doc.Sections)

	for _, ref := range doc.References {
		out = append(out, ref.Span)
	}
	for _, fn := range doc.Footnotes {
		out = append(out, fn.Span)
	}
	return out
}

func contentSpans(c *lumidoc.Content) []lumidoc.Span {
	var out []lumidoc.Span
	switch {
	case c.TextContent != nil:
		out = append(out, c.TextContent.Spans...)
	case c.ListContent != nil:
		out = append(out, listSpans(c.ListContent)...)
	}
	if c.ImageContent != nil && c.ImageContent.Caption != nil {
		out = append(out, *c.ImageContent.Caption)
	}
	if c.FigureContent != nil {
		for _, img := range c.FigureContent.Images {
			if img.Caption != nil {
				out = append(out, *img.Caption)
			}
		}
		if c.FigureContent.Caption != nil {
			out = append(out, *c.FigureContent.Caption)
		}
	}
	if c.HTMLFigureContent != nil && c.HTMLFigureContent.Caption != nil {
		out = append(out, *c.HTMLFigureContent.Caption)
	}
	return out
}

func listSpans(list *lumidoc.ListContent) []lumidoc.Span {
	var out []lumidoc.Span
	for _, item := range list.ListItems {
		out = append(out, item.Spans...)
		if item.SubListContent != nil {
			out = append(out, listSpans(item.SubListContent)...)
		}
	}
	return out
}

// FormatSpans renders spans as one "{ id: ..., text: ... }" line each,
// stopping when the token budget is exhausted. A budget of zero or less
// means no limit.
func FormatSpans(spans []lumidoc.Span, tokenBudget int) string {
	var sb strings.Builder
	used := 0
	for _, span := range spans {
		line := fmt.Sprintf("{ id: %s, text: %s}", span.ID, span.Text)
		cost := EstimateTokens(line)
		if tokenBudget > 0 && used+cost > tokenBudget {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(line)
		used += cost
	}
	return sb.String()
}

// EstimateTokens gives a rough token count. Exact tokenization is not
// required for budgeting the prompt context.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	// Roughly 1.33 tokens per English word.
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}
