package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

const (
	// Labels for the two content entries every extracted concept carries.
	ConceptLabelDefinition = "definition"
	ConceptLabelRelevance  = "relevance"
)

const conceptPreamble = `You are an expert academic assistant tasked with extracting key concepts and terms from research paper abstracts. For each concept, provide its name and two content items:
1. A general definition of the concept.
2. Its specific relevance to the provided abstract.

Your output MUST be a JSON object with a single key "concepts", which contains a list of concept objects. Each concept object must have "name" and "contents". The "contents" field is a list of two objects:
- the first with a "label" of "definition" and a "value" containing a concise, general definition of the concept (8-16 words);
- the second with a "label" of "relevance" and a "value" explaining why this concept matters in this specific paper.

Do NOT include an "id" field; ids are assigned downstream. Respond with only the JSON object.`

// conceptResponse is the JSON shape the model is instructed to produce.
type conceptResponse struct {
	Concepts []struct {
		Name     string                 `json:"name"`
		Contents []lumidoc.ConceptEntry `json:"contents"`
	} `json:"concepts"`
}

// ExtractConcepts asks the model for the key concepts of an abstract. A
// blank abstract yields no concepts and no model call.
func (s *Service) ExtractConcepts(ctx context.Context, abstract string) ([]lumidoc.Concept, error) {
	if strings.TrimSpace(abstract) == "" {
		return nil, nil
	}
	prompt := fmt.Sprintf("%s\n\nHere is the abstract: %s", conceptPreamble, abstract)

	start := time.Now()
	raw, err := s.client.Complete(ctx, prompt)
	elapsed := time.Since(start).Milliseconds()
	if s.stats != nil {
		s.stats.Record(elapsed, err == nil)
	}
	if err != nil {
		return nil, fmt.Errorf("extract concepts: %w", err)
	}

	var resp conceptResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode concepts: %w", err)
	}

	concepts := make([]lumidoc.Concept, 0, len(resp.Concepts))
	for i, c := range resp.Concepts {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		concepts = append(concepts, lumidoc.Concept{
			ID:       fmt.Sprintf("concept-%d", i),
			Name:     c.Name,
			Contents: c.Contents,
		})
	}
	s.logger.Debug("concepts extracted", "latency_ms", elapsed, "concepts", len(concepts))
	return concepts, nil
}

// AnnotateConcepts tags whole-word occurrences of each concept's name in the
// given spans with a concept inner tag carrying the concept id. Matching is
// case-insensitive; offsets are rune positions.
func AnnotateConcepts(spans []*lumidoc.Span, concepts []lumidoc.Concept) {
	for _, concept := range concepts {
		if concept.Name == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(concept.Name) + `\b`)
		if err != nil {
			continue
		}
		for _, span := range spans {
			if span == nil {
				continue
			}
			for _, m := range re.FindAllStringIndex(span.Text, -1) {
				span.InnerTags = append(span.InnerTags, lumidoc.InnerTag{
					ID:       lumidoc.NewID("t"),
					TagName:  lumidoc.TagConcept,
					Metadata: map[string]string{"concept_id": concept.ID},
					Position: lumidoc.Position{
						StartIndex: utf8.RuneCountInString(span.Text[:m[0]]),
						EndIndex:   utf8.RuneCountInString(span.Text[:m[1]]),
					},
				})
			}
		}
	}
}

// AbstractSpans returns pointers to every text and list span in the
// document's abstract, in order.
func AbstractSpans(doc *lumidoc.Document) []*lumidoc.Span {
	if doc == nil || doc.Abstract == nil {
		return nil
	}
	var out []*lumidoc.Span
	for i := range doc.Abstract.Contents {
		c := &doc.Abstract.Contents[i]
		if c.TextContent != nil {
			for j := range c.TextContent.Spans {
				out = append(out, &c.TextContent.Spans[j])
			}
		}
		if c.ListContent != nil {
			out = append(out, listSpanPtrs(c.ListContent)...)
		}
	}
	return out
}

func listSpanPtrs(list *lumidoc.ListContent) []*lumidoc.Span {
	var out []*lumidoc.Span
	for i := range list.ListItems {
		for j := range list.ListItems[i].Spans {
			out = append(out, &list.ListItems[i].Spans[j])
		}
		if list.ListItems[i].SubListContent != nil {
			out = append(out, listSpanPtrs(list.ListItems[i].SubListContent)...)
		}
	}
	return out
}
