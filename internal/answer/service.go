package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lumiread/lumiread/internal/importer"
	"github.com/lumiread/lumiread/internal/lumidoc"
)

// Service turns answer requests into answers grounded in a document.
type Service struct {
	client      Client
	stats       *Stats
	tokenBudget int
	logger      *slog.Logger
}

func NewService(client Client, stats *Stats, tokenBudget int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:      client,
		stats:       stats,
		tokenBudget: tokenBudget,
		logger:      logger,
	}
}

// Stats exposes the service's usage tracker.
func (s *Service) Stats() *Stats {
	return s.stats
}

// Answer asks the model about the document and converts the cited markdown
// response back into content blocks. known is the set of valid span ids;
// citations naming other ids are dropped.
func (s *Service) Answer(ctx context.Context, doc *lumidoc.Document, known map[string]struct{}, req *lumidoc.AnswerRequest) (*lumidoc.Answer, error) {
	spansString := FormatSpans(CollectSpans(doc), s.tokenBudget)
	prompt, err := BuildPrompt(doc, req, spansString)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	markdown, err := s.client.Complete(ctx, prompt)
	elapsed := time.Since(start).Milliseconds()
	if s.stats != nil {
		s.stats.Record(elapsed, err == nil)
	}
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	s.logger.Debug("answer generated", "latency_ms", elapsed, "response_chars", len(markdown))

	contents := parseResponse(markdown)
	RewriteCitations(contents, known)

	return &lumidoc.Answer{
		ID:              lumidoc.NewID("ans"),
		Request:         *req,
		ResponseContent: contents,
		Timestamp:       time.Now().Unix(),
	}, nil
}

// SummarizeSection produces a one-sentence summary of a section's text.
func (s *Service) SummarizeSection(ctx context.Context, title, text string) (string, error) {
	prompt := fmt.Sprintf(`Summarize the following document section in one short sentence (at most 15 words). Respond with only the summary, no preamble.

Section: %q

%s`, title, text)

	start := time.Now()
	summary, err := s.client.Complete(ctx, prompt)
	elapsed := time.Since(start).Milliseconds()
	if s.stats != nil {
		s.stats.Record(elapsed, err == nil)
	}
	if err != nil {
		return "", fmt.Errorf("summarize section: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

// parseResponse converts the model's markdown into content blocks. A response
// that yields nothing becomes a single raw paragraph so the answer is never
// empty.
func parseResponse(markdown string) []lumidoc.Content {
	var contents []lumidoc.Content
	p := &importer.MarkdownParser{}
	parsed, err := p.Parse(strings.NewReader(markdown), "answer.md")
	if err == nil && parsed != nil {
		if parsed.Abstract != nil {
			contents = append(contents, parsed.Abstract.Contents...)
		}
		var walk func(secs []lumidoc.Section)
		walk = func(secs []lumidoc.Section) {
			for i := range secs {
				contents = append(contents, secs[i].Contents...)
				walk(secs[i].SubSections)
			}
		}
		walk(parsed.Sections)
	}

	if len(contents) == 0 {
		span := lumidoc.Span{ID: lumidoc.NewID("s"), Text: markdown}
		contents = []lumidoc.Content{{
			ID:          lumidoc.NewID("c"),
			TextContent: &lumidoc.TextContent{TagName: "p", Spans: []lumidoc.Span{span}},
		}}
	}
	return contents
}
