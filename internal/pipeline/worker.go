package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/lumiread/lumiread/internal/answer"
	"github.com/lumiread/lumiread/internal/history"
	"github.com/lumiread/lumiread/internal/importer"
	"github.com/lumiread/lumiread/internal/lumidoc"
	"github.com/lumiread/lumiread/internal/session"
)

const maxSummaryRetries = 3

// isRetryable checks if an error is worth retrying.
func isRetryable(err error) bool {
	var retryErr *answer.RetryableError
	return errors.As(err, &retryErr)
}

// backoff returns the wait before retry attempt n (0-indexed), capped at
// 30s, with up to half the base added as jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	return base + time.Duration(rand.Int64N(int64(base)/2))
}

// Dedup is an in-memory index from content hash to the document id that
// first imported that content.
type Dedup struct {
	mu     sync.Mutex
	byHash map[string]string
}

func NewDedup() *Dedup {
	return &Dedup{byHash: make(map[string]string)}
}

// Claim registers a hash for a document. If the hash is already claimed, the
// existing document id is returned and dup is true.
func (d *Dedup) Claim(hash, docID string) (existing string, dup bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.byHash[hash]; ok {
		return id, true
	}
	d.byHash[hash] = docID
	return "", false
}

// Release forgets a hash, e.g. when its document is deleted.
func (d *Dedup) Release(hash string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byHash, hash)
}

// Worker processes a single document import job.
type Worker struct {
	svc      *answer.Service
	sessions *session.Manager
	dedup    *Dedup
	hist     *history.Store
	log      *slog.Logger

	pdfFallback            bool
	maxConcurrentSummaries int
}

func NewWorker(svc *answer.Service, sessions *session.Manager, dedup *Dedup, hist *history.Store, log *slog.Logger, pdfFallback bool, maxSummaries int) *Worker {
	if maxSummaries <= 0 {
		maxSummaries = 1
	}
	return &Worker{
		svc:                    svc,
		sessions:               sessions,
		dedup:                  dedup,
		hist:                   hist,
		log:                    log,
		pdfFallback:            pdfFallback,
		maxConcurrentSummaries: maxSummaries,
	}
}

// Process runs the full import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse.
	job.SetStatus(StatusParsing, "parsing")
	p, err := importer.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pdf, ok := p.(*importer.PDFParser); ok {
		pdf.FallbackPdftotext = w.pdfFallback
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		if doc.Metadata == nil {
			doc.Metadata = &lumidoc.Metadata{}
		}
		doc.Metadata.Title = job.Title
	}

	// Dedup on the parsed text, so format differences of identical content
	// still collide.
	job.ContentHash = DocContentHash(doc)
	if w.dedup != nil {
		if existing, dup := w.dedup.Claim(job.ContentHash, job.DocID); dup {
			log.Info("duplicate document, skipping", "existing_doc_id", existing)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Extract key concepts from the abstract and tag their occurrences in
	// the abstract text. A failure here degrades the job to partial; the
	// document itself is unaffected.
	conceptsFailed := false
	if w.svc != nil && doc.Abstract != nil {
		job.SetStatus(StatusParsing, "extracting concepts")
		abstract := abstractText(doc)
		concepts, err := w.svc.ExtractConcepts(ctx, abstract)
		if err != nil {
			log.Warn("concept extraction failed", "error", err)
			job.AddError(fmt.Sprintf("concepts: %s", err))
			conceptsFailed = true
		} else if len(concepts) > 0 {
			doc.Concepts = concepts
			answer.AnnotateConcepts(answer.AbstractSpans(doc), concepts)
			log.Info("concepts extracted", "concepts", len(concepts))
		}
	}

	// Phase 2: Index. The session builds the span index and owns all
	// per-document state from here on.
	job.SetStatus(StatusIndexing, "indexing")
	sess := w.sessions.Put(job.DocID, doc)
	sections := collectSections(doc)
	job.SetTotalSections(len(sections))
	job.SetSpanCount(len(sess.Index().SpanIDs()))
	log.Info("document indexed", "sections", len(sections), "spans", len(sess.Index().SpanIDs()))

	// Restore any persisted answer history into the fresh session, which
	// also repopulates the answer-derived highlight store.
	if w.hist != nil {
		if answers, err := w.hist.LoadAnswers(job.DocID); err != nil {
			log.Warn("failed to load answer history", "error", err)
		} else if len(answers) > 0 {
			sess.SetAnswers(answers)
			log.Info("answer history restored", "answers", len(answers))
		}
	}

	// Phase 3: Summarize each section. Failures degrade the job to partial
	// instead of failing it; the document is already readable.
	if w.svc == nil || len(sections) == 0 {
		if conceptsFailed {
			job.SetStatus(StatusPartial, "done")
		} else {
			job.SetStatus(StatusCompleted, "done")
		}
		return
	}
	job.SetStatus(StatusSummarizing, "summarizing")

	type result struct {
		sectionID string
		summary   string
		err       error
	}
	results := make(chan result, len(sections))
	sem := make(chan struct{}, w.maxConcurrentSummaries)

	for _, sec := range sections {
		sem <- struct{}{}
		go func(sec *lumidoc.Section) {
			defer func() { <-sem }()
			text := sectionText(sec)
			if strings.TrimSpace(text) == "" {
				results <- result{sectionID: sec.ID}
				return
			}
			var summary string
			var lastErr error
			for attempt := range maxSummaryRetries {
				summary, lastErr = w.svc.SummarizeSection(ctx, sec.Heading.Text, text)
				if lastErr == nil || !isRetryable(lastErr) {
					break
				}
				log.Warn("retryable summary error", "section", sec.ID, "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(backoff(attempt)):
				case <-ctx.Done():
					results <- result{sectionID: sec.ID, err: ctx.Err()}
					return
				}
			}
			results <- result{sectionID: sec.ID, summary: summary, err: lastErr}
		}(sec)
	}

	hadErrors := conceptsFailed
	for range sections {
		r := <-results
		job.IncrSectionsSummarized()
		if r.err != nil {
			log.Error("summary failed", "section", r.sectionID, "error", r.err)
			job.AddError(fmt.Sprintf("summarize %s: %s", r.sectionID, r.err))
			hadErrors = true
			continue
		}
		if r.summary != "" {
			sess.SetSummary(r.sectionID, r.summary)
		}
	}

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("import complete", "status", job.Snapshot().Status)
}

// abstractText joins the text of the abstract's spans.
func abstractText(doc *lumidoc.Document) string {
	var sb strings.Builder
	for _, span := range answer.AbstractSpans(doc) {
		if span.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(span.Text)
	}
	return sb.String()
}

// collectSections flattens the section tree depth-first.
func collectSections(doc *lumidoc.Document) []*lumidoc.Section {
	var out []*lumidoc.Section
	var walk func(secs []lumidoc.Section)
	walk = func(secs []lumidoc.Section) {
		for i := range secs {
			out = append(out, &secs[i])
			walk(secs[i].SubSections)
		}
	}
	if doc != nil {
		walk(doc.Sections)
	}
	return out
}

// sectionText joins the text of a section's own contents. Subsections are
// summarized separately.
func sectionText(sec *lumidoc.Section) string {
	var sb strings.Builder
	for i := range sec.Contents {
		for _, span := range contentSpanTexts(&sec.Contents[i]) {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(span)
		}
	}
	return sb.String()
}

func contentSpanTexts(c *lumidoc.Content) []string {
	var out []string
	if c.TextContent != nil {
		for _, span := range c.TextContent.Spans {
			out = append(out, span.Text)
		}
	}
	if c.ListContent != nil {
		out = append(out, listSpanTexts(c.ListContent)...)
	}
	if c.ImageContent != nil && c.ImageContent.Caption != nil {
		out = append(out, c.ImageContent.Caption.Text)
	}
	if c.FigureContent != nil {
		for _, img := range c.FigureContent.Images {
			if img.Caption != nil {
				out = append(out, img.Caption.Text)
			}
		}
		if c.FigureContent.Caption != nil {
			out = append(out, c.FigureContent.Caption.Text)
		}
	}
	if c.HTMLFigureContent != nil && c.HTMLFigureContent.Caption != nil {
		out = append(out, c.HTMLFigureContent.Caption.Text)
	}
	return out
}

func listSpanTexts(list *lumidoc.ListContent) []string {
	var out []string
	for _, item := range list.ListItems {
		for _, span := range item.Spans {
			out = append(out, span.Text)
		}
		if item.SubListContent != nil {
			out = append(out, listSpanTexts(item.SubListContent)...)
		}
	}
	return out
}

// DocContentHash hashes every span's text in reading order. Two uploads
// that parse into the same text produce the same hash regardless of
// filename or format.
func DocContentHash(doc *lumidoc.Document) string {
	var sb strings.Builder
	for _, span := range answer.CollectSpans(doc) {
		if span.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(span.Text)
	}
	return ContentHashHex([]byte(sb.String()))
}
