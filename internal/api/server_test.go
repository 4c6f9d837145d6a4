package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lumiread/lumiread/internal/answer"
	"github.com/lumiread/lumiread/internal/config"
	"github.com/lumiread/lumiread/internal/history"
	"github.com/lumiread/lumiread/internal/lumidoc"
	"github.com/lumiread/lumiread/internal/pipeline"
	"github.com/lumiread/lumiread/internal/session"
)

const testAPIKey = "test-key"

type fakeClient struct {
	response string
	err      error
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testDocument() *lumidoc.Document {
	return &lumidoc.Document{
		Metadata: &lumidoc.Metadata{Title: "Attention Is All You Need"},
		Concepts: []lumidoc.Concept{{
			ID:   "concept-0",
			Name: "Attention",
			Contents: []lumidoc.ConceptEntry{
				{Label: "definition", Value: "A mechanism weighting inputs by relevance."},
				{Label: "relevance", Value: "The architecture is built entirely on it."},
			},
		}},
		Sections: []lumidoc.Section{
			{
				ID:      "sec1",
				Heading: lumidoc.Heading{HeadingLevel: 1, Text: "Introduction"},
				Contents: []lumidoc.Content{
					{
						ID: "c1",
						TextContent: &lumidoc.TextContent{
							TagName: "p",
							Spans: []lumidoc.Span{
								{ID: "s1", Text: "First sentence."},
								{ID: "s2", Text: "Second sentence."},
							},
						},
					},
				},
			},
		},
	}
}

func newTestServer(t *testing.T, client answer.Client) *Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		APIKey:         testAPIKey,
		AnthropicModel: "test-model",
		MaxUploadBytes: 1 << 20,
		MaxQueueSize:   4,
		WorkerCount:    1,
		JobTTL:         time.Hour,
	}

	svc := answer.NewService(client, answer.NewStats(time.Hour), 0, log)
	sessions := session.NewManager()
	sessions.Put("doc1", testDocument())
	hist := history.NewStore(t.TempDir())
	orch := pipeline.NewOrchestrator(cfg, svc, sessions, hist, log)

	return NewServer(orch, svc, sessions, hist, log, cfg)
}

func doRequest(s *Server, method, path string, body io.Reader, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if authed {
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	rec := doRequest(s, http.MethodGet, "/health", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuth_MissingKey(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	rec := doRequest(s, http.MethodGet, "/api/documents", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_WrongKey(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestListDocuments(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	rec := doRequest(s, http.MethodGet, "/api/documents", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	docs, ok := body["documents"].([]any)
	if !ok || len(docs) != 1 {
		t.Fatalf("expected 1 document, got %v", body["documents"])
	}
	doc := docs[0].(map[string]any)
	if doc["doc_id"] != "doc1" {
		t.Errorf("expected doc_id doc1, got %v", doc["doc_id"])
	}
	if doc["title"] != "Attention Is All You Need" {
		t.Errorf("unexpected title %v", doc["title"])
	}
}

func TestGetDocument(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	rec := doRequest(s, http.MethodGet, "/api/documents/doc1", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["doc_id"] != "doc1" {
		t.Errorf("expected doc_id doc1, got %v", body["doc_id"])
	}
	if body["document"] == nil {
		t.Error("expected document payload")
	}

	rec = doRequest(s, http.MethodGet, "/api/documents/nope", nil, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown doc, got %d", rec.Code)
	}
}

func multipartFile(t *testing.T, fieldFilename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fieldFilename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(data)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestImport_AndStatus(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	buf, contentType := multipartFile(t, "paper.md", []byte("# Title\n\nSome body text.\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/import", buf)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	jobID, _ := body["job_id"].(string)
	if jobID == "" {
		t.Fatal("expected a job_id")
	}

	// Orchestrator was not started, so the job stays queued.
	rec = doRequest(s, http.MethodGet, "/api/import/"+jobID+"/status", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	status := decodeBody(t, rec)
	if status["status"] != string(pipeline.StatusQueued) {
		t.Errorf("expected queued status, got %v", status["status"])
	}
}

func TestImport_UnsupportedType(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	buf, contentType := multipartFile(t, "archive.zip", []byte("not a document"))
	req := httptest.NewRequest(http.MethodPost, "/api/import", buf)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestImportStatus_UnknownJob(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	rec := doRequest(s, http.MethodGet, "/api/import/nope/status", nil, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestGetConcepts(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	rec := doRequest(s, http.MethodGet, "/api/documents/doc1/concepts", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	concepts, _ := body["concepts"].([]any)
	if len(concepts) != 1 {
		t.Fatalf("expected 1 concept, got %v", body["concepts"])
	}
	concept := concepts[0].(map[string]any)
	if concept["name"] != "Attention" {
		t.Errorf("expected concept Attention, got %v", concept["name"])
	}

	rec = doRequest(s, http.MethodGet, "/api/documents/nope/concepts", nil, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown doc, got %d", rec.Code)
	}
}

func TestHighlightLifecycle(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	add := strings.NewReader(`{"span_id":"s1","color":"blue"}`)
	rec := doRequest(s, http.MethodPost, "/api/documents/doc1/highlights", add, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodGet, "/api/documents/doc1/highlights?span_id=s1", nil, true)
	body := decodeBody(t, rec)
	highlights, _ := body["highlights"].([]any)
	if len(highlights) != 1 {
		t.Fatalf("expected 1 highlight, got %d", len(highlights))
	}

	// Unknown span is rejected.
	bad := strings.NewReader(`{"span_id":"missing"}`)
	rec = doRequest(s, http.MethodPost, "/api/documents/doc1/highlights", bad, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown span, got %d", rec.Code)
	}

	rec = doRequest(s, http.MethodDelete, "/api/documents/doc1/highlights/s1", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = doRequest(s, http.MethodGet, "/api/documents/doc1/highlights?span_id=s1", nil, true)
	body = decodeBody(t, rec)
	highlights, _ = body["highlights"].([]any)
	if len(highlights) != 0 {
		t.Errorf("expected 0 highlights after remove, got %d", len(highlights))
	}

	// Removing again is a no-op, not an error.
	rec = doRequest(s, http.MethodDelete, "/api/documents/doc1/highlights/s1", nil, true)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 on repeat remove, got %d", rec.Code)
	}
}

func TestClearHighlights(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	for _, spanID := range []string{"s1", "s2"} {
		add := strings.NewReader(`{"span_id":"` + spanID + `"}`)
		rec := doRequest(s, http.MethodPost, "/api/documents/doc1/highlights", add, true)
		if rec.Code != http.StatusCreated {
			t.Fatalf("add %s: expected 201, got %d", spanID, rec.Code)
		}
	}

	rec := doRequest(s, http.MethodDelete, "/api/documents/doc1/highlights", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/api/documents/doc1/highlights", nil, true)
	body := decodeBody(t, rec)
	all, _ := body["highlights"].(map[string]any)
	if len(all) != 0 {
		t.Errorf("expected no highlights after clear, got %v", all)
	}
}

func TestToggleImageHighlight(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	toggle := func() bool {
		body := strings.NewReader(`{"image_storage_path":"images/fig1.png"}`)
		rec := doRequest(s, http.MethodPost, "/api/documents/doc1/highlights/images", body, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		out := decodeBody(t, rec)
		highlighted, _ := out["highlighted"].(bool)
		return highlighted
	}

	if !toggle() {
		t.Error("first toggle should highlight")
	}
	if toggle() {
		t.Error("second toggle should unhighlight")
	}
}

func TestAskAnswer(t *testing.T) {
	s := newTestServer(t, &fakeClient{response: "**Short answer.** The model attends to every token."})

	body := strings.NewReader(`{"query":"how does attention work?"}`)
	rec := doRequest(s, http.MethodPost, "/api/documents/doc1/answers", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	ans := decodeBody(t, rec)
	answerID, _ := ans["id"].(string)
	if answerID == "" {
		t.Fatal("expected answer id")
	}
	if ans["response_content"] == nil {
		t.Error("expected response content")
	}

	rec = doRequest(s, http.MethodGet, "/api/documents/doc1/answers", nil, true)
	list := decodeBody(t, rec)
	answers, _ := list["answers"].([]any)
	if len(answers) != 1 {
		t.Fatalf("expected 1 answer in history, got %d", len(answers))
	}

	rec = doRequest(s, http.MethodDelete, "/api/documents/doc1/answers/"+answerID, nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = doRequest(s, http.MethodGet, "/api/documents/doc1/answers", nil, true)
	list = decodeBody(t, rec)
	answers, _ = list["answers"].([]any)
	if len(answers) != 0 {
		t.Errorf("expected empty history after delete, got %d", len(answers))
	}
}

func TestAskAnswer_EmptyRequest(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	rec := doRequest(s, http.MethodPost, "/api/documents/doc1/answers", strings.NewReader(`{}`), true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestLLMStats(t *testing.T) {
	s := newTestServer(t, &fakeClient{response: "An answer."})

	// Produce one sample.
	body := strings.NewReader(`{"query":"anything"}`)
	doRequest(s, http.MethodPost, "/api/documents/doc1/answers", body, true)

	rec := doRequest(s, http.MethodGet, "/api/stats/llm", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["model"] != "test-model" {
		t.Errorf("expected model test-model, got %v", out["model"])
	}
	stats, _ := out["stats"].(map[string]any)
	if stats == nil {
		t.Fatal("expected stats payload")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	put := strings.NewReader(`{"font_size":18,"theme":"dark","sidebar_tab":"answers"}`)
	rec := doRequest(s, http.MethodPut, "/api/settings", put, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodGet, "/api/settings", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["theme"] != "dark" {
		t.Errorf("expected theme dark, got %v", out["theme"])
	}
}

func TestDeleteDocument(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	rec := doRequest(s, http.MethodDelete, "/api/documents/doc1", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodGet, "/api/documents/doc1", nil, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestViewToggles(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	rec := doRequest(s, http.MethodPost, "/api/documents/doc1/view/sections/sec1/toggle", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if collapsed, _ := out["collapsed"].(bool); !collapsed {
		t.Error("first toggle should collapse")
	}

	rec = doRequest(s, http.MethodPost, "/api/documents/doc1/view/expand-all", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/api/documents/doc1/view/sections/sec1/toggle", nil, true)
	out = decodeBody(t, rec)
	if collapsed, _ := out["collapsed"].(bool); !collapsed {
		t.Error("toggle after expand-all should collapse again")
	}

	rec = doRequest(s, http.MethodPost, "/api/documents/doc1/view/answers/ans1/toggle", nil, true)
	out = decodeBody(t, rec)
	if collapsed, _ := out["collapsed"].(bool); !collapsed {
		t.Error("first answer toggle should collapse")
	}
}
