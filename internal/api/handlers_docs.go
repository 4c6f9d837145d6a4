package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lumiread/lumiread/internal/lumidoc"
	"github.com/lumiread/lumiread/internal/pipeline"
)

// handleListDocuments lists every loaded document.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	var docs []map[string]any
	for _, docID := range s.sessions.DocIDs() {
		sess, ok := s.sessions.Get(docID)
		if !ok {
			continue
		}
		docs = append(docs, map[string]any{
			"doc_id": docID,
			"title":  sess.Document().Title(),
		})
	}
	if docs == nil {
		docs = []map[string]any{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": docs})
}

// handleGetDocument returns the full parsed document.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":   docID,
		"document": sess.Document(),
	})
}

// handleDeleteDocument unloads a document, releases its dedup hash, and
// removes its persisted answer history.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	hash := pipeline.DocContentHash(sess.Document())
	s.sessions.Delete(docID)
	s.orchestrator.ReleaseHash(hash)

	if err := s.history.DeleteAnswers(docID); err != nil {
		s.log.Warn("failed to delete answer history", "doc_id", docID, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": docID})
}

// handleConcepts returns the key concepts extracted at import time.
func (s *Server) handleConcepts(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	concepts := sess.Document().Concepts
	if concepts == nil {
		concepts = []lumidoc.Concept{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":   docID,
		"concepts": concepts,
	})
}

// handleSummaries returns the per-section summaries produced at import time.
func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":    docID,
		"summaries": sess.Summaries(),
	})
}
