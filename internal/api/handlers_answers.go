package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lumiread/lumiread/internal/lumidoc"
)

// handleAskAnswer runs an answer request against the loaded document and
// appends the result to the session's answer history.
func (s *Server) handleAskAnswer(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	var req lumidoc.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Query == "" && req.Highlight == "" && req.Image == nil {
		jsonError(w, "request needs a query, a highlight, or an image", http.StatusBadRequest)
		return
	}

	ans, err := s.answers.Answer(r.Context(), sess.Document(), sess.Index().SpanIDs(), &req)
	if err != nil {
		jsonError(w, "answer failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	sess.AddAnswer(*ans)
	if err := s.history.AppendAnswer(docID, *ans); err != nil {
		s.log.Warn("failed to persist answer", "doc_id", docID, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ans)
}

// handleListAnswers returns the answer history for a document.
func (s *Server) handleListAnswers(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":  docID,
		"answers": sess.Answers(),
	})
}

// handleDeleteAnswer removes one answer from the session and rewrites the
// persisted history to match.
func (s *Server) handleDeleteAnswer(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	answerID := chi.URLParam(r, "answerID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	sess.RemoveAnswer(answerID)
	if err := s.history.SaveAnswers(docID, sess.Answers()); err != nil {
		s.log.Warn("failed to persist answer history", "doc_id", docID, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": answerID})
}
