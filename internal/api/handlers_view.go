package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleToggleSection flips one section's collapse state and reports it.
func (s *Server) handleToggleSection(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sectionID := chi.URLParam(r, "sectionID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	collapsed := sess.ToggleSection(sectionID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"section_id": sectionID,
		"collapsed":  collapsed,
	})
}

func (s *Server) handleCollapseAll(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	sess.CollapseAllSections()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"collapsed": true})
}

func (s *Server) handleExpandAll(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	sess.ExpandAllSections()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"collapsed": false})
}

// handleToggleAnswer flips one answer's collapse state in the sidebar.
func (s *Server) handleToggleAnswer(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	answerID := chi.URLParam(r, "answerID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	collapsed := sess.ToggleAnswerCollapsed(answerID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"answer_id": answerID,
		"collapsed": collapsed,
	})
}
