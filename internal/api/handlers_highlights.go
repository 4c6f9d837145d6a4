package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lumiread/lumiread/internal/lumidoc"
)

// handleGetHighlights returns user highlights, for one span when span_id is
// given or for every highlighted span otherwise.
func (s *Server) handleGetHighlights(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	if spanID := r.URL.Query().Get("span_id"); spanID != "" {
		highlights := sess.UserHighlights(spanID)
		if highlights == nil {
			highlights = []lumidoc.Highlight{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"highlights": highlights})
		return
	}

	all := map[string][]lumidoc.Highlight{}
	for _, spanID := range sess.HighlightedSpanIDs() {
		all[spanID] = sess.UserHighlights(spanID)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"highlights": all})
}

// handleAddHighlight adds a user highlight on a span.
func (s *Server) handleAddHighlight(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	var h lumidoc.Highlight
	if err := json.NewDecoder(r.Body).Decode(&h); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if h.SpanID == "" {
		jsonError(w, "span_id is required", http.StatusBadRequest)
		return
	}
	if h.Color == "" {
		h.Color = "yellow"
	}

	if !sess.AddUserHighlight(h) {
		jsonError(w, "span not found: "+h.SpanID, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(h)
}

// handleRemoveHighlight removes all user highlights on one span. Removing
// from a span with no highlights is a no-op, not an error.
func (s *Server) handleRemoveHighlight(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	spanID := chi.URLParam(r, "spanID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	sess.RemoveUserHighlights(spanID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"removed": spanID})
}

// handleClearHighlights drops every user highlight on the document.
func (s *Server) handleClearHighlights(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	sess.ClearUserHighlights()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"cleared": true})
}

// handleToggleImageHighlight flips the highlight state of an image and
// reports the new state.
func (s *Server) handleToggleImageHighlight(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	sess, ok := s.session(w, docID)
	if !ok {
		return
	}

	var body struct {
		ImageStoragePath string `json:"image_storage_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.ImageStoragePath == "" {
		jsonError(w, "image_storage_path is required", http.StatusBadRequest)
		return
	}

	highlighted := sess.ToggleImageHighlight(body.ImageStoragePath)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"image_storage_path": body.ImageStoragePath,
		"highlighted":        highlighted,
	})
}
