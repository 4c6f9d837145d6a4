package api

import (
	"encoding/json"
	"net/http"

	"github.com/lumiread/lumiread/internal/history"
)

// handleGetSettings returns the persisted reader settings.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.history.LoadSettings()
	if err != nil {
		jsonError(w, "failed to load settings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

// handlePutSettings replaces the persisted reader settings.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings history.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.history.SaveSettings(settings); err != nil {
		jsonError(w, "failed to save settings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}
