package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/voyager/internal/domain"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSearch handles POST /api/search. A structurally valid query always
// gets a 200: adapter failures surface inside the response body as per-source
// completion percentages and diagnostics, never as an HTTP error.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query domain.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := s.engine.Search(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleQuota handles GET /api/system/quota
func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	used, limit, err := s.tracker.Usage()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read quota: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"used":      used,
		"cap":       limit,
		"remaining": limit - used,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
