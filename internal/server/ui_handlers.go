package server

import (
	"encoding/json"
	"net/http"

	"github.com/cwbudde/shgo/internal/objective"
)

// indexResponse is the root endpoint's payload: enough for a curl user or a
// thin client to discover the API without a bundled UI.
type indexResponse struct {
	Service            string   `json:"service"`
	AvailableObjectives []string `json:"availableObjectives"`
	Jobs               []*Job   `json:"jobs"`
}

// handleIndex handles GET /. There is no bundled HTML front end; it returns
// a JSON summary that points callers at /api/v1/jobs.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(indexResponse{
		Service:             "shgo analysis server",
		AvailableObjectives: objective.Names(),
		Jobs:                s.jobManager.ListJobs(),
	})
}
