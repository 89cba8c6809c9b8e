package server

import (
	"fmt"
	"net/http"

	"github.com/bjarke-xyz/portfolio/internal/domain"
)

// handleApiMetadata serves the full directory as JSON, newest first.
func (s *server) handleApiMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, fmt.Sprintf("Method %s Not Allowed", r.Method), http.StatusMethodNotAllowed)
		return
	}
	apps, err := s.directory.ListApps(r.Context())
	directoryOps.WithLabelValues("list", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Error("error listing apps for metadata", "error", err)
		jsonResponse(w, http.StatusInternalServerError, errorBody{Error: domain.Message(err)})
		return
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	jsonResponse(w, http.StatusOK, apps)
}
