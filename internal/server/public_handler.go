package server

import (
	"io"
	"net/http"

	"github.com/bjarke-xyz/portfolio/internal/server/html"
)

// handleGetIndex is the public listing. A failing backend shows an empty
// grid rather than an error page.
func (s *server) handleGetIndex(w http.ResponseWriter, r *http.Request) {
	b := html.Base{Title: "Portfolio"}
	if session, ok := s.currentSession(w, r); ok {
		b.Session = &session
	}
	apps, err := s.directory.ListApps(r.Context())
	directoryOps.WithLabelValues("list", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Error("error listing apps for index", "error", err)
		apps = nil
	}
	s.render(w, http.StatusOK, func(wr io.Writer) error {
		return html.IndexPage(wr, html.IndexParams{Base: b, Apps: apps})
	})
}
