package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/bjarke-xyz/portfolio/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

func jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusFor maps the error kinds to http status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUpload), errors.Is(err, domain.ErrBackend):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Toast keys travel in the query string; only known keys are shown so a
// crafted link cannot put arbitrary text on the page.
var (
	errorToasts = map[string]string{
		"app_not_found": "App not found",
		"app_load":      "Failed to load app",
	}
	noticeToasts = map[string]string{
		"created": "App created",
		"updated": "App updated",
		"deleted": "App deleted",
	}
)

func queryErrors(r *http.Request) []string {
	msg, ok := errorToasts[r.URL.Query().Get("error")]
	if !ok {
		return nil
	}
	return []string{msg}
}

func queryNotice(r *http.Request) string {
	return noticeToasts[r.URL.Query().Get("notice")]
}

// adminListPath is the admin list with a one-off notification.
func adminListPath(notice string) string {
	if notice == "" {
		return "/admin/"
	}
	return "/admin/?" + url.Values{"notice": {notice}}.Encode()
}

func errorQuery(key string) string {
	return url.Values{"error": {key}}.Encode()
}
