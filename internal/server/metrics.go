package server

import (
	"errors"

	"github.com/bjarke-xyz/portfolio/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	directoryOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_directory_operations_total",
		Help: "App directory operations by operation and result.",
	}, []string{"op", "result"})

	imageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_image_uploads_total",
		Help: "Image uploads by result.",
	}, []string{"result"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_auth_attempts_total",
		Help: "Sign in and sign up attempts by flow and result.",
	}, []string{"flow", "result"})

	liveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portfolio_live_feed_clients",
		Help: "Connected live directory feed clients.",
	})
)

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrAuth):
		return "rejected"
	}
	return "error"
}
