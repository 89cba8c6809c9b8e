package server

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/bjarke-xyz/portfolio/internal/domain"
	"github.com/bjarke-xyz/portfolio/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFiles embed.FS

type server struct {
	logger *slog.Logger

	verifier   TokenVerifier
	authClient PasswordAuth
	// isTokenExpired decides whether a failed verification may be refreshed.
	isTokenExpired func(error) bool

	directory *service.Directory
	uploader  *service.ImageUploader
	broker    *DirectoryBroker

	imageMaxBytes int64
	secureCookies bool

	staticFilesFs fs.FS
}

type Options struct {
	Verifier      TokenVerifier
	AuthClient    PasswordAuth
	Apps          domain.ApplicationRepository
	Images        service.ObjectStore
	ImageMaxBytes int64
	SecureCookies bool
}

// NewServer wires the directory and uploader around the given backends.
// The live feed broker runs until ctx is done.
func NewServer(ctx context.Context, logger *slog.Logger, opts Options) (*server, error) {
	staticFilesFs, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}
	if opts.ImageMaxBytes <= 0 {
		return nil, fmt.Errorf("image size limit must be positive")
	}
	broker := NewDirectoryBroker(logger)
	go broker.Listen(ctx)
	return &server{
		logger:         logger,
		verifier:       opts.Verifier,
		authClient:     opts.AuthClient,
		isTokenExpired: auth.IsIDTokenExpired,
		directory:      service.NewDirectory(opts.Apps, broker),
		uploader:       service.NewImageUploader(opts.Images, opts.ImageMaxBytes),
		broker:         broker,
		imageMaxBytes:  opts.ImageMaxBytes,
		secureCookies:  opts.SecureCookies,
		staticFilesFs:  staticFilesFs,
	}, nil
}

func (s *server) Server(port int) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.routes(),
	}
}

func (s *server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.staticFilesFs))))
	r.Get("/up", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "up!")
	})

	r.Get("/", s.handleGetIndex)
	r.HandleFunc("/api/metadata", s.handleApiMetadata)
	r.Get("/ws/apps", s.handleLiveApps)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", s.handleGetLogin)
		r.Post("/login", s.handleLogin)
		r.Get("/register", s.handleGetRegister)
		r.Post("/register", s.handleRegister)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.sessionGate)
			r.Get("/", s.handleGetAdmin)

			r.Get("/new", s.handleGetNewApp)
			r.Post("/new", s.handlePostNewApp)
			r.Get("/edit/{app-id}", s.handleGetEditApp)
			r.Post("/edit/{app-id}", s.handlePostEditApp)
			r.Post("/app/{app-id}/delete", s.handleDeleteApp)

			r.Post("/upload", s.handleUpload)
		})
	})
	return r
}

// render buffers the page so a template failure can still become a 500.
func (s *server) render(w http.ResponseWriter, status int, page func(io.Writer) error) {
	var buf bytes.Buffer
	if err := page(&buf); err != nil {
		s.logger.Error("failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
