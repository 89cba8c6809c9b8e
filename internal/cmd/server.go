package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/bjarke-xyz/portfolio/internal/config"
	"github.com/bjarke-xyz/portfolio/internal/repository"
	serverPkg "github.com/bjarke-xyz/portfolio/internal/server"
	"github.com/bjarke-xyz/portfolio/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"
)

func ServerCmd(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger("portfolio", cfg.Env)

	var opts []option.ClientOption
	if cfg.GoogleCredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.GoogleCredentialsJSON)))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return fmt.Errorf("error initializing app: %w", err)
	}
	verifier, err := app.Auth(ctx)
	if err != nil {
		return fmt.Errorf("error getting firebase auth: %w", err)
	}
	storageClient, err := app.Storage(ctx)
	if err != nil {
		return fmt.Errorf("error getting firebase storage: %w", err)
	}
	bucket, err := storageClient.Bucket(cfg.StorageBucket)
	if err != nil {
		return fmt.Errorf("error getting storage bucket: %w", err)
	}
	images := service.NewCloudStorage(bucket, cfg.StorageBucket, cfg.FirebaseProjectID)
	if err := images.EnsureBucket(ctx); err != nil {
		// uploads fail until the bucket exists; the rest of the site works
		logger.Error("failed to ensure storage bucket", "error", err, "bucket", cfg.StorageBucket)
	}
	authClient := service.NewFirebaseAuthRestClient(cfg.FirebaseWebAPIKey, cfg.FirebaseProjectID)

	pool, err := newDatabasePool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
	if err != nil {
		return fmt.Errorf("error creating db pool: %w", err)
	}
	defer pool.Close()

	server, err := serverPkg.NewServer(ctx, logger, serverPkg.Options{
		Verifier:      verifier,
		AuthClient:    authClient,
		Apps:          repository.NewPostgresApp(pool),
		Images:        images,
		ImageMaxBytes: cfg.ImageMaxBytes,
		SecureCookies: cfg.SecureCookies,
	})
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	srv := server.Server(cfg.Port)

	// metrics
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.MetricsPort), mux)
		logger.Error("metrics server stopped", "error", err)
	}()

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
		}
	}()
	logger.Info("started server", slog.Int("port", cfg.Port), slog.Int("metricsPort", cfg.MetricsPort))
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
