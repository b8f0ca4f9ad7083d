package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Alexander-D-Karpov/photogallery/internal/config"
	"github.com/Alexander-D-Karpov/photogallery/internal/objectstore"
	"github.com/Alexander-D-Karpov/photogallery/internal/repository"
	"github.com/Alexander-D-Karpov/photogallery/internal/services"
)

// app holds the wired dependencies shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	repo    repository.Repository
	store   *objectstore.Client
	signer  *services.URLSigner
	ingest  *services.IngestService
	catalog *services.CatalogService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := config.SetupLogger(cfg)

	store, err := objectstore.New(objectstore.Options{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx, logger); err != nil {
		return nil, err
	}

	previews, err := services.NewPreviewService(filepath.Join(cfg.TempDir, "previews"), cfg.PreviewFormat, cfg.PreviewQuality, cfg.PreviewMaxSize)
	if err != nil {
		return nil, err
	}

	repo, err := repository.Open(ctx, cfg.DatabaseURL, cfg.IsPostgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}

	signer := services.NewURLSigner(store, cfg.URLExpiry, logger)
	return &app{
		cfg:     cfg,
		logger:  logger,
		repo:    repo,
		store:   store,
		signer:  signer,
		ingest:  services.NewIngestService(repo, store, services.NewExifService(), previews, filepath.Join(cfg.TempDir, "uploads"), logger),
		catalog: services.NewCatalogService(repo, signer),
	}, nil
}

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.logger.Warn("close metadata store", "error", err)
	}
}
