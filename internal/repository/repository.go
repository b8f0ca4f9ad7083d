// Package repository is the metadata store: themes, collections and photos
// keyed by identifier, each carrying a soft-delete status.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alexander-D-Karpov/photogallery/internal/database"
	"github.com/Alexander-D-Karpov/photogallery/internal/models"
)

var ErrNotFound = errors.New("record not found")

// PhotoFilter narrows ListPhotos. Listings always return active photos only.
type PhotoFilter struct {
	Theme          string
	Collection     string
	FavouritesOnly bool
}

type Repository interface {
	ListThemes(ctx context.Context) ([]models.Theme, error)
	CreateTheme(ctx context.Context, theme models.Theme) error
	UpdateTheme(ctx context.Context, theme models.Theme) error
	SetThemeStatus(ctx context.Context, id string, status models.Status) error

	// ListCollections returns active collections, limited to one theme when
	// theme is not empty.
	ListCollections(ctx context.Context, theme string) ([]models.Collection, error)
	CreateCollection(ctx context.Context, collection models.Collection) error
	UpdateCollection(ctx context.Context, collection models.Collection) error
	SetCollectionStatus(ctx context.Context, id string, status models.Status) error

	ListPhotos(ctx context.Context, filter PhotoFilter) ([]models.Photo, error)
	// GetPhoto looks a photo up by id regardless of its status.
	GetPhoto(ctx context.Context, id string) (*models.Photo, error)
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	UpdatePhoto(ctx context.Context, id string, update models.PhotoUpdate) error
	SetFavourite(ctx context.Context, id string, favourite bool) error
	SetPhotoStatus(ctx context.Context, id string, status models.Status) error

	Ping(ctx context.Context) error
	Close() error
}

// Open picks the backend from the connection string: postgres:// URLs go to
// PostgreSQL, anything else is treated as a SQLite database file.
func Open(ctx context.Context, databaseURL string, isPostgres bool, logger *slog.Logger) (Repository, error) {
	if !isPostgres {
		repo, err := NewSQLite(databaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("metadata store ready", "backend", "sqlite", "path", databaseURL)
		return repo, nil
	}

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("metadata store ready", "backend", "postgres")
	return NewPostgres(db), nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
