package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Alexander-D-Karpov/photogallery/internal/models"
	"github.com/Alexander-D-Karpov/photogallery/internal/repository"
)

// ImportSummary counts what an import wrote.
type ImportSummary struct {
	Photos      int
	Collections int
	Themes      int
	Failed      int
}

// ImportService loads a <theme>/<collection>/<file> tree into the catalog.
type ImportService struct {
	repo    repository.Repository
	ingest  *IngestService
	workers int
	logger  *slog.Logger
}

func NewImportService(repo repository.Repository, ingest *IngestService, workers int, logger *slog.Logger) *ImportService {
	if workers < 1 {
		workers = 1
	}
	return &ImportService{repo: repo, ingest: ingest, workers: workers, logger: logger.With("component", "importer")}
}

type prepared struct {
	photo *models.Photo
	file  string
	err   error
}

// Import walks baseDir. Files are stored by a pool of workers, while every
// metadata write happens on the calling goroutine. A collection row is added
// once its photos are in, a theme row once its collections are.
func (s *ImportService) Import(ctx context.Context, baseDir string) (ImportSummary, error) {
	var sum ImportSummary

	themes, err := listDirs(baseDir)
	if err != nil {
		return sum, fmt.Errorf("read %s: %w", baseDir, err)
	}

	for _, theme := range themes {
		collections, err := listDirs(filepath.Join(baseDir, theme))
		if err != nil {
			return sum, fmt.Errorf("read theme %s: %w", theme, err)
		}

		var collectionPreviews []*string
		for _, collection := range collections {
			if err := ctx.Err(); err != nil {
				return sum, err
			}

			previews, err := s.importCollection(ctx, filepath.Join(baseDir, theme, collection), theme, collection, &sum)
			if err != nil {
				return sum, err
			}
			if previews == nil {
				continue
			}

			preview := pickPreview(previews)
			c := models.Collection{ID: uuid.NewString(), Name: collection, Theme: theme, PreviewPath: preview, Status: models.StatusActive}
			if err := s.repo.CreateCollection(ctx, c); err != nil {
				return sum, fmt.Errorf("save collection %s/%s: %w", theme, collection, err)
			}
			sum.Collections++
			collectionPreviews = append(collectionPreviews, preview)
		}

		if collectionPreviews == nil {
			continue
		}
		t := models.Theme{ID: uuid.NewString(), Name: theme, PreviewPath: pickPreview(collectionPreviews), Status: models.StatusActive}
		if err := s.repo.CreateTheme(ctx, t); err != nil {
			return sum, fmt.Errorf("save theme %s: %w", theme, err)
		}
		sum.Themes++
		s.logger.Info("theme imported", "theme", theme, "collections", len(collectionPreviews))
	}

	return sum, nil
}

// importCollection stores every image of one collection directory and
// returns the preview paths of the photos it recorded. The slice is nil when
// nothing was recorded.
func (s *ImportService) importCollection(ctx context.Context, dir, theme, collection string, sum *ImportSummary) ([]*string, error) {
	files, err := listImages(dir)
	if err != nil {
		return nil, fmt.Errorf("read collection %s/%s: %w", theme, collection, err)
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan prepared)
	g, gctx := errgroup.WithContext(wctx)
	g.SetLimit(s.workers)

	go func() {
		defer close(results)
		for _, name := range files {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				photo, err := s.ingest.Prepare(gctx, Asset{
					ID:         uuid.NewString(),
					Name:       name,
					LocalPath:  filepath.Join(dir, name),
					Key:        path.Join(theme, collection, name),
					Theme:      theme,
					Collection: collection,
				})
				select {
				case results <- prepared{photo: photo, file: name, err: err}:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		_ = g.Wait()
	}()

	var previews []*string
	var writeErr error
	for r := range results {
		if writeErr != nil {
			continue
		}
		if r.err != nil {
			sum.Failed++
			ingestTotal.WithLabelValues("failed").Inc()
			s.logger.Warn("import failed", "file", path.Join(theme, collection, r.file), "error", r.err)
			continue
		}
		if err := s.repo.CreatePhoto(ctx, r.photo); err != nil {
			writeErr = fmt.Errorf("save photo %s: %w", r.photo.Path, err)
			cancel()
			continue
		}
		sum.Photos++
		ingestTotal.WithLabelValues("ok").Inc()
		previews = append(previews, r.photo.PreviewPath)
	}
	if writeErr != nil {
		return nil, writeErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("collection imported", "theme", theme, "collection", collection, "photos", len(previews))
	return previews, nil
}

// pickPreview chooses one of the non-nil previews at random.
func pickPreview(previews []*string) *string {
	var present []*string
	for _, p := range previews {
		if p != nil {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return present[rand.IntN(len(present))]
}

func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") && isImageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif", ".tif", ".tiff":
		return true
	}
	return false
}
