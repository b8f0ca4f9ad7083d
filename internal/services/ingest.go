package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alexander-D-Karpov/photogallery/internal/models"
	"github.com/Alexander-D-Karpov/photogallery/internal/repository"
)

var (
	ErrStage          = errors.New("failed to stage upload")
	ErrUploadOriginal = errors.New("failed to store original")
	ErrPersist        = errors.New("failed to save photo record")
)

// Upload is one incoming photo.
type Upload struct {
	Filename   string
	Reader     io.Reader
	Theme      string
	Collection string
}

// Asset is a photo already on local disk, ready to be stored.
type Asset struct {
	ID         string
	Name       string
	LocalPath  string
	Key        string
	Theme      string
	Collection string
}

type IngestService struct {
	repo     repository.Repository
	store    ObjectStore
	exif     *ExifService
	previews *PreviewService
	tempDir  string
	logger   *slog.Logger
	now      func() time.Time
}

func NewIngestService(repo repository.Repository, store ObjectStore, exif *ExifService, previews *PreviewService, tempDir string, logger *slog.Logger) *IngestService {
	return &IngestService{
		repo:     repo,
		store:    store,
		exif:     exif,
		previews: previews,
		tempDir:  tempDir,
		logger:   logger.With("component", "ingest"),
		now:      time.Now,
	}
}

// Upload stages the payload, stores it with its preview and records it.
// The returned id identifies the new photo. Errors wrap ErrInvalidInput,
// ErrStage, ErrUploadOriginal or ErrPersist; preview problems are not errors.
func (s *IngestService) Upload(ctx context.Context, u Upload) (string, error) {
	if err := checkSegment("theme", u.Theme); err != nil {
		return "", err
	}
	if err := checkSegment("collection", u.Collection); err != nil {
		return "", err
	}

	id := uuid.NewString()
	fileName := id + strings.ToLower(filepath.Ext(u.Filename))

	staged, err := s.stage(fileName, u.Reader)
	if err != nil {
		ingestTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: %v", ErrStage, err)
	}

	photo, err := s.Prepare(ctx, Asset{
		ID:         id,
		Name:       u.Filename,
		LocalPath:  staged,
		Key:        path.Join(u.Theme, u.Collection, fileName),
		Theme:      u.Theme,
		Collection: u.Collection,
	})
	s.cleanup(staged)
	if err != nil {
		ingestTotal.WithLabelValues("failed").Inc()
		return "", err
	}

	if err := s.repo.CreatePhoto(ctx, photo); err != nil {
		ingestTotal.WithLabelValues("failed").Inc()
		s.logger.Error("photo stored but not recorded", "id", id, "key", photo.Path, "error", err)
		return "", fmt.Errorf("%w: %v", ErrPersist, err)
	}

	ingestTotal.WithLabelValues("ok").Inc()
	s.logger.Info("photo uploaded", "id", id, "key", photo.Path, "preview", photo.PreviewPath != nil)
	return id, nil
}

func (s *IngestService) stage(fileName string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return "", err
	}
	staged := filepath.Join(s.tempDir, fileName)

	f, err := os.Create(staged)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(staged)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(staged)
		return "", err
	}
	return staged, nil
}

// Prepare stores the original and its preview and returns the photo record
// to insert. Only a failed original upload is an error.
func (s *IngestService) Prepare(ctx context.Context, a Asset) (*models.Photo, error) {
	if err := s.store.PutFile(ctx, a.Key, a.LocalPath, contentType(a.LocalPath)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadOriginal, err)
	}

	exifInfo, _ := s.exif.Extract(a.LocalPath)

	return &models.Photo{
		ID:          a.ID,
		Name:        a.Name,
		Path:        a.Key,
		DateAdded:   s.now().UTC().Truncate(time.Second),
		Theme:       a.Theme,
		Collection:  a.Collection,
		Exif:        exifInfo,
		PreviewPath: s.preview(ctx, a),
		Status:      models.StatusActive,
	}, nil
}

func (s *IngestService) preview(ctx context.Context, a Asset) *string {
	local, err := s.previews.Generate(a.LocalPath, a.ID)
	if err != nil {
		previewFailures.Inc()
		s.logger.Warn("preview generation failed", "id", a.ID, "error", err)
		return nil
	}
	defer s.cleanup(local)

	key := path.Join(a.Theme, a.Collection, "previews", a.ID+s.previews.Ext())
	if err := s.store.PutFile(ctx, key, local, s.previews.ContentType()); err != nil {
		previewFailures.Inc()
		s.logger.Warn("preview upload failed", "id", a.ID, "key", key, "error", err)
		return nil
	}
	return &key
}

func (s *IngestService) cleanup(p string) {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to remove temp file", "path", p, "error", err)
	}
}

func contentType(p string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(p))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
