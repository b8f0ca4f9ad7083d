package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Alexander-D-Karpov/photogallery/internal/models"
	"github.com/Alexander-D-Karpov/photogallery/internal/objectstore"
	"github.com/Alexander-D-Karpov/photogallery/internal/repository"
)

const testBucket = "photo-gallery"

type storedObject struct {
	data        []byte
	contentType string
}

// fakeStore keeps uploads in memory and signs links without a server.
type fakeStore struct {
	mu         sync.Mutex
	objects    map[string]storedObject
	putErr     func(key string) error
	presignErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]storedObject)}
}

func (f *fakeStore) PutFile(_ context.Context, key, path, contentType string) error {
	if f.putErr != nil {
		if err := f.putErr(key); err != nil {
			return err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = storedObject{data: data, contentType: contentType}
	return nil
}

func (f *fakeStore) PresignGet(_ context.Context, path string, expiry time.Duration) (*url.URL, error) {
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	key := objectstore.ObjectKey(testBucket, path)
	return url.Parse(fmt.Sprintf("http://minio.test/%s/%s?X-Amz-Expires=%d", testBucket, key, int(expiry.Seconds())))
}

func (f *fakeStore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys
}

func (f *fakeStore) object(key string) (storedObject, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.objects[key]
	return o, ok
}

// failingRepo rejects photo inserts.
type failingRepo struct {
	repository.Repository
}

func (failingRepo) CreatePhoto(context.Context, *models.Photo) error {
	return errors.New("disk full")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSQLiteRepo(t *testing.T) repository.Repository {
	t.Helper()
	repo, err := repository.NewSQLite(filepath.Join(t.TempDir(), "gallery.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

type ingestFixture struct {
	repo    repository.Repository
	store   *fakeStore
	ingest  *IngestService
	tempDir string
}

func newIngestFixture(t *testing.T, repo repository.Repository) *ingestFixture {
	t.Helper()
	if repo == nil {
		repo = newSQLiteRepo(t)
	}
	root := t.TempDir()
	previews, err := NewPreviewService(filepath.Join(root, "previews"), FormatWebP, 80, 0)
	require.NoError(t, err)
	previews.verifyDelay = 0

	store := newFakeStore()
	tempDir := filepath.Join(root, "uploads")
	return &ingestFixture{
		repo:    repo,
		store:   store,
		ingest:  NewIngestService(repo, store, NewExifService(), previews, tempDir, discardLogger()),
		tempDir: tempDir,
	}
}

func (f *ingestFixture) assertNoTempFiles(t *testing.T) {
	t.Helper()
	for _, dir := range []string{f.tempDir, f.ingest.previews.workDir} {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		require.NoError(t, err)
		require.Empty(t, entries, dir)
	}
}
