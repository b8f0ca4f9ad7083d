package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexander-D-Karpov/photogallery/internal/models"
	"github.com/Alexander-D-Karpov/photogallery/internal/repository"
)

// serialRepo flags any overlapping writes.
type serialRepo struct {
	repository.Repository
	inflight   atomic.Int32
	overlapped atomic.Bool
}

func (r *serialRepo) enter() func() {
	if r.inflight.Add(1) > 1 {
		r.overlapped.Store(true)
	}
	return func() { r.inflight.Add(-1) }
}

func (r *serialRepo) CreatePhoto(ctx context.Context, p *models.Photo) error {
	defer r.enter()()
	return r.Repository.CreatePhoto(ctx, p)
}

func (r *serialRepo) CreateCollection(ctx context.Context, c models.Collection) error {
	defer r.enter()()
	return r.Repository.CreateCollection(ctx, c)
}

func (r *serialRepo) CreateTheme(ctx context.Context, t models.Theme) error {
	defer r.enter()()
	return r.Repository.CreateTheme(ctx, t)
}

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	dir := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func buildTree(t *testing.T) string {
	t.Helper()
	base := t.TempDir()

	forest := mkdir(t, base, "nature", "forest")
	writeExifJPEG(t, forest, "a.jpg", "Canon EOS R5")
	writeAlphaPNG(t, forest, "b.png")
	writeJPEG(t, forest, ".hidden.jpg")
	writeFile(t, forest, "notes.txt", []byte("shot list"))

	mkdir(t, base, "nature", "empty")

	night := mkdir(t, base, "cities", "night")
	writeJPEG(t, night, "c.jpg")
	writeCorrupt(t, night, "d.jpg")

	mkdir(t, base, ".git", "objects")
	return base
}

func newImporter(t *testing.T, workers int) (*ImportService, *serialRepo, *fakeStore) {
	t.Helper()
	repo := &serialRepo{Repository: newSQLiteRepo(t)}
	f := newIngestFixture(t, repo)
	return NewImportService(repo, f.ingest, workers, discardLogger()), repo, f.store
}

func TestImporter_Import(t *testing.T) {
	importer, repo, store := newImporter(t, 4)
	ctx := context.Background()

	sum, err := importer.Import(ctx, buildTree(t))
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Photos: 4, Collections: 2, Themes: 2}, sum)
	assert.False(t, repo.overlapped.Load())

	forest, err := repo.ListPhotos(ctx, repository.PhotoFilter{Theme: "nature", Collection: "forest"})
	require.NoError(t, err)
	require.Len(t, forest, 2)
	paths := []string{forest[0].Path, forest[1].Path}
	assert.ElementsMatch(t, []string{"nature/forest/a.jpg", "nature/forest/b.png"}, paths)

	_, ok := store.object("nature/forest/a.jpg")
	assert.True(t, ok)
	for _, k := range store.keys() {
		assert.NotContains(t, k, "hidden")
		assert.NotContains(t, k, "notes")
	}

	natureCols, err := repo.ListCollections(ctx, "nature")
	require.NoError(t, err)
	require.Len(t, natureCols, 1)
	assert.Equal(t, "forest", natureCols[0].Name)
	require.NotNil(t, natureCols[0].PreviewPath)
	assert.True(t, strings.HasPrefix(*natureCols[0].PreviewPath, "nature/forest/previews/"))

	previews := map[string]bool{}
	for _, p := range forest {
		if p.PreviewPath != nil {
			previews[*p.PreviewPath] = true
		}
	}
	assert.True(t, previews[*natureCols[0].PreviewPath])

	themes, err := repo.ListThemes(ctx)
	require.NoError(t, err)
	require.Len(t, themes, 2)
	for _, th := range themes {
		require.NotNil(t, th.PreviewPath, th.Name)
		assert.True(t, strings.HasPrefix(*th.PreviewPath, th.Name+"/"), th.Name)
	}
}

func TestImporter_CorruptFileStoredWithoutPreview(t *testing.T) {
	importer, repo, _ := newImporter(t, 2)
	ctx := context.Background()

	_, err := importer.Import(ctx, buildTree(t))
	require.NoError(t, err)

	night, err := repo.ListPhotos(ctx, repository.PhotoFilter{Theme: "cities", Collection: "night"})
	require.NoError(t, err)
	require.Len(t, night, 2)
	for _, p := range night {
		if p.Name == "d.jpg" {
			assert.Nil(t, p.PreviewPath)
		} else {
			assert.NotNil(t, p.PreviewPath)
		}
	}
}

func TestImporter_UploadFailuresAreCounted(t *testing.T) {
	importer, repo, store := newImporter(t, 3)
	store.putErr = func(key string) error {
		if strings.HasPrefix(key, "cities/") {
			return errors.New("access denied")
		}
		return nil
	}
	ctx := context.Background()

	sum, err := importer.Import(ctx, buildTree(t))
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Photos: 2, Collections: 1, Themes: 1, Failed: 2}, sum)

	themes, err := repo.ListThemes(ctx)
	require.NoError(t, err)
	require.Len(t, themes, 1)
	assert.Equal(t, "nature", themes[0].Name)
}

func TestImporter_MissingBaseDir(t *testing.T) {
	importer, _, _ := newImporter(t, 1)

	_, err := importer.Import(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestImporter_Cancelled(t *testing.T) {
	importer, _, _ := newImporter(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := importer.Import(ctx, buildTree(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, isImageFile("a.JPG"))
	assert.True(t, isImageFile("b.tiff"))
	assert.False(t, isImageFile("c.txt"))
	assert.False(t, isImageFile("noext"))
}
