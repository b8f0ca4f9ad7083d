package services

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPreviewService(t *testing.T, format string, maxSize int) *PreviewService {
	t.Helper()
	svc, err := NewPreviewService(filepath.Join(t.TempDir(), "previews"), format, 80, maxSize)
	require.NoError(t, err)
	svc.verifyDelay = 0
	return svc
}

func readWebP(t *testing.T, path string) image.Image {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))

	img, err := webp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestPreviewService_WebP(t *testing.T) {
	src := t.TempDir()
	svc := newTestPreviewService(t, FormatWebP, 0)

	sources := map[string]string{
		"jpeg":    writeJPEG(t, src, "photo.jpg"),
		"alpha":   writeAlphaPNG(t, src, "alpha.png"),
		"palette": writePalettePNG(t, src, "palette.png"),
	}
	for name, path := range sources {
		t.Run(name, func(t *testing.T) {
			out, err := svc.Generate(path, name)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(svc.workDir, name+".webp"), out)

			srcImg, err := imaging.Open(path)
			require.NoError(t, err)
			img := readWebP(t, out)
			assert.Equal(t, srcImg.Bounds().Size(), img.Bounds().Size())
		})
	}
}

func TestPreviewService_AlphaFlattenedOntoWhite(t *testing.T) {
	src := t.TempDir()
	svc := newTestPreviewService(t, FormatWebP, 0)

	out, err := svc.Generate(writeAlphaPNG(t, src, "alpha.png"), "alpha")
	require.NoError(t, err)

	img := readWebP(t, out)
	// Column 0 is fully transparent in the source.
	r, g, b, a := img.At(0, 15).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.Greater(t, r>>8, uint32(230))
	assert.Greater(t, g>>8, uint32(230))
	assert.Greater(t, b>>8, uint32(230))
}

func TestPreviewService_JPEG(t *testing.T) {
	src := t.TempDir()
	svc := newTestPreviewService(t, FormatJPEG, 0)

	out, err := svc.Generate(writeAlphaPNG(t, src, "alpha.png"), "id-1")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(out))
	assert.Equal(t, "image/jpeg", svc.ContentType())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])
}

func TestPreviewService_MaxSize(t *testing.T) {
	src := t.TempDir()
	svc := newTestPreviewService(t, FormatWebP, 16)

	out, err := svc.Generate(writeJPEG(t, src, "photo.jpg"), "small")
	require.NoError(t, err)

	img := readWebP(t, out)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 12, img.Bounds().Dy())
}

func TestPreviewService_CorruptInput(t *testing.T) {
	src := t.TempDir()
	svc := newTestPreviewService(t, FormatWebP, 0)

	_, err := svc.Generate(writeCorrupt(t, src, "broken.jpg"), "broken")
	require.Error(t, err)

	entries, err := os.ReadDir(svc.workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewPreviewService_RejectsUnknownFormat(t *testing.T) {
	_, err := NewPreviewService(t.TempDir(), "gif", 80, 0)
	assert.Error(t, err)
}

func TestPreviewService_Verify(t *testing.T) {
	svc := newTestPreviewService(t, FormatWebP, 0)

	empty := filepath.Join(svc.workDir, "empty.webp")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.ErrorIs(t, svc.verify(empty), ErrPreviewMissing)
	assert.ErrorIs(t, svc.verify(filepath.Join(svc.workDir, "absent.webp")), ErrPreviewMissing)
}
