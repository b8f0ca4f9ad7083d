package services

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	FormatWebP = "webp"
	FormatJPEG = "jpeg"
)

const (
	verifyAttempts = 3
	verifyDelay    = 200 * time.Millisecond
)

var ErrPreviewMissing = errors.New("preview file missing after write")

type PreviewService struct {
	workDir     string
	format      string
	quality     int
	maxSize     int
	verifyDelay time.Duration
}

// NewPreviewService writes previews into workDir. maxSize bounds the longer
// side in pixels; zero keeps the source dimensions.
func NewPreviewService(workDir, format string, quality, maxSize int) (*PreviewService, error) {
	if format != FormatWebP && format != FormatJPEG {
		return nil, fmt.Errorf("unsupported preview format %q", format)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &PreviewService{
		workDir:     workDir,
		format:      format,
		quality:     quality,
		maxSize:     maxSize,
		verifyDelay: verifyDelay,
	}, nil
}

func (s *PreviewService) Ext() string {
	if s.format == FormatJPEG {
		return ".jpg"
	}
	return ".webp"
}

func (s *PreviewService) ContentType() string {
	if s.format == FormatJPEG {
		return "image/jpeg"
	}
	return "image/webp"
}

// Generate decodes srcPath and writes its preview as <workDir>/<name><ext>.
// The caller owns the returned file.
func (s *PreviewService) Generate(srcPath, name string) (string, error) {
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", filepath.Base(srcPath), err)
	}

	if needsFlatten(img) {
		img = flatten(img)
	}
	if s.maxSize > 0 {
		b := img.Bounds()
		if b.Dx() > s.maxSize || b.Dy() > s.maxSize {
			img = imaging.Fit(img, s.maxSize, s.maxSize, imaging.Lanczos)
		}
	}

	dst := filepath.Join(s.workDir, name+s.Ext())
	if err := s.write(dst, img); err != nil {
		os.Remove(dst)
		return "", err
	}
	if err := s.verify(dst); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

func (s *PreviewService) write(dst string, img image.Image) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := s.encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	return f.Close()
}

func (s *PreviewService) encode(w io.Writer, img image.Image) error {
	if s.format == FormatJPEG {
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(s.quality))
	}
	return webp.Encode(w, img, &webp.Options{Quality: float32(s.quality)})
}

// verify waits for the written file to show up with a non-zero size.
func (s *PreviewService) verify(path string) error {
	for attempt := 1; attempt <= verifyAttempts; attempt++ {
		if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
			return nil
		}
		if attempt < verifyAttempts {
			time.Sleep(s.verifyDelay)
		}
	}
	return fmt.Errorf("%w: %s", ErrPreviewMissing, filepath.Base(path))
}

func needsFlatten(img image.Image) bool {
	if _, ok := img.(*image.Paletted); ok {
		return true
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

// flatten composites img over an opaque white canvas of the same size.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
