package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alexander-D-Karpov/photogallery/internal/models"
)

func TestExifService_Extract(t *testing.T) {
	dir := t.TempDir()
	svc := NewExifService()

	info, ok := svc.Extract(writeExifJPEG(t, dir, "r5.jpg", "Canon EOS R5"))
	assert.True(t, ok)
	assert.Equal(t, models.ExifInfo{
		CameraModel:  "Canon EOS R5",
		FocalLength:  "50.0 mm",
		ExposureTime: "1/250 s",
		ISO:          "100",
		Aperture:     "f/2.8",
	}, info)
}

func TestExifService_ExtractLeavesMissingTagsEmpty(t *testing.T) {
	info, ok := NewExifService().Extract(writeModelOnlyJPEG(t, t.TempDir(), "m.jpg", "Canon EOS R5"))
	assert.True(t, ok)
	assert.Equal(t, models.ExifInfo{CameraModel: "Canon EOS R5"}, info)
}

func TestExifService_ExtractWithoutExif(t *testing.T) {
	dir := t.TempDir()
	svc := NewExifService()

	cases := map[string]string{
		"plain jpeg": writeJPEG(t, dir, "plain.jpg"),
		"png":        writeAlphaPNG(t, dir, "alpha.png"),
		"corrupt":    writeCorrupt(t, dir, "broken.jpg"),
		"missing":    filepath.Join(dir, "nope.jpg"),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			info, ok := svc.Extract(path)
			assert.False(t, ok)
			assert.Equal(t, models.ExifInfo{}, info)
		})
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "NIKON Z 6", cleanString("NIKON Z 6 \x00\x00"))
}
