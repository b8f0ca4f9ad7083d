package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/Alexander-D-Karpov/photogallery/internal/models"
)

type ExifService struct{}

func NewExifService() *ExifService {
	return &ExifService{}
}

// Extract reads the capture attributes of the image at path. The bool is
// false when the file cannot be opened or carries no readable EXIF block;
// a present block with a missing tag leaves that field empty.
func (s *ExifService) Extract(path string) (models.ExifInfo, bool) {
	f, err := os.Open(path)
	if err != nil {
		return models.ExifInfo{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return models.ExifInfo{}, false
	}

	var info models.ExifInfo

	if tag, err := x.Get(exif.Model); err == nil {
		if v, err := tag.StringVal(); err == nil {
			info.CameraModel = cleanString(v)
		}
	}
	if tag, err := x.Get(exif.FocalLength); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil && denom != 0 {
			info.FocalLength = fmt.Sprintf("%.1f mm", float64(num)/float64(denom))
		}
	}
	if tag, err := x.Get(exif.ExposureTime); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil && denom != 0 {
			if num == 1 {
				info.ExposureTime = fmt.Sprintf("1/%d s", denom)
			} else {
				info.ExposureTime = fmt.Sprintf("%.1f s", float64(num)/float64(denom))
			}
		}
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if val, err := tag.Int(0); err == nil {
			info.ISO = strconv.Itoa(val)
		}
	}
	if tag, err := x.Get(exif.FNumber); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil && denom != 0 {
			info.Aperture = fmt.Sprintf("f/%.1f", float64(num)/float64(denom))
		}
	}

	return info, true
}

func cleanString(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}
