package models

import (
	"fmt"
	"time"
)

// UnknownExif is the value reported for an EXIF field the image did not carry.
const UnknownExif = "Unknown"

// DateLayout is how timestamps are rendered in API responses.
const DateLayout = "2006-01-02 15:04:05"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus accepts "active" and "inactive". An empty string means active.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "", StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	default:
		return "", fmt.Errorf("invalid status %q", s)
	}
}

type Theme struct {
	ID          string
	Name        string
	PreviewPath *string
	Status      Status
}

type Collection struct {
	ID          string
	Name        string
	Theme       string
	PreviewPath *string
	Status      Status
}

type Photo struct {
	ID          string
	Name        string
	Path        string
	DateAdded   time.Time
	Theme       string
	Collection  string
	Favourite   bool
	Exif        ExifInfo
	PreviewPath *string
	Status      Status
}

// ExifInfo holds the capture attributes kept for every photo. An empty field
// means the attribute is absent.
type ExifInfo struct {
	CameraModel  string `json:"camera_model"`
	FocalLength  string `json:"focal_length"`
	ExposureTime string `json:"exposure_time"`
	ISO          string `json:"iso"`
	Aperture     string `json:"aperture"`
}

// WithDefaults returns a copy where every absent field reads UnknownExif.
func (e ExifInfo) WithDefaults() ExifInfo {
	for _, f := range []*string{&e.CameraModel, &e.FocalLength, &e.ExposureTime, &e.ISO, &e.Aperture} {
		if *f == "" {
			*f = UnknownExif
		}
	}
	return e
}

// PhotoUpdate carries the editable attributes of a photo.
type PhotoUpdate struct {
	Name       string `json:"name"`
	Theme      string `json:"theme"`
	Collection string `json:"collection"`
	Favourite  bool   `json:"favourite"`
	ExifInfo
}

type ThemeView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	PreviewImage *string `json:"preview_image"`
	Status       Status  `json:"status"`
}

type CollectionView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Theme        string  `json:"theme"`
	PreviewImage *string `json:"preview_image"`
	Status       Status  `json:"status"`
}

type PhotoView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DateAdded  string `json:"date_added"`
	Theme      string `json:"theme"`
	Collection string `json:"collection"`
	Favourite  bool   `json:"favourite"`
	ExifInfo
	PreviewImage *string `json:"preview_image"`
	Status       Status  `json:"status"`
}
