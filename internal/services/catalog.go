package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Alexander-D-Karpov/photogallery/internal/models"
	"github.com/Alexander-D-Karpov/photogallery/internal/repository"
)

var ErrInvalidInput = errors.New("invalid input")

// ThemeInput is the writable part of a theme.
type ThemeInput struct {
	Name         string  `json:"name"`
	PreviewImage *string `json:"preview_image"`
	Status       string  `json:"status"`
}

func (in ThemeInput) validate() (models.Status, error) {
	if in.Name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return parseStatus(in.Status)
}

// CollectionInput is the writable part of a collection.
type CollectionInput struct {
	Name         string  `json:"name"`
	Theme        string  `json:"theme"`
	PreviewImage *string `json:"preview_image"`
	Status       string  `json:"status"`
}

func (in CollectionInput) validate() (models.Status, error) {
	if in.Name == "" || in.Theme == "" {
		return "", fmt.Errorf("%w: name and theme are required", ErrInvalidInput)
	}
	return parseStatus(in.Status)
}

// PhotoInput replaces every editable attribute of a photo, so each key has
// to be present. EXIF values may be empty, which clears them.
type PhotoInput struct {
	Name         *string `json:"name"`
	Theme        *string `json:"theme"`
	Collection   *string `json:"collection"`
	Favourite    *bool   `json:"favourite"`
	CameraModel  *string `json:"camera_model"`
	FocalLength  *string `json:"focal_length"`
	ExposureTime *string `json:"exposure_time"`
	ISO          *string `json:"iso"`
	Aperture     *string `json:"aperture"`
}

func (in PhotoInput) validate() (models.PhotoUpdate, error) {
	fields := []struct {
		key      string
		val      *string
		nonEmpty bool
	}{
		{"name", in.Name, true},
		{"theme", in.Theme, true},
		{"collection", in.Collection, true},
		{"camera_model", in.CameraModel, false},
		{"focal_length", in.FocalLength, false},
		{"exposure_time", in.ExposureTime, false},
		{"iso", in.ISO, false},
		{"aperture", in.Aperture, false},
	}
	for _, f := range fields {
		if f.val == nil || (f.nonEmpty && *f.val == "") {
			return models.PhotoUpdate{}, fmt.Errorf("%w: %s is required", ErrInvalidInput, f.key)
		}
	}
	if in.Favourite == nil {
		return models.PhotoUpdate{}, fmt.Errorf("%w: favourite is required", ErrInvalidInput)
	}
	if err := checkSegment("theme", *in.Theme); err != nil {
		return models.PhotoUpdate{}, err
	}
	if err := checkSegment("collection", *in.Collection); err != nil {
		return models.PhotoUpdate{}, err
	}

	return models.PhotoUpdate{
		Name:       *in.Name,
		Theme:      *in.Theme,
		Collection: *in.Collection,
		Favourite:  *in.Favourite,
		ExifInfo: models.ExifInfo{
			CameraModel:  *in.CameraModel,
			FocalLength:  *in.FocalLength,
			ExposureTime: *in.ExposureTime,
			ISO:          *in.ISO,
			Aperture:     *in.Aperture,
		},
	}, nil
}

// checkSegment rejects names that cannot stand as one level of an object
// key.
func checkSegment(field, v string) error {
	switch {
	case v == "":
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	case v == "." || v == ".." || strings.ContainsAny(v, `/\`):
		return fmt.Errorf("%w: %s %q is not a valid path segment", ErrInvalidInput, field, v)
	}
	return nil
}

// CatalogService serves listings and edits. Every preview_image it returns
// is a signed link, or nil.
type CatalogService struct {
	repo   repository.Repository
	signer *URLSigner
}

func NewCatalogService(repo repository.Repository, signer *URLSigner) *CatalogService {
	return &CatalogService{repo: repo, signer: signer}
}

func (s *CatalogService) ListThemes(ctx context.Context) ([]models.ThemeView, error) {
	themes, err := s.repo.ListThemes(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.ThemeView, 0, len(themes))
	for _, t := range themes {
		views = append(views, models.ThemeView{
			ID:           t.ID,
			Name:         t.Name,
			PreviewImage: s.signer.Sign(ctx, t.PreviewPath),
			Status:       t.Status,
		})
	}
	return views, nil
}

func (s *CatalogService) CreateTheme(ctx context.Context, in ThemeInput) (string, error) {
	status, err := in.validate()
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	err = s.repo.CreateTheme(ctx, models.Theme{ID: id, Name: in.Name, PreviewPath: in.PreviewImage, Status: status})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *CatalogService) UpdateTheme(ctx context.Context, id string, in ThemeInput) error {
	status, err := in.validate()
	if err != nil {
		return err
	}
	return s.repo.UpdateTheme(ctx, models.Theme{ID: id, Name: in.Name, PreviewPath: in.PreviewImage, Status: status})
}

func (s *CatalogService) DeleteTheme(ctx context.Context, id string) error {
	return s.repo.SetThemeStatus(ctx, id, models.StatusInactive)
}

// ListCollections returns active collections, all of them when theme is empty.
func (s *CatalogService) ListCollections(ctx context.Context, theme string) ([]models.CollectionView, error) {
	collections, err := s.repo.ListCollections(ctx, theme)
	if err != nil {
		return nil, err
	}
	views := make([]models.CollectionView, 0, len(collections))
	for _, c := range collections {
		views = append(views, models.CollectionView{
			ID:           c.ID,
			Name:         c.Name,
			Theme:        c.Theme,
			PreviewImage: s.signer.Sign(ctx, c.PreviewPath),
			Status:       c.Status,
		})
	}
	return views, nil
}

func (s *CatalogService) CreateCollection(ctx context.Context, in CollectionInput) (string, error) {
	status, err := in.validate()
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	err = s.repo.CreateCollection(ctx, models.Collection{
		ID: id, Name: in.Name, Theme: in.Theme, PreviewPath: in.PreviewImage, Status: status,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *CatalogService) UpdateCollection(ctx context.Context, id string, in CollectionInput) error {
	status, err := in.validate()
	if err != nil {
		return err
	}
	return s.repo.UpdateCollection(ctx, models.Collection{
		ID: id, Name: in.Name, Theme: in.Theme, PreviewPath: in.PreviewImage, Status: status,
	})
}

func (s *CatalogService) DeleteCollection(ctx context.Context, id string) error {
	return s.repo.SetCollectionStatus(ctx, id, models.StatusInactive)
}

func (s *CatalogService) ListPhotos(ctx context.Context, filter repository.PhotoFilter) ([]models.PhotoView, error) {
	photos, err := s.repo.ListPhotos(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]models.PhotoView, 0, len(photos))
	for i := range photos {
		views = append(views, s.photoView(ctx, &photos[i]))
	}
	return views, nil
}

func (s *CatalogService) Favourites(ctx context.Context) ([]models.PhotoView, error) {
	return s.ListPhotos(ctx, repository.PhotoFilter{FavouritesOnly: true})
}

// GetPhoto finds a photo by id whatever its status. Missing ids give
// repository.ErrNotFound.
func (s *CatalogService) GetPhoto(ctx context.Context, id string) (*models.PhotoView, error) {
	photo, err := s.repo.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.photoView(ctx, photo)
	return &view, nil
}

// DownloadURL signs the original of a photo. The link is nil when signing
// fails.
func (s *CatalogService) DownloadURL(ctx context.Context, id string) (*string, error) {
	photo, err := s.repo.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.signer.Sign(ctx, &photo.Path), nil
}

func (s *CatalogService) SetFavourite(ctx context.Context, id string, favourite bool) error {
	return s.repo.SetFavourite(ctx, id, favourite)
}

func (s *CatalogService) UpdatePhoto(ctx context.Context, id string, in PhotoInput) error {
	u, err := in.validate()
	if err != nil {
		return err
	}
	return s.repo.UpdatePhoto(ctx, id, u)
}

func (s *CatalogService) DeletePhoto(ctx context.Context, id string) error {
	return s.repo.SetPhotoStatus(ctx, id, models.StatusInactive)
}

func (s *CatalogService) photoView(ctx context.Context, p *models.Photo) models.PhotoView {
	return models.PhotoView{
		ID:           p.ID,
		Name:         p.Name,
		DateAdded:    p.DateAdded.UTC().Format(models.DateLayout),
		Theme:        p.Theme,
		Collection:   p.Collection,
		Favourite:    p.Favourite,
		ExifInfo:     p.Exif.WithDefaults(),
		PreviewImage: s.signer.Sign(ctx, p.PreviewPath),
		Status:       p.Status,
	}
}

func parseStatus(s string) (models.Status, error) {
	status, err := models.ParseStatus(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return status, nil
}
