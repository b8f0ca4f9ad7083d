package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Alexander-D-Karpov/photogallery/internal/models"
)

type themeRow struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	PreviewImage *string
	Status       string `gorm:"not null;default:active;index"`
}

func (themeRow) TableName() string { return "themes" }

type collectionRow struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Theme        string `gorm:"not null;index"`
	PreviewImage *string
	Status       string `gorm:"not null;default:active;index"`
}

func (collectionRow) TableName() string { return "collections" }

type imageRow struct {
	ID           string    `gorm:"primaryKey"`
	Name         string    `gorm:"not null"`
	Filepath     string    `gorm:"not null"`
	DateAdded    time.Time `gorm:"not null;index"`
	Theme        string    `gorm:"not null;index:idx_images_theme_collection"`
	Collection   string    `gorm:"not null;index:idx_images_theme_collection"`
	Favourite    bool      `gorm:"not null;default:false"`
	CameraModel  *string
	FocalLength  *string
	ExposureTime *string
	ISO          *string `gorm:"column:iso"`
	Aperture     *string
	PreviewImage *string
	Status       string `gorm:"not null;default:active;index"`
}

func (imageRow) TableName() string { return "images" }

func (r imageRow) toModel() models.Photo {
	return models.Photo{
		ID:         r.ID,
		Name:       r.Name,
		Path:       r.Filepath,
		DateAdded:  r.DateAdded,
		Theme:      r.Theme,
		Collection: r.Collection,
		Favourite:  r.Favourite,
		Exif: models.ExifInfo{
			CameraModel:  derefOr(r.CameraModel, models.UnknownExif),
			FocalLength:  derefOr(r.FocalLength, models.UnknownExif),
			ExposureTime: derefOr(r.ExposureTime, models.UnknownExif),
			ISO:          derefOr(r.ISO, models.UnknownExif),
			Aperture:     derefOr(r.Aperture, models.UnknownExif),
		},
		PreviewPath: r.PreviewImage,
		Status:      models.Status(r.Status),
	}
}

type sqliteRepo struct {
	db *gorm.DB
}

// NewSQLite opens (creating if needed) the SQLite database at path and
// brings the schema up to date.
func NewSQLite(path string) (Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&themeRow{}, &collectionRow{}, &imageRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) ListThemes(ctx context.Context) ([]models.Theme, error) {
	var rows []themeRow
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusActive).
		Order("name, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}

	themes := make([]models.Theme, 0, len(rows))
	for _, row := range rows {
		themes = append(themes, models.Theme{
			ID:          row.ID,
			Name:        row.Name,
			PreviewPath: row.PreviewImage,
			Status:      models.Status(row.Status),
		})
	}
	return themes, nil
}

func (r *sqliteRepo) CreateTheme(ctx context.Context, t models.Theme) error {
	row := themeRow{ID: t.ID, Name: t.Name, PreviewImage: t.PreviewPath, Status: string(t.Status)}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert theme: %w", err)
	}
	return nil
}

func (r *sqliteRepo) UpdateTheme(ctx context.Context, t models.Theme) error {
	err := r.db.WithContext(ctx).Model(&themeRow{}).Where("id = ?", t.ID).Updates(map[string]any{
		"name":          t.Name,
		"preview_image": t.PreviewPath,
		"status":        string(t.Status),
	}).Error
	if err != nil {
		return fmt.Errorf("update theme: %w", err)
	}
	return nil
}

func (r *sqliteRepo) SetThemeStatus(ctx context.Context, id string, status models.Status) error {
	err := r.db.WithContext(ctx).Model(&themeRow{}).Where("id = ?", id).Update("status", string(status)).Error
	if err != nil {
		return fmt.Errorf("set theme status: %w", err)
	}
	return nil
}

func (r *sqliteRepo) ListCollections(ctx context.Context, theme string) ([]models.Collection, error) {
	query := r.db.WithContext(ctx).Where("status = ?", models.StatusActive)
	if theme != "" {
		query = query.Where("theme = ?", theme)
	}

	var rows []collectionRow
	if err := query.Order("name, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	collections := make([]models.Collection, 0, len(rows))
	for _, row := range rows {
		collections = append(collections, models.Collection{
			ID:          row.ID,
			Name:        row.Name,
			Theme:       row.Theme,
			PreviewPath: row.PreviewImage,
			Status:      models.Status(row.Status),
		})
	}
	return collections, nil
}

func (r *sqliteRepo) CreateCollection(ctx context.Context, c models.Collection) error {
	row := collectionRow{ID: c.ID, Name: c.Name, Theme: c.Theme, PreviewImage: c.PreviewPath, Status: string(c.Status)}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert collection: %w", err)
	}
	return nil
}

func (r *sqliteRepo) UpdateCollection(ctx context.Context, c models.Collection) error {
	err := r.db.WithContext(ctx).Model(&collectionRow{}).Where("id = ?", c.ID).Updates(map[string]any{
		"name":          c.Name,
		"theme":         c.Theme,
		"preview_image": c.PreviewPath,
		"status":        string(c.Status),
	}).Error
	if err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	return nil
}

func (r *sqliteRepo) SetCollectionStatus(ctx context.Context, id string, status models.Status) error {
	err := r.db.WithContext(ctx).Model(&collectionRow{}).Where("id = ?", id).Update("status", string(status)).Error
	if err != nil {
		return fmt.Errorf("set collection status: %w", err)
	}
	return nil
}

func (r *sqliteRepo) ListPhotos(ctx context.Context, f PhotoFilter) ([]models.Photo, error) {
	query := r.db.WithContext(ctx).Where("status = ?", models.StatusActive)
	if f.Theme != "" {
		query = query.Where("theme = ?", f.Theme)
	}
	if f.Collection != "" {
		query = query.Where("collection = ?", f.Collection)
	}
	if f.FavouritesOnly {
		query = query.Where("favourite = ?", true)
	}

	var rows []imageRow
	if err := query.Order("date_added DESC, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	photos := make([]models.Photo, 0, len(rows))
	for _, row := range rows {
		photos = append(photos, row.toModel())
	}
	return photos, nil
}

func (r *sqliteRepo) GetPhoto(ctx context.Context, id string) (*models.Photo, error) {
	var row imageRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get photo: %w", err)
	}
	p := row.toModel()
	return &p, nil
}

func (r *sqliteRepo) CreatePhoto(ctx context.Context, p *models.Photo) error {
	row := imageRow{
		ID:           p.ID,
		Name:         p.Name,
		Filepath:     p.Path,
		DateAdded:    p.DateAdded,
		Theme:        p.Theme,
		Collection:   p.Collection,
		Favourite:    p.Favourite,
		CameraModel:  nullIfEmpty(p.Exif.CameraModel),
		FocalLength:  nullIfEmpty(p.Exif.FocalLength),
		ExposureTime: nullIfEmpty(p.Exif.ExposureTime),
		ISO:          nullIfEmpty(p.Exif.ISO),
		Aperture:     nullIfEmpty(p.Exif.Aperture),
		PreviewImage: p.PreviewPath,
		Status:       string(p.Status),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

func (r *sqliteRepo) UpdatePhoto(ctx context.Context, id string, u models.PhotoUpdate) error {
	err := r.db.WithContext(ctx).Model(&imageRow{}).Where("id = ?", id).Updates(map[string]any{
		"name":          u.Name,
		"theme":         u.Theme,
		"collection":    u.Collection,
		"favourite":     u.Favourite,
		"camera_model":  nullIfEmpty(u.CameraModel),
		"focal_length":  nullIfEmpty(u.FocalLength),
		"exposure_time": nullIfEmpty(u.ExposureTime),
		"iso":           nullIfEmpty(u.ISO),
		"aperture":      nullIfEmpty(u.Aperture),
	}).Error
	if err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	return nil
}

func (r *sqliteRepo) SetFavourite(ctx context.Context, id string, favourite bool) error {
	err := r.db.WithContext(ctx).Model(&imageRow{}).Where("id = ?", id).Update("favourite", favourite).Error
	if err != nil {
		return fmt.Errorf("set favourite: %w", err)
	}
	return nil
}

func (r *sqliteRepo) SetPhotoStatus(ctx context.Context, id string, status models.Status) error {
	err := r.db.WithContext(ctx).Model(&imageRow{}).Where("id = ?", id).Update("status", string(status)).Error
	if err != nil {
		return fmt.Errorf("set photo status: %w", err)
	}
	return nil
}

func (r *sqliteRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *sqliteRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
