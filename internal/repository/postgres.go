package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Alexander-D-Karpov/photogallery/internal/database"
	"github.com/Alexander-D-Karpov/photogallery/internal/models"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const photoColumns = `id, name, filepath, date_added, theme, collection, favourite,
	COALESCE(camera_model, 'Unknown'), COALESCE(focal_length, 'Unknown'),
	COALESCE(exposure_time, 'Unknown'), COALESCE(iso, 'Unknown'), COALESCE(aperture, 'Unknown'),
	preview_image, status`

type pgRepo struct {
	db *database.DB
	q  DBTX
}

func NewPostgres(db *database.DB) Repository {
	return &pgRepo{db: db, q: db.Pool()}
}

func (r *pgRepo) ListThemes(ctx context.Context) ([]models.Theme, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, preview_image, status FROM themes WHERE status = 'active' ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var themes []models.Theme
	for rows.Next() {
		var t models.Theme
		var status string
		if err := rows.Scan(&t.ID, &t.Name, &t.PreviewPath, &status); err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		t.Status = models.Status(status)
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

func (r *pgRepo) CreateTheme(ctx context.Context, t models.Theme) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO themes (id, name, preview_image, status) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Name, t.PreviewPath, string(t.Status))
	if err != nil {
		return fmt.Errorf("insert theme: %w", err)
	}
	return nil
}

func (r *pgRepo) UpdateTheme(ctx context.Context, t models.Theme) error {
	_, err := r.q.Exec(ctx,
		`UPDATE themes SET name = $1, preview_image = $2, status = $3 WHERE id = $4`,
		t.Name, t.PreviewPath, string(t.Status), t.ID)
	if err != nil {
		return fmt.Errorf("update theme: %w", err)
	}
	return nil
}

func (r *pgRepo) SetThemeStatus(ctx context.Context, id string, status models.Status) error {
	if _, err := r.q.Exec(ctx, `UPDATE themes SET status = $1 WHERE id = $2`, string(status), id); err != nil {
		return fmt.Errorf("set theme status: %w", err)
	}
	return nil
}

func (r *pgRepo) ListCollections(ctx context.Context, theme string) ([]models.Collection, error) {
	query := `SELECT id, name, theme, preview_image, status FROM collections WHERE status = 'active'`
	var args []any
	if theme != "" {
		query += ` AND theme = $1`
		args = append(args, theme)
	}
	query += ` ORDER BY name, id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		var c models.Collection
		var status string
		if err := rows.Scan(&c.ID, &c.Name, &c.Theme, &c.PreviewPath, &status); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		c.Status = models.Status(status)
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func (r *pgRepo) CreateCollection(ctx context.Context, c models.Collection) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO collections (id, name, theme, preview_image, status) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Theme, c.PreviewPath, string(c.Status))
	if err != nil {
		return fmt.Errorf("insert collection: %w", err)
	}
	return nil
}

func (r *pgRepo) UpdateCollection(ctx context.Context, c models.Collection) error {
	_, err := r.q.Exec(ctx,
		`UPDATE collections SET name = $1, theme = $2, preview_image = $3, status = $4 WHERE id = $5`,
		c.Name, c.Theme, c.PreviewPath, string(c.Status), c.ID)
	if err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	return nil
}

func (r *pgRepo) SetCollectionStatus(ctx context.Context, id string, status models.Status) error {
	if _, err := r.q.Exec(ctx, `UPDATE collections SET status = $1 WHERE id = $2`, string(status), id); err != nil {
		return fmt.Errorf("set collection status: %w", err)
	}
	return nil
}

func (r *pgRepo) ListPhotos(ctx context.Context, f PhotoFilter) ([]models.Photo, error) {
	where, args := buildPhotoWhere(f)
	query := fmt.Sprintf(`SELECT %s FROM images WHERE %s ORDER BY date_added DESC, id`, photoColumns, where)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

// buildPhotoWhere always includes the active filter; the remaining
// predicates are appended with consecutive placeholders.
func buildPhotoWhere(f PhotoFilter) (string, []any) {
	conditions := []string{"status = 'active'"}
	var args []any

	if f.Theme != "" {
		args = append(args, f.Theme)
		conditions = append(conditions, fmt.Sprintf("theme = $%d", len(args)))
	}
	if f.Collection != "" {
		args = append(args, f.Collection)
		conditions = append(conditions, fmt.Sprintf("collection = $%d", len(args)))
	}
	if f.FavouritesOnly {
		conditions = append(conditions, "favourite = TRUE")
	}
	return strings.Join(conditions, " AND "), args
}

func (r *pgRepo) GetPhoto(ctx context.Context, id string) (*models.Photo, error) {
	row := r.q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM images WHERE id = $1`, photoColumns), id)
	p, err := scanPhoto(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var p models.Photo
	var status string
	err := row.Scan(&p.ID, &p.Name, &p.Path, &p.DateAdded, &p.Theme, &p.Collection, &p.Favourite,
		&p.Exif.CameraModel, &p.Exif.FocalLength, &p.Exif.ExposureTime, &p.Exif.ISO, &p.Exif.Aperture,
		&p.PreviewPath, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan photo: %w", err)
	}
	p.Status = models.Status(status)
	return &p, nil
}

func (r *pgRepo) CreatePhoto(ctx context.Context, p *models.Photo) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO images (id, name, filepath, date_added, theme, collection, favourite,
			camera_model, focal_length, exposure_time, iso, aperture, preview_image, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.Name, p.Path, p.DateAdded, p.Theme, p.Collection, p.Favourite,
		nullIfEmpty(p.Exif.CameraModel), nullIfEmpty(p.Exif.FocalLength), nullIfEmpty(p.Exif.ExposureTime),
		nullIfEmpty(p.Exif.ISO), nullIfEmpty(p.Exif.Aperture), p.PreviewPath, string(p.Status))
	if err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

func (r *pgRepo) UpdatePhoto(ctx context.Context, id string, u models.PhotoUpdate) error {
	_, err := r.q.Exec(ctx,
		`UPDATE images SET name = $1, theme = $2, collection = $3, favourite = $4,
			camera_model = $5, focal_length = $6, exposure_time = $7, iso = $8, aperture = $9
		WHERE id = $10`,
		u.Name, u.Theme, u.Collection, u.Favourite,
		nullIfEmpty(u.CameraModel), nullIfEmpty(u.FocalLength), nullIfEmpty(u.ExposureTime),
		nullIfEmpty(u.ISO), nullIfEmpty(u.Aperture), id)
	if err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	return nil
}

func (r *pgRepo) SetFavourite(ctx context.Context, id string, favourite bool) error {
	if _, err := r.q.Exec(ctx, `UPDATE images SET favourite = $1 WHERE id = $2`, favourite, id); err != nil {
		return fmt.Errorf("set favourite: %w", err)
	}
	return nil
}

func (r *pgRepo) SetPhotoStatus(ctx context.Context, id string, status models.Status) error {
	if _, err := r.q.Exec(ctx, `UPDATE images SET status = $1 WHERE id = $2`, string(status), id); err != nil {
		return fmt.Errorf("set photo status: %w", err)
	}
	return nil
}

func (r *pgRepo) Ping(ctx context.Context) error {
	return r.db.Pool().Ping(ctx)
}

func (r *pgRepo) Close() error {
	r.db.Close()
	return nil
}
