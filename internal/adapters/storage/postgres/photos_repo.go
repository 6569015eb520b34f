package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cat-care/internal/domain/photos"

	"github.com/jmoiron/sqlx"
)

type PhotosRepo struct {
	db *sqlx.DB
}

func NewPhotosRepo(db *sqlx.DB) *PhotosRepo {
	return &PhotosRepo{db: db}
}

type photoRow struct {
	ID         string    `db:"id"`
	CatID      string    `db:"cat_id"`
	Key        string    `db:"blob_key"`
	Path       string    `db:"path"`
	SortOrder  int       `db:"sort_order"`
	UploadedBy string    `db:"uploaded_by"`
	CreatedAt  time.Time `db:"created_at"`
}

const photoColumns = `id, cat_id, blob_key, path, sort_order, uploaded_by, created_at`

// Create calcula sort_order = max+1 en la misma sentencia.
func (r *PhotosRepo) Create(ctx context.Context, p photos.Photo) (photos.Photo, error) {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO cat_photos (id, cat_id, blob_key, path, sort_order, uploaded_by, created_at)
		SELECT $1, $2, $3, $4, COALESCE(MAX(sort_order) + 1, 0), $5, $6
		FROM cat_photos WHERE cat_id = $2
		RETURNING sort_order
	`, p.ID, p.CatID, p.Key, p.Path, p.UploadedBy, p.CreatedAt).Scan(&p.SortOrder)
	if err != nil {
		return photos.Photo{}, err
	}
	return p, nil
}

func (r *PhotosRepo) GetByID(ctx context.Context, id string) (photos.Photo, error) {
	var row photoRow
	err := r.db.GetContext(ctx, &row, `SELECT `+photoColumns+` FROM cat_photos WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return photos.Photo{}, photos.ErrNotFound
	}
	if err != nil {
		return photos.Photo{}, err
	}
	return photos.Photo(row), nil
}

func (r *PhotosRepo) List(ctx context.Context, catID string) ([]photos.Photo, error) {
	var rows []photoRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+photoColumns+`
		FROM cat_photos
		WHERE cat_id = $1
		ORDER BY sort_order ASC, created_at ASC, id
	`, catID)
	if err != nil {
		return nil, err
	}
	out := make([]photos.Photo, 0, len(rows))
	for _, row := range rows {
		out = append(out, photos.Photo(row))
	}
	return out, nil
}

func (r *PhotosRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cat_photos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return photos.ErrNotFound
	}
	return nil
}

func (r *PhotosRepo) Reorder(ctx context.Context, catID string, ids []string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for pos, id := range ids {
			if _, err := tx.ExecContext(ctx, `
				UPDATE cat_photos SET sort_order = $1 WHERE id = $2 AND cat_id = $3
			`, pos, id, catID); err != nil {
				return err
			}
		}
		return nil
	})
}
