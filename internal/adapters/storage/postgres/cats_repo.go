package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"cat-care/internal/domain/cats"

	"github.com/jmoiron/sqlx"
)

type CatsRepo struct {
	db *sqlx.DB
}

func NewCatsRepo(db *sqlx.DB) *CatsRepo {
	return &CatsRepo{db: db}
}

type catRow struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"owner_id"`
	Name        string    `db:"name"`
	Breed       string    `db:"breed"`
	Age         *int      `db:"age"`
	Description string    `db:"description"`
	AvatarKey   string    `db:"avatar_key"`
	AvatarPath  string    `db:"avatar_path"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r catRow) toDomain() cats.Cat {
	return cats.Cat{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Breed:       r.Breed,
		Age:         r.Age,
		Description: r.Description,
		AvatarKey:   r.AvatarKey,
		AvatarPath:  r.AvatarPath,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const catColumns = `id, owner_id, name, breed, age, description, avatar_key, avatar_path, created_at, updated_at`

func (r *CatsRepo) Create(ctx context.Context, c cats.Cat) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cats (`+catColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, c.ID, c.OwnerID, c.Name, c.Breed, c.Age, c.Description, c.AvatarKey, c.AvatarPath, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CatsRepo) GetByID(ctx context.Context, id string) (cats.Cat, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cats.Cat{}, cats.ErrNotFound
	}

	var row catRow
	err := r.db.GetContext(ctx, &row, `SELECT `+catColumns+` FROM cats WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return cats.Cat{}, cats.ErrNotFound
	}
	if err != nil {
		return cats.Cat{}, err
	}
	return row.toDomain(), nil
}

// Update no toca owner_id (inmutable) ni el avatar (ver SetAvatar).
func (r *CatsRepo) Update(ctx context.Context, c cats.Cat) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cats
		SET name = $2, breed = $3, age = $4, description = $5, updated_at = $6
		WHERE id = $1
	`, c.ID, c.Name, c.Breed, c.Age, c.Description, c.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cats.ErrNotFound
	}
	return nil
}

// SetAvatar bloquea la fila para leer la clave anterior sin carrera.
func (r *CatsRepo) SetAvatar(ctx context.Context, catID, key, path string, at time.Time) (string, error) {
	var prev string
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &prev, `SELECT avatar_key FROM cats WHERE id = $1 FOR UPDATE`, catID)
		if errors.Is(err, sql.ErrNoRows) {
			return cats.ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE cats SET avatar_key = $2, avatar_path = $3, updated_at = $4 WHERE id = $1
		`, catID, key, path, at)
		return err
	})
	if err != nil {
		return "", err
	}
	return prev, nil
}

// catBlobKeys: fotos y avatar de un gato, leídos antes de borrar las filas.
const catBlobKeys = `
	SELECT blob_key FROM cat_photos WHERE cat_id = $1
	UNION ALL
	SELECT avatar_key FROM cats WHERE id = $1 AND avatar_key <> ''`

// Delete hace la cascada explícita aunque el esquema también la declare.
func (r *CatsRepo) Delete(ctx context.Context, id string) ([]string, error) {
	keys := []string{}
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &keys, catBlobKeys, id); err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM activities WHERE cat_id = $1`,
			`DELETE FROM cat_photos WHERE cat_id = $1`,
			`DELETE FROM cat_caregivers WHERE cat_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM cats WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return cats.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *CatsRepo) List(ctx context.Context, f cats.ListFilter) ([]cats.Cat, error) {
	var (
		query string
		args  []any
	)
	switch {
	case f.All:
		query = `SELECT ` + catColumns + ` FROM cats ORDER BY created_at DESC, id`
	case f.OwnerID != "":
		query = `SELECT ` + catColumns + ` FROM cats WHERE owner_id = $1 ORDER BY created_at DESC, id`
		args = []any{f.OwnerID}
	case len(f.CatIDs) > 0:
		q, a, err := sqlx.In(`SELECT `+catColumns+` FROM cats WHERE id IN (?) ORDER BY created_at DESC, id`, f.CatIDs)
		if err != nil {
			return nil, err
		}
		query, args = r.db.Rebind(q), a
	default:
		return []cats.Cat{}, nil
	}

	var rows []catRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]cats.Cat, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *CatsRepo) OwnerOf(ctx context.Context, catID string) (string, bool, error) {
	var ownerID string
	err := r.db.GetContext(ctx, &ownerID, `SELECT owner_id FROM cats WHERE id = $1`, catID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return ownerID, true, nil
}

func (r *CatsRepo) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM cats WHERE owner_id = $1 ORDER BY id`, ownerID)
	return ids, err
}
