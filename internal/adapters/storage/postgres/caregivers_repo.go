package postgres

import (
	"context"
	"time"

	"cat-care/internal/domain/caregivers"
	"cat-care/internal/ports/auth"

	"github.com/jmoiron/sqlx"
)

type CaregiversRepo struct {
	db *sqlx.DB
}

func NewCaregiversRepo(db *sqlx.DB) *CaregiversRepo {
	return &CaregiversRepo{db: db}
}

type caregiverRow struct {
	UserID     string `db:"id"`
	Username   string `db:"username"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	AvatarPath string `db:"avatar_path"`
}

func toCaregivers(rows []caregiverRow) []caregivers.Caregiver {
	out := make([]caregivers.Caregiver, 0, len(rows))
	for _, r := range rows {
		out = append(out, caregivers.Caregiver(r))
	}
	return out
}

func (r *CaregiversRepo) Assign(ctx context.Context, catID, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cat_caregivers (cat_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cat_id, user_id) DO NOTHING
	`, catID, userID, at)
	return err
}

func (r *CaregiversRepo) Unassign(ctx context.Context, catID, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cat_caregivers WHERE cat_id = $1 AND user_id = $2`, catID, userID)
	return err
}

func (r *CaregiversRepo) ListAssigned(ctx context.Context, catID string) ([]caregivers.Caregiver, error) {
	var rows []caregiverRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT u.id, u.username, u.first_name, u.last_name, u.avatar_path
		FROM cat_caregivers cc
		JOIN users u ON u.id = cc.user_id
		WHERE cc.cat_id = $1
		ORDER BY u.username
	`, catID)
	if err != nil {
		return nil, err
	}
	return toCaregivers(rows), nil
}

func (r *CaregiversRepo) ListAvailable(ctx context.Context, catID, ownerID string, limit int) ([]caregivers.Caregiver, error) {
	var rows []caregiverRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT u.id, u.username, u.first_name, u.last_name, u.avatar_path
		FROM users u
		WHERE u.role = $1
		  AND u.id <> $2
		  AND NOT EXISTS (
		      SELECT 1 FROM cat_caregivers cc WHERE cc.cat_id = $3 AND cc.user_id = u.id
		  )
		ORDER BY u.username
		LIMIT $4
	`, string(auth.RoleUser), ownerID, catID, limit)
	if err != nil {
		return nil, err
	}
	return toCaregivers(rows), nil
}

func (r *CaregiversRepo) IsAssigned(ctx context.Context, catID, userID string) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `
		SELECT EXISTS (SELECT 1 FROM cat_caregivers WHERE cat_id = $1 AND user_id = $2)
	`, catID, userID)
	return ok, err
}

func (r *CaregiversRepo) ListCatIDsByUser(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `SELECT cat_id FROM cat_caregivers WHERE user_id = $1 ORDER BY cat_id`, userID)
	return ids, err
}
