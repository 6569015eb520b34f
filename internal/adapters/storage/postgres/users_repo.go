package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cat-care/internal/domain/users"
	"cat-care/internal/ports/auth"

	"github.com/jmoiron/sqlx"
)

type UsersRepo struct {
	db *sqlx.DB
}

func NewUsersRepo(db *sqlx.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

type userRow struct {
	ID           string       `db:"id"`
	Username     string       `db:"username"`
	Email        string       `db:"email"`
	PasswordHash string       `db:"password_hash"`
	FirstName    string       `db:"first_name"`
	LastName     string       `db:"last_name"`
	Role         string       `db:"role"`
	IsBlocked    bool         `db:"is_blocked"`
	AvatarKey    string       `db:"avatar_key"`
	AvatarPath   string       `db:"avatar_path"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	LastLoginAt  sql.NullTime `db:"last_login_at"`
}

func (r userRow) toDomain() users.User {
	u := users.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Role:         auth.ParseRole(r.Role),
		IsBlocked:    r.IsBlocked,
		AvatarKey:    r.AvatarKey,
		AvatarPath:   r.AvatarPath,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.LastLoginAt.Valid {
		t := r.LastLoginAt.Time
		u.LastLoginAt = &t
	}
	return u
}

const userColumns = `id, username, email, password_hash, first_name, last_name, role, is_blocked, avatar_key, avatar_path, created_at, updated_at, last_login_at`

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		string(u.Role), u.IsBlocked, u.AvatarKey, u.AvatarPath, u.CreatedAt, u.UpdatedAt, nullTime(u.LastLoginAt),
	)
	if isUniqueViolation(err) {
		return users.ErrAlreadyExists
	}
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	return row.toDomain(), nil
}

func (r *UsersRepo) ExistsUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE lower(username) = lower($1) OR lower(email) = lower($2)
		)
	`, username, email)
	return ok, err
}

// UpdateAccount: un solo UPDATE con COALESCE, así los campos nil quedan
// como estaban. La fila se bloquea para leer el avatar anterior.
func (r *UsersRepo) UpdateAccount(ctx context.Context, id string, ch users.AccountChange, at time.Time) (string, error) {
	var prev string
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &prev, `SELECT avatar_key FROM users WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return users.ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET first_name = COALESCE($2, first_name),
			    last_name = COALESCE($3, last_name),
			    password_hash = COALESCE($4, password_hash),
			    avatar_key = COALESCE($5, avatar_key),
			    avatar_path = COALESCE($6, avatar_path),
			    updated_at = $7
			WHERE id = $1
		`, id, ch.FirstName, ch.LastName, ch.PasswordHash, ch.AvatarKey, ch.AvatarPath, at)
		return err
	})
	if err != nil {
		return "", err
	}
	if ch.AvatarKey == nil {
		return "", nil
	}
	return prev, nil
}

func (r *UsersRepo) SetBlocked(ctx context.Context, id string, blocked bool, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_blocked = $2, updated_at = $3 WHERE id = $1`, id, blocked, at)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return users.ErrNotFound
	}
	return nil
}

// CountAdmins no toma locks: dos borrados concurrentes de admins pueden
// pasar ambos el chequeo de "último admin".
func (r *UsersRepo) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE role = $1`, string(auth.RoleAdmin))
	return n, err
}

// userBlobKeys: fotos y avatares de los gatos del usuario, más su avatar.
const userBlobKeys = `
	SELECT p.blob_key FROM cat_photos p JOIN cats c ON c.id = p.cat_id WHERE c.owner_id = $1
	UNION ALL
	SELECT avatar_key FROM cats WHERE owner_id = $1 AND avatar_key <> ''
	UNION ALL
	SELECT avatar_key FROM users WHERE id = $1 AND avatar_key <> ''`

// DeleteCascade borra explícitamente, en orden, todo lo que depende del
// usuario. Las actividades que creó o cerró en gatos ajenos se conservan.
func (r *UsersRepo) DeleteCascade(ctx context.Context, id string) ([]string, error) {
	keys := []string{}
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &keys, userBlobKeys, id); err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM activities WHERE cat_id IN (SELECT id FROM cats WHERE owner_id = $1)`,
			`DELETE FROM cat_photos WHERE cat_id IN (SELECT id FROM cats WHERE owner_id = $1)`,
			`DELETE FROM cat_caregivers WHERE cat_id IN (SELECT id FROM cats WHERE owner_id = $1)`,
			`DELETE FROM cats WHERE owner_id = $1`,
			`DELETE FROM cat_caregivers WHERE user_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return users.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *UsersRepo) List(ctx context.Context, limit int) ([]users.User, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC, username
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	out := make([]users.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *UsersRepo) Stats(ctx context.Context) (users.Stats, error) {
	var row struct {
		Total   int `db:"total_users"`
		Admins  int `db:"admin_users"`
		Blocked int `db:"blocked_users"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS total_users,
		       COUNT(*) FILTER (WHERE role = 'admin') AS admin_users,
		       COUNT(*) FILTER (WHERE is_blocked) AS blocked_users
		FROM users
	`)
	if err != nil {
		return users.Stats{}, err
	}
	return users.Stats{TotalUsers: row.Total, AdminUsers: row.Admins, BlockedUsers: row.Blocked}, nil
}
