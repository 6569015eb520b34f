package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"cat-care/internal/domain/activities"

	"github.com/jmoiron/sqlx"
)

type ActivitiesRepo struct {
	db *sqlx.DB
}

func NewActivitiesRepo(db *sqlx.DB) *ActivitiesRepo {
	return &ActivitiesRepo{db: db}
}

type activityRow struct {
	ID              string         `db:"id"`
	CatID           string         `db:"cat_id"`
	CatName         string         `db:"cat_name"`
	Title           string         `db:"title"`
	Description     string         `db:"description"`
	StartsAt        time.Time      `db:"starts_at"`
	Status          string         `db:"status"`
	DoneAt          sql.NullTime   `db:"done_at"`
	DoneBy          sql.NullString `db:"done_by"`
	DoneDescription sql.NullString `db:"done_description"`
	CreatedBy       string         `db:"created_by"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r activityRow) toDomain() activities.Activity {
	a := activities.Activity{
		ID:              r.ID,
		CatID:           r.CatID,
		CatName:         r.CatName,
		Title:           r.Title,
		Description:     r.Description,
		StartsAt:        r.StartsAt,
		Status:          activities.Status(r.Status),
		DoneBy:          r.DoneBy.String,
		DoneDescription: r.DoneDescription.String,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.DoneAt.Valid {
		t := r.DoneAt.Time
		a.DoneAt = &t
	}
	return a
}

const activitySelect = `
		SELECT a.id, a.cat_id, c.name AS cat_name, a.title, a.description, a.starts_at,
		       a.status, a.done_at, a.done_by, a.done_description,
		       a.created_by, a.created_at, a.updated_at
		FROM activities a
		JOIN cats c ON c.id = a.cat_id`

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *ActivitiesRepo) Create(ctx context.Context, a activities.Activity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activities (
			id, cat_id, title, description, starts_at, status,
			done_at, done_by, done_description,
			created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		a.ID, a.CatID, a.Title, a.Description, a.StartsAt, string(a.Status),
		nullTime(a.DoneAt), nullString(a.DoneBy), nullString(a.DoneDescription),
		a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *ActivitiesRepo) GetByID(ctx context.Context, id string) (activities.Activity, error) {
	var row activityRow
	err := r.db.GetContext(ctx, &row, activitySelect+` WHERE a.id = $1`, strings.TrimSpace(id))
	if errors.Is(err, sql.ErrNoRows) {
		return activities.Activity{}, activities.ErrNotFound
	}
	if err != nil {
		return activities.Activity{}, err
	}
	return row.toDomain(), nil
}

func (r *ActivitiesRepo) Update(ctx context.Context, a activities.Activity) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE activities
		SET title = $2, description = $3, starts_at = $4, status = $5,
		    done_at = $6, done_by = $7, done_description = $8, updated_at = $9
		WHERE id = $1
	`,
		a.ID, a.Title, a.Description, a.StartsAt, string(a.Status),
		nullTime(a.DoneAt), nullString(a.DoneBy), nullString(a.DoneDescription), a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return activities.ErrNotFound
	}
	return nil
}

func (r *ActivitiesRepo) List(ctx context.Context, f activities.Filter) ([]activities.Activity, error) {
	if f.Empty() {
		return []activities.Activity{}, nil
	}

	query, args, err := buildActivityQuery(f)
	if err != nil {
		return nil, err
	}

	var rows []activityRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	out := make([]activities.Activity, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// buildActivityQuery arma el SELECT con bindvars "?" (se pasan por Rebind).
func buildActivityQuery(f activities.Filter) (string, []any, error) {
	var (
		sb    strings.Builder
		where []string
		args  []any
	)
	sb.WriteString(activitySelect)

	q := strings.TrimSpace(f.Query)
	if q != "" {
		sb.WriteString(`
		LEFT JOIN users cu ON cu.id = a.created_by
		LEFT JOIN users du ON du.id = a.done_by`)
	}

	if !f.AllCats {
		where = append(where, `a.cat_id IN (?)`)
		args = append(args, f.CatIDs)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		where = append(where, `a.status IN (?)`)
		args = append(args, statuses)
	}
	if f.From != nil {
		where = append(where, `a.starts_at >= ?`)
		args = append(args, *f.From)
	}
	if f.Before != nil {
		where = append(where, `a.starts_at < ?`)
		args = append(args, *f.Before)
	}
	if q != "" {
		where = append(where, `(a.title ILIKE ? OR a.description ILIKE ? OR a.done_description ILIKE ?
		     OR c.name ILIKE ? OR cu.username ILIKE ? OR du.username ILIKE ?)`)
		p := likePattern(q)
		args = append(args, p, p, p, p, p, p)
	}

	if len(where) > 0 {
		sb.WriteString("\n\t\tWHERE ")
		sb.WriteString(strings.Join(where, "\n\t\t  AND "))
	}

	switch f.Order {
	case activities.OrderStartsDesc:
		sb.WriteString("\n\t\tORDER BY a.starts_at DESC, a.id")
	case activities.OrderDoneDesc:
		sb.WriteString("\n\t\tORDER BY a.done_at DESC NULLS LAST, a.starts_at DESC, a.id")
	default:
		sb.WriteString("\n\t\tORDER BY a.starts_at ASC, a.id")
	}
	if f.Limit > 0 {
		sb.WriteString("\n\t\tLIMIT " + strconv.Itoa(f.Limit))
	}

	return sqlx.In(sb.String(), args...)
}
