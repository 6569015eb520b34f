package activities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cat-care/internal/domain/access"
	"cat-care/internal/platform/apperr"
	"cat-care/internal/platform/metrics"
	"cat-care/internal/ports/auth"

	"github.com/google/uuid"
)

var (
	ErrMissingCatID      = access.ErrMissingCatID
	ErrMissingActivityID = apperr.BadRequest("missing_activity_id")
	ErrMissingFields     = apperr.BadRequest("missing_fields")
	ErrInvalidDatetime   = apperr.BadRequest("invalid_datetime")
	ErrInvalidStatus     = apperr.BadRequest("invalid_status")
	ErrNotFound          = apperr.NotFound("activity_not_found")
	ErrInvalidTransition = apperr.Conflict("invalid_transition")
)

const (
	MaxListed    = 200
	DashboardCap = 6
)

type Gate interface {
	Authorize(ctx context.Context, id auth.Identity, catID string) error
	VisibleCatIDs(ctx context.Context, id auth.Identity) ([]string, bool, error)
}

type Service struct {
	repo Repository
	gate Gate
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, gate Gate, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, gate: gate, loc: loc, now: time.Now}
}

func (s *Service) Location() *time.Location { return s.loc }

type WriteInput struct {
	Title           string
	Description     string
	Date            string // YYYY-MM-DD
	Time            string // HH:MM
	MarkDone        bool
	DoneDescription string
}

func (in WriteInput) startsAt(loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Date) == "" || strings.TrimSpace(in.Time) == "" {
		return time.Time{}, ErrMissingFields
	}
	t, err := ParseStartsAt(in.Date, in.Time, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDatetime
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, id auth.Identity, catID string, in WriteInput) (Activity, error) {
	catID = strings.TrimSpace(catID)
	if catID == "" {
		return Activity{}, ErrMissingCatID
	}
	startsAt, err := in.startsAt(s.loc)
	if err != nil {
		return Activity{}, err
	}
	if err := s.gate.Authorize(ctx, id, catID); err != nil {
		return Activity{}, err
	}

	now := s.now().Truncate(time.Second)
	a := Activity{
		ID:          uuid.NewString(),
		CatID:       catID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		StartsAt:    startsAt,
		Status:      StatusPlanned,
		CreatedBy:   id.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.MarkDone {
		a.markDone(id.UserID, now, in.DoneDescription)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Activity{}, fmt.Errorf("activities: create: %w", err)
	}
	metrics.ActivityWritten("create", string(a.Status))
	return a, nil
}

// Update reescribe título/descripción/fecha. Con MarkDone además pisa los
// datos de cierre con el actor y la hora actuales, sin mirar el estado previo.
// Sin MarkDone el estado y los datos de cierre no se tocan.
func (s *Service) Update(ctx context.Context, id auth.Identity, catID, activityID string, in WriteInput) (Activity, error) {
	catID, activityID = strings.TrimSpace(catID), strings.TrimSpace(activityID)
	if catID == "" {
		return Activity{}, ErrMissingCatID
	}
	if activityID == "" {
		return Activity{}, ErrMissingActivityID
	}
	startsAt, err := in.startsAt(s.loc)
	if err != nil {
		return Activity{}, err
	}

	a, err := s.load(ctx, id, catID, activityID)
	if err != nil {
		return Activity{}, err
	}

	now := s.now().Truncate(time.Second)
	a.Title = strings.TrimSpace(in.Title)
	a.Description = strings.TrimSpace(in.Description)
	a.StartsAt = startsAt
	a.UpdatedAt = now
	if in.MarkDone {
		a.markDone(id.UserID, now, in.DoneDescription)
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return Activity{}, fmt.Errorf("activities: update: %w", err)
	}
	metrics.ActivityWritten("update", string(a.Status))
	return a, nil
}

// Cancel solo desde planned.
func (s *Service) Cancel(ctx context.Context, id auth.Identity, catID, activityID string) (Activity, error) {
	catID, activityID = strings.TrimSpace(catID), strings.TrimSpace(activityID)
	if catID == "" {
		return Activity{}, ErrMissingCatID
	}
	if activityID == "" {
		return Activity{}, ErrMissingActivityID
	}

	a, err := s.load(ctx, id, catID, activityID)
	if err != nil {
		return Activity{}, err
	}
	if a.Status != StatusPlanned {
		return Activity{}, ErrInvalidTransition
	}

	a.Status = StatusCancelled
	a.UpdatedAt = s.now().Truncate(time.Second)
	if err := s.repo.Update(ctx, a); err != nil {
		return Activity{}, fmt.Errorf("activities: cancel: %w", err)
	}
	metrics.ActivityWritten("cancel", string(a.Status))
	return a, nil
}

// load autoriza contra el gato y verifica que la actividad le pertenezca.
func (s *Service) load(ctx context.Context, id auth.Identity, catID, activityID string) (Activity, error) {
	if err := s.gate.Authorize(ctx, id, catID); err != nil {
		return Activity{}, err
	}
	a, err := s.repo.GetByID(ctx, activityID)
	if err != nil {
		return Activity{}, err
	}
	if a.CatID != catID {
		return Activity{}, ErrNotFound
	}
	return a, nil
}

// Upcoming: planificadas de un gato desde ahora, ascendente.
func (s *Service) Upcoming(ctx context.Context, id auth.Identity, catID string) ([]Activity, error) {
	if err := s.gate.Authorize(ctx, id, strings.TrimSpace(catID)); err != nil {
		return nil, err
	}
	now := s.now()
	return s.repo.List(ctx, Filter{
		CatIDs:   []string{strings.TrimSpace(catID)},
		Statuses: []Status{StatusPlanned},
		From:     &now,
		Order:    OrderStartsAsc,
		Limit:    MaxListed,
	})
}

type SearchInput struct {
	Status string
	Query  string
	Future bool
	Past   bool
}

// Search recorre todas las actividades visibles para la identidad.
func (s *Service) Search(ctx context.Context, id auth.Identity, in SearchInput) ([]Activity, error) {
	f := Filter{Order: OrderStartsDesc, Limit: MaxListed, Query: strings.TrimSpace(in.Query)}

	if raw := strings.TrimSpace(in.Status); raw != "" {
		st, ok := ParseStatus(raw)
		if !ok {
			return nil, ErrInvalidStatus
		}
		f.Statuses = []Status{st}
		if st == StatusDone {
			f.Order = OrderDoneDesc
		}
	}

	now := s.now()
	switch {
	case in.Future && !in.Past:
		f.From = &now
	case in.Past && !in.Future:
		f.Before = &now
	}

	if err := s.scope(ctx, id, &f); err != nil {
		return nil, err
	}
	if f.Empty() {
		return []Activity{}, nil
	}
	return s.repo.List(ctx, f)
}

// Dashboard: las últimas pasadas y las próximas planificadas.
func (s *Service) Dashboard(ctx context.Context, id auth.Identity) (Dashboard, error) {
	var base Filter
	if err := s.scope(ctx, id, &base); err != nil {
		return Dashboard{}, err
	}
	if base.Empty() {
		return Dashboard{Recent: []Activity{}, Planned: []Activity{}}, nil
	}

	now := s.now()

	recentF := base
	recentF.Before = &now
	recentF.Order = OrderStartsDesc
	recentF.Limit = DashboardCap
	recent, err := s.repo.List(ctx, recentF)
	if err != nil {
		return Dashboard{}, fmt.Errorf("activities: recent: %w", err)
	}

	plannedF := base
	plannedF.Statuses = []Status{StatusPlanned}
	plannedF.From = &now
	plannedF.Order = OrderStartsAsc
	plannedF.Limit = DashboardCap
	planned, err := s.repo.List(ctx, plannedF)
	if err != nil {
		return Dashboard{}, fmt.Errorf("activities: planned: %w", err)
	}

	return Dashboard{Recent: recent, Planned: planned}, nil
}

func (s *Service) scope(ctx context.Context, id auth.Identity, f *Filter) error {
	ids, all, err := s.gate.VisibleCatIDs(ctx, id)
	if err != nil {
		return err
	}
	f.AllCats = all
	f.CatIDs = ids
	return nil
}
