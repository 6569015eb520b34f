// Package calendar agrega actividades por día. Conteos y detalle salen del
// mismo cargador de ventana, así que para cualquier día coinciden.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cat-care/internal/domain/activities"
	"cat-care/internal/platform/apperr"
	"cat-care/internal/ports/auth"
)

var (
	ErrMissingRange = apperr.BadRequest("missing_range")
	ErrInvalidRange = apperr.BadRequest("invalid_range")
	ErrMissingDate  = apperr.BadRequest("missing_date")
	ErrInvalidDate  = apperr.BadRequest("invalid_date")
)

type ActivityLister interface {
	List(ctx context.Context, f activities.Filter) ([]activities.Activity, error)
}

type Gate interface {
	VisibleCatIDs(ctx context.Context, id auth.Identity) ([]string, bool, error)
}

type DayCount struct {
	Day                string // YYYY-MM-DD en la zona configurada
	PlannedFutureCount int
	DoneLikeCount      int
}

type Service struct {
	activities ActivityLister
	gate       Gate
	loc        *time.Location
	now        func() time.Time
}

func NewService(acts ActivityLister, gate Gate, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{activities: acts, gate: gate, loc: loc, now: time.Now}
}

func (s *Service) Location() *time.Location { return s.loc }

// RangeCounts agrupa por día las actividades visibles en [from, to).
// Las canceladas no cuentan en ningún bucket; un día sin actividades no
// canceladas no aparece.
func (s *Service) RangeCounts(ctx context.Context, id auth.Identity, from, to string) ([]DayCount, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return nil, ErrMissingRange
	}
	start, err := time.ParseInLocation(activities.DateLayout, from, s.loc)
	if err != nil {
		return nil, ErrInvalidRange
	}
	end, err := time.ParseInLocation(activities.DateLayout, to, s.loc)
	if err != nil || end.Before(start) {
		return nil, ErrInvalidRange
	}

	items, err := s.window(ctx, id, start, end)
	if err != nil {
		return nil, err
	}

	now := s.now()
	byDay := map[string]*DayCount{}
	for _, a := range items {
		day := a.StartsAt.In(s.loc).Format(activities.DateLayout)
		dc, ok := byDay[day]
		if !ok {
			dc = &DayCount{Day: day}
			byDay[day] = dc
		}
		switch {
		case a.Status == activities.StatusDone:
			dc.DoneLikeCount++
		case a.Status == activities.StatusPlanned && !a.StartsAt.Before(now):
			dc.PlannedFutureCount++
		}
	}

	out := make([]DayCount, 0, len(byDay))
	for _, dc := range byDay {
		out = append(out, *dc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

// DayDetail: actividades visibles no canceladas de ese día, por hora
// ascendente. Sin tope, para que siempre coincida con RangeCounts.
func (s *Service) DayDetail(ctx context.Context, id auth.Identity, date string) ([]activities.Activity, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, ErrMissingDate
	}
	start, err := time.ParseInLocation(activities.DateLayout, date, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return s.window(ctx, id, start, start.AddDate(0, 0, 1))
}

func (s *Service) window(ctx context.Context, id auth.Identity, start, end time.Time) ([]activities.Activity, error) {
	ids, all, err := s.gate.VisibleCatIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	f := activities.Filter{
		AllCats:  all,
		CatIDs:   ids,
		Statuses: []activities.Status{activities.StatusPlanned, activities.StatusDone},
		From:     &start,
		Before:   &end,
		Order:    activities.OrderStartsAsc,
	}
	if f.Empty() {
		return []activities.Activity{}, nil
	}
	items, err := s.activities.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("calendar: list: %w", err)
	}
	return items, nil
}
