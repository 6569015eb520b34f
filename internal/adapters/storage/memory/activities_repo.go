package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"cat-care/internal/domain/activities"
)

type ActivitiesRepo struct {
	s *Store
}

func NewActivitiesRepo(s *Store) *ActivitiesRepo {
	return &ActivitiesRepo{s: s}
}

func (r *ActivitiesRepo) Create(_ context.Context, a activities.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("activity id required")
	}
	if _, exists := r.s.activities[a.ID]; exists {
		return errors.New("activity already exists")
	}
	if _, ok := r.s.cats[a.CatID]; !ok {
		return errors.New("activity cat does not exist")
	}
	a.CatName = ""
	r.s.activities[a.ID] = a
	return nil
}

func (r *ActivitiesRepo) GetByID(_ context.Context, id string) (activities.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.activities[id]
	if !ok {
		return activities.Activity{}, activities.ErrNotFound
	}
	return r.project(a), nil
}

func (r *ActivitiesRepo) Update(_ context.Context, a activities.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.activities[a.ID]
	if !ok {
		return activities.ErrNotFound
	}
	a.CatID = prev.CatID
	a.CreatedBy = prev.CreatedBy
	a.CreatedAt = prev.CreatedAt
	a.CatName = ""
	r.s.activities[a.ID] = a
	return nil
}

func (r *ActivitiesRepo) List(_ context.Context, f activities.Filter) ([]activities.Activity, error) {
	if f.Empty() {
		return []activities.Activity{}, nil
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]activities.Activity, 0)
	for _, a := range r.s.activities {
		if !f.AllCats && !contains(f.CatIDs, a.CatID) {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, a.Status) {
			continue
		}
		if f.From != nil && a.StartsAt.Before(*f.From) {
			continue
		}
		if f.Before != nil && !a.StartsAt.Before(*f.Before) {
			continue
		}
		a = r.project(a)
		if q != "" && !r.matches(a, q) {
			continue
		}
		out = append(out, a)
	}

	sortActivities(out, f.Order)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// project completa los campos que en Postgres vienen del join.
func (r *ActivitiesRepo) project(a activities.Activity) activities.Activity {
	if c, ok := r.s.cats[a.CatID]; ok {
		a.CatName = c.Name
	}
	return a
}

func (r *ActivitiesRepo) matches(a activities.Activity, q string) bool {
	fields := []string{a.Title, a.Description, a.DoneDescription, a.CatName}
	if u, ok := r.s.users[a.CreatedBy]; ok {
		fields = append(fields, u.Username)
	}
	if u, ok := r.s.users[a.DoneBy]; ok {
		fields = append(fields, u.Username)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func hasStatus(statuses []activities.Status, s activities.Status) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

func sortActivities(items []activities.Activity, order activities.Order) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch order {
		case activities.OrderStartsDesc:
			if !a.StartsAt.Equal(b.StartsAt) {
				return a.StartsAt.After(b.StartsAt)
			}
		case activities.OrderDoneDesc:
			switch {
			case a.DoneAt != nil && b.DoneAt == nil:
				return true
			case a.DoneAt == nil && b.DoneAt != nil:
				return false
			case a.DoneAt != nil && !a.DoneAt.Equal(*b.DoneAt):
				return a.DoneAt.After(*b.DoneAt)
			}
			if !a.StartsAt.Equal(b.StartsAt) {
				return a.StartsAt.After(b.StartsAt)
			}
		default:
			if !a.StartsAt.Equal(b.StartsAt) {
				return a.StartsAt.Before(b.StartsAt)
			}
		}
		return a.ID < b.ID
	})
}
