package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"cat-care/internal/domain/caregivers"
	"cat-care/internal/domain/users"
	"cat-care/internal/ports/auth"
)

type CaregiversRepo struct {
	s *Store
}

func NewCaregiversRepo(s *Store) *CaregiversRepo {
	return &CaregiversRepo{s: s}
}

func (r *CaregiversRepo) Assign(_ context.Context, catID, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cats[catID]; !ok {
		return errors.New("cat does not exist")
	}
	if _, ok := r.s.users[userID]; !ok {
		return errors.New("user does not exist")
	}
	for _, l := range r.s.links {
		if l.catID == catID && l.userID == userID {
			return nil
		}
	}
	r.s.links = append(r.s.links, link{catID: catID, userID: userID, createdAt: at})
	return nil
}

func (r *CaregiversRepo) Unassign(_ context.Context, catID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.removeLinksLocked(func(l link) bool { return l.catID == catID && l.userID == userID })
	return nil
}

func (r *CaregiversRepo) ListAssigned(_ context.Context, catID string) ([]caregivers.Caregiver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]caregivers.Caregiver, 0)
	for _, l := range r.s.links {
		if l.catID != catID {
			continue
		}
		if u, ok := r.s.users[l.userID]; ok {
			out = append(out, toCaregiver(u))
		}
	}
	sortByUsername(out)
	return out, nil
}

func (r *CaregiversRepo) ListAvailable(_ context.Context, catID, ownerID string, limit int) ([]caregivers.Caregiver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	assigned := map[string]bool{}
	for _, l := range r.s.links {
		if l.catID == catID {
			assigned[l.userID] = true
		}
	}

	out := make([]caregivers.Caregiver, 0)
	for _, u := range r.s.users {
		if u.Role != auth.RoleUser || u.ID == ownerID || assigned[u.ID] {
			continue
		}
		out = append(out, toCaregiver(u))
	}
	sortByUsername(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// IsAssigned y ListCatIDsByUser los consume el evaluador de permisos.
func (r *CaregiversRepo) IsAssigned(_ context.Context, catID, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, l := range r.s.links {
		if l.catID == catID && l.userID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *CaregiversRepo) ListCatIDsByUser(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0)
	for _, l := range r.s.links {
		if l.userID == userID {
			ids = append(ids, l.catID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func toCaregiver(u users.User) caregivers.Caregiver {
	return caregivers.Caregiver{
		UserID:     u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		AvatarPath: u.AvatarPath,
	}
}

func sortByUsername(items []caregivers.Caregiver) {
	sort.Slice(items, func(i, j int) bool { return items[i].Username < items[j].Username })
}
