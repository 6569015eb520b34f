package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cat-care/internal/domain/users"
	"cat-care/internal/ports/auth"
)

type UsersRepo struct {
	s *Store
}

func NewUsersRepo(s *Store) *UsersRepo {
	return &UsersRepo{s: s}
}

func (r *UsersRepo) Create(_ context.Context, u users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.s.users[u.ID]; exists {
		return users.ErrAlreadyExists
	}
	if r.existsLocked(u.Username, u.Email) {
		return users.ErrAlreadyExists
	}
	r.s.users[u.ID] = u
	return nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) ExistsUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.existsLocked(username, email), nil
}

// username y email se comparan sin distinguir mayúsculas, como el índice
// único lower() de Postgres.
func (r *UsersRepo) existsLocked(username, email string) bool {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) || strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *UsersRepo) UpdateAccount(_ context.Context, id string, ch users.AccountChange, at time.Time) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return "", users.ErrNotFound
	}
	if ch.FirstName != nil {
		u.FirstName = *ch.FirstName
	}
	if ch.LastName != nil {
		u.LastName = *ch.LastName
	}
	if ch.PasswordHash != nil {
		u.PasswordHash = *ch.PasswordHash
	}
	var prevAvatar string
	if ch.AvatarKey != nil {
		prevAvatar = u.AvatarKey
		u.AvatarKey = *ch.AvatarKey
		if ch.AvatarPath != nil {
			u.AvatarPath = *ch.AvatarPath
		}
	}
	u.UpdatedAt = at
	r.s.users[id] = u
	return prevAvatar, nil
}

func (r *UsersRepo) SetBlocked(_ context.Context, id string, blocked bool, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return users.ErrNotFound
	}
	u.IsBlocked = blocked
	u.UpdatedAt = at
	r.s.users[id] = u
	return nil
}

func (r *UsersRepo) CountAdmins(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, u := range r.s.users {
		if u.Role == auth.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (r *UsersRepo) DeleteCascade(_ context.Context, id string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	var keys []string
	for catID, c := range r.s.cats {
		if c.OwnerID == id {
			keys = append(keys, r.s.deleteCatLocked(catID)...)
		}
	}
	if u.AvatarKey != "" {
		keys = append(keys, u.AvatarKey)
	}
	r.s.removeLinksLocked(func(l link) bool { return l.userID == id })
	delete(r.s.users, id)
	return keys, nil
}

func (r *UsersRepo) List(_ context.Context, limit int) ([]users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]users.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *UsersRepo) Stats(_ context.Context) (users.Stats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := users.Stats{TotalUsers: len(r.s.users)}
	for _, u := range r.s.users {
		if u.Role == auth.RoleAdmin {
			st.AdminUsers++
		}
		if u.IsBlocked {
			st.BlockedUsers++
		}
	}
	return st, nil
}
