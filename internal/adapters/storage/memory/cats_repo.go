package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cat-care/internal/domain/cats"
)

type CatsRepo struct {
	s *Store
}

func NewCatsRepo(s *Store) *CatsRepo {
	return &CatsRepo{s: s}
}

func (r *CatsRepo) Create(_ context.Context, c cats.Cat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("cat id required")
	}
	if _, exists := r.s.cats[c.ID]; exists {
		return errors.New("cat already exists")
	}
	if _, ok := r.s.users[c.OwnerID]; !ok {
		return errors.New("cat owner does not exist")
	}
	r.s.cats[c.ID] = c
	return nil
}

func (r *CatsRepo) GetByID(_ context.Context, id string) (cats.Cat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cats[id]
	if !ok {
		return cats.Cat{}, cats.ErrNotFound
	}
	return c, nil
}

func (r *CatsRepo) Update(_ context.Context, c cats.Cat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.cats[c.ID]
	if !ok {
		return cats.ErrNotFound
	}
	c.OwnerID = prev.OwnerID
	c.CreatedAt = prev.CreatedAt
	c.AvatarKey, c.AvatarPath = prev.AvatarKey, prev.AvatarPath
	r.s.cats[c.ID] = c
	return nil
}

func (r *CatsRepo) SetAvatar(_ context.Context, catID, key, path string, at time.Time) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.cats[catID]
	if !ok {
		return "", cats.ErrNotFound
	}
	prev := c.AvatarKey
	c.AvatarKey, c.AvatarPath, c.UpdatedAt = key, path, at
	r.s.cats[catID] = c
	return prev, nil
}

func (r *CatsRepo) Delete(_ context.Context, id string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cats[id]; !ok {
		return nil, cats.ErrNotFound
	}
	return r.s.deleteCatLocked(id), nil
}

func (r *CatsRepo) List(_ context.Context, f cats.ListFilter) ([]cats.Cat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]cats.Cat, 0)
	for _, c := range r.s.cats {
		switch {
		case f.All:
		case f.OwnerID != "":
			if c.OwnerID != f.OwnerID {
				continue
			}
		case len(f.CatIDs) > 0:
			if !contains(f.CatIDs, c.ID) {
				continue
			}
		default:
			continue
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// OwnerOf y ListIDsByOwner los consume el evaluador de permisos.
func (r *CatsRepo) OwnerOf(_ context.Context, catID string) (string, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cats[catID]
	if !ok {
		return "", false, nil
	}
	return c.OwnerID, true, nil
}

func (r *CatsRepo) ListIDsByOwner(_ context.Context, ownerID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0)
	for _, c := range r.s.cats {
		if c.OwnerID == ownerID {
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
