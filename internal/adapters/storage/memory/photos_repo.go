package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"cat-care/internal/domain/photos"
)

type PhotosRepo struct {
	s *Store
}

func NewPhotosRepo(s *Store) *PhotosRepo {
	return &PhotosRepo{s: s}
}

func (r *PhotosRepo) Create(_ context.Context, p photos.Photo) (photos.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return photos.Photo{}, errors.New("photo id required")
	}
	if _, ok := r.s.cats[p.CatID]; !ok {
		return photos.Photo{}, errors.New("photo cat does not exist")
	}

	next := 0
	for _, other := range r.s.photos {
		if other.CatID == p.CatID && other.SortOrder >= next {
			next = other.SortOrder + 1
		}
	}
	p.SortOrder = next
	r.s.photos[p.ID] = p
	return p, nil
}

func (r *PhotosRepo) GetByID(_ context.Context, id string) (photos.Photo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.photos[id]
	if !ok {
		return photos.Photo{}, photos.ErrNotFound
	}
	return p, nil
}

func (r *PhotosRepo) List(_ context.Context, catID string) ([]photos.Photo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]photos.Photo, 0)
	for _, p := range r.s.photos {
		if p.CatID == catID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *PhotosRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.photos[id]; !ok {
		return photos.ErrNotFound
	}
	delete(r.s.photos, id)
	return nil
}

func (r *PhotosRepo) Reorder(_ context.Context, catID string, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for pos, id := range ids {
		p, ok := r.s.photos[id]
		if !ok || p.CatID != catID {
			continue
		}
		p.SortOrder = pos
		r.s.photos[id] = p
	}
	return nil
}
