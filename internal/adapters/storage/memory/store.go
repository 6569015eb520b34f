// Package memory es el store relacional en memoria (dev y tests). Un único
// mutex protege todas las tablas, así las cascadas son atómicas igual que en
// Postgres.
package memory

import (
	"sync"
	"time"

	"cat-care/internal/domain/activities"
	"cat-care/internal/domain/cats"
	"cat-care/internal/domain/photos"
	"cat-care/internal/domain/users"
)

type link struct {
	catID     string
	userID    string
	createdAt time.Time
}

type Store struct {
	mu sync.RWMutex

	users      map[string]users.User
	cats       map[string]cats.Cat
	links      []link
	activities map[string]activities.Activity
	photos     map[string]photos.Photo
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]users.User),
		cats:       make(map[string]cats.Cat),
		activities: make(map[string]activities.Activity),
		photos:     make(map[string]photos.Photo),
	}
}

// deleteCatLocked borra el gato y todo lo que cuelga de él, y devuelve las
// claves de blob que quedan sin fila. Requiere s.mu.
func (s *Store) deleteCatLocked(catID string) []string {
	var keys []string
	for id, a := range s.activities {
		if a.CatID == catID {
			delete(s.activities, id)
		}
	}
	for id, p := range s.photos {
		if p.CatID == catID {
			keys = append(keys, p.Key)
			delete(s.photos, id)
		}
	}
	if k := s.cats[catID].AvatarKey; k != "" {
		keys = append(keys, k)
	}
	s.removeLinksLocked(func(l link) bool { return l.catID == catID })
	delete(s.cats, catID)
	return keys
}

func (s *Store) removeLinksLocked(match func(link) bool) {
	kept := s.links[:0]
	for _, l := range s.links {
		if !match(l) {
			kept = append(kept, l)
		}
	}
	s.links = kept
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
