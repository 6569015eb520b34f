package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

type object struct {
	data        []byte
	contentType string
}

// Store guarda blobs en memoria (dev y tests). Los paths devueltos cuelgan de
// baseURL, por defecto "/uploads".
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
}

func New(baseURL string) *Store {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "/uploads"
	}
	return &Store{objects: map[string]object{}, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("blob key required")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[key]; exists {
		return "", fmt.Errorf("blob %s already exists", key)
	}
	s.objects[key] = object{data: data, contentType: contentType}
	return s.baseURL + "/" + key, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, strings.TrimLeft(strings.TrimSpace(key), "/"))
	return nil
}

// Get existe para tests y para servir uploads en dev.
func (s *Store) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[strings.TrimLeft(key, "/")]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), o.data...), o.contentType, true
}

// Keys lista las claves con ese prefijo, ordenadas.
func (s *Store) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
