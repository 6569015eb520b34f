package blob

import (
	"context"
	"io"
)

// Store guarda contenido opaco y devuelve el path público con el que se
// referencia después (ej: "/uploads/cats/<id>.jpg" o una URL de bucket).
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// DeleteAll intenta borrar todas las claves y devuelve las que fallaron. Se
// usa después de un commit: la fila ya no existe y el blob solo ocupa lugar.
func DeleteAll(ctx context.Context, s Store, keys []string) []string {
	var failed []string
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := s.Delete(ctx, k); err != nil {
			failed = append(failed, k)
		}
	}
	return failed
}
