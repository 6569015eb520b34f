package cats

import (
	"context"
	"time"
)

type ListFilter struct {
	All     bool
	OwnerID string
	CatIDs  []string
}

type Repository interface {
	Create(ctx context.Context, c Cat) error
	GetByID(ctx context.Context, id string) (Cat, error)
	// Update no toca owner ni avatar.
	Update(ctx context.Context, c Cat) error
	// SetAvatar devuelve la clave del avatar anterior ("" si no había).
	SetAvatar(ctx context.Context, catID, key, path string, at time.Time) (string, error)
	// Delete borra el gato y, en la misma transacción, sus actividades,
	// fotos y vínculos de cuidadores. Devuelve las claves de blob que
	// quedaron sin fila (fotos y avatar).
	Delete(ctx context.Context, id string) ([]string, error)
	// List ordena por created_at desc.
	List(ctx context.Context, f ListFilter) ([]Cat, error)
}
