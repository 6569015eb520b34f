package photos

import "context"

type Repository interface {
	// Create agrega la foto al final del orden actual del gato.
	Create(ctx context.Context, p Photo) (Photo, error)
	GetByID(ctx context.Context, id string) (Photo, error)
	// List ordena por sort_order asc, created_at asc.
	List(ctx context.Context, catID string) ([]Photo, error)
	Delete(ctx context.Context, id string) error
	// Reorder asigna posiciones 0..n-1 según ids, en una transacción.
	// Ids de otros gatos se ignoran.
	Reorder(ctx context.Context, catID string, ids []string) error
}
