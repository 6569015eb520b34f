package caregivers

import (
	"context"
	"time"
)

const MaxAvailable = 500

type Repository interface {
	// Assign es idempotente: si el vínculo ya existe no hace nada.
	Assign(ctx context.Context, catID, userID string, at time.Time) error
	// Unassign no falla si el vínculo no existe.
	Unassign(ctx context.Context, catID, userID string) error
	// ListAssigned ordena por username.
	ListAssigned(ctx context.Context, catID string) ([]Caregiver, error)
	// ListAvailable: usuarios con rol user, ni dueño ni ya asignados.
	ListAvailable(ctx context.Context, catID, ownerID string, limit int) ([]Caregiver, error)
}
