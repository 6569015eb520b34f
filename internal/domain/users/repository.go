package users

import (
	"context"
	"time"
)

type Repository interface {
	// Create devuelve ErrAlreadyExists si username o email chocan.
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	ExistsUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// UpdateAccount aplica los cambios en una transacción y devuelve la
	// clave del avatar anterior ("" si no había o no cambió).
	UpdateAccount(ctx context.Context, id string, ch AccountChange, at time.Time) (string, error)
	SetBlocked(ctx context.Context, id string, blocked bool, at time.Time) error
	CountAdmins(ctx context.Context) (int, error)
	// DeleteCascade en una sola transacción: gatos del usuario (con sus
	// actividades, fotos y cuidadores), sus vínculos de cuidador, el usuario.
	// Devuelve las claves de blob huérfanas: fotos y avatares de sus gatos
	// y su propio avatar.
	DeleteCascade(ctx context.Context, id string) ([]string, error)
	// List ordena por created_at desc.
	List(ctx context.Context, limit int) ([]User, error)
	Stats(ctx context.Context) (Stats, error)
}
