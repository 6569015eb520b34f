package cats

import "time"

type Cat struct {
	ID          string
	OwnerID     string // inmutable
	Name        string
	Breed       string
	Age         *int
	Description string
	AvatarKey   string // clave en el blob store; vacío = sin avatar
	AvatarPath  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// View agrega lo que la UI necesita saber del caller respecto al gato.
type View struct {
	Cat
	IsOwner bool
}
