package activities

import (
	"context"
	"time"
)

type Order int

const (
	OrderStartsAsc Order = iota
	OrderStartsDesc
	// OrderDoneDesc: done_at desc (nulls al final), luego starts_at desc.
	OrderDoneDesc
)

// Filter: sin AllCats y sin CatIDs el resultado es vacío.
type Filter struct {
	AllCats  bool
	CatIDs   []string
	Statuses []Status   // vacío = todos
	From     *time.Time // starts_at >= From
	Before   *time.Time // starts_at < Before
	// Query busca (case-insensitive) en título, descripción, nota de cierre,
	// nombre del gato y usernames de creador/cerrador.
	Query string
	Order Order
	Limit int // 0 = sin límite
}

func (f Filter) Empty() bool {
	return !f.AllCats && len(f.CatIDs) == 0
}

type Repository interface {
	Create(ctx context.Context, a Activity) error
	GetByID(ctx context.Context, id string) (Activity, error)
	// Update persiste todos los campos mutables en una sola sentencia.
	Update(ctx context.Context, a Activity) error
	List(ctx context.Context, f Filter) ([]Activity, error)
}
