package cats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cat-care/internal/platform/apperr"
	"cat-care/internal/platform/upload"
	"cat-care/internal/ports/auth"
	"cat-care/internal/ports/blob"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrNotFound    = apperr.ErrNotFound
	ErrCatName     = apperr.BadRequest("cat_name")
	ErrInvalidAge  = apperr.BadRequest("invalid_age")
	ErrInvalidData = apperr.BadRequest("invalid_data")
)

// Gate es el subconjunto del evaluador de permisos que usa este módulo.
type Gate interface {
	Authorize(ctx context.Context, id auth.Identity, catID string) error
	AuthorizeManage(ctx context.Context, id auth.Identity, catID string) (string, error)
	MemberCatIDs(ctx context.Context, userID string) ([]string, error)
}

type Service struct {
	repo     Repository
	gate     Gate
	blobs    blob.Store
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository, gate Gate, blobs blob.Store) *Service {
	return &Service{
		repo:     repo,
		gate:     gate,
		blobs:    blobs,
		validate: validator.New(),
		now:      time.Now,
	}
}

type Input struct {
	Name        string `validate:"required,max=60"`
	Breed       string `validate:"max=60"`
	Age         *int   `validate:"omitnil,gte=0,lte=40"`
	Description string `validate:"max=2000"`
}

func (in Input) normalized() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Breed = strings.TrimSpace(in.Breed)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func (s *Service) check(in Input) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ErrInvalidData
	}
	switch verrs[0].Field() {
	case "Name":
		return ErrCatName
	case "Age":
		return ErrInvalidAge
	default:
		return ErrInvalidData
	}
}

func (s *Service) Create(ctx context.Context, id auth.Identity, in Input) (Cat, error) {
	if !id.Valid() {
		return Cat{}, apperr.ErrUnauthorized
	}
	in = in.normalized()
	if err := s.check(in); err != nil {
		return Cat{}, err
	}

	now := s.now().UTC().Truncate(time.Second)
	c := Cat{
		ID:          uuid.NewString(),
		OwnerID:     id.UserID,
		Name:        in.Name,
		Breed:       in.Breed,
		Age:         in.Age,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Cat{}, fmt.Errorf("cats: create: %w", err)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id auth.Identity, catID string) (View, error) {
	if err := s.gate.Authorize(ctx, id, catID); err != nil {
		return View{}, err
	}
	c, err := s.repo.GetByID(ctx, catID)
	if err != nil {
		return View{}, err
	}
	return View{Cat: c, IsOwner: c.OwnerID == id.UserID}, nil
}

// List: all solo vale para admins; ownedOnly restringe a los propios.
// Sin flags devuelve propios + los que cuida.
func (s *Service) List(ctx context.Context, id auth.Identity, ownedOnly, all bool) ([]View, error) {
	if !id.Valid() {
		return nil, apperr.ErrUnauthorized
	}

	var f ListFilter
	switch {
	case all && id.IsAdmin():
		f.All = true
	case ownedOnly:
		f.OwnerID = id.UserID
	default:
		ids, err := s.gate.MemberCatIDs(ctx, id.UserID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []View{}, nil
		}
		f.CatIDs = ids
	}

	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("cats: list: %w", err)
	}
	out := make([]View, 0, len(items))
	for _, c := range items {
		out = append(out, View{Cat: c, IsOwner: c.OwnerID == id.UserID})
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id auth.Identity, catID string, in Input) (Cat, error) {
	if _, err := s.gate.AuthorizeManage(ctx, id, catID); err != nil {
		return Cat{}, err
	}
	in = in.normalized()
	if err := s.check(in); err != nil {
		return Cat{}, err
	}

	c, err := s.repo.GetByID(ctx, catID)
	if err != nil {
		return Cat{}, err
	}
	c.Name = in.Name
	c.Breed = in.Breed
	c.Age = in.Age
	c.Description = in.Description
	c.UpdatedAt = s.now().UTC().Truncate(time.Second)

	if err := s.repo.Update(ctx, c); err != nil {
		return Cat{}, err
	}
	return c, nil
}

// SetAvatar: solo dueño o admin. El permiso se chequea antes de leer el
// archivo, así un gato ajeno y uno inexistente responden igual.
func (s *Service) SetAvatar(ctx context.Context, id auth.Identity, catID string, r io.Reader) (Cat, error) {
	if _, err := s.gate.AuthorizeManage(ctx, id, catID); err != nil {
		return Cat{}, err
	}
	img, err := upload.ReadImage(r)
	if err != nil {
		return Cat{}, err
	}

	// clave nueva por subida: el store no pisa objetos
	key := "cats/" + catID + "/avatar-" + uuid.NewString() + img.Ext
	path, err := s.blobs.Put(ctx, key, bytes.NewReader(img.Data), img.ContentType)
	if err != nil {
		return Cat{}, fmt.Errorf("cats: put avatar: %w", err)
	}

	now := s.now().UTC().Truncate(time.Second)
	prev, err := s.repo.SetAvatar(ctx, catID, key, path, now)
	if err != nil {
		_ = s.blobs.Delete(ctx, key)
		return Cat{}, err
	}
	blob.DeleteAll(ctx, s.blobs, []string{prev})

	return s.repo.GetByID(ctx, catID)
}

// Delete borra el gato con todo lo que cuelga de él. Los blobs se borran
// después del commit; si alguno falla queda huérfano pero sin fila.
func (s *Service) Delete(ctx context.Context, id auth.Identity, catID string) error {
	if _, err := s.gate.AuthorizeManage(ctx, id, catID); err != nil {
		return err
	}
	keys, err := s.repo.Delete(ctx, catID)
	if err != nil {
		return err
	}
	blob.DeleteAll(ctx, s.blobs, keys)
	return nil
}
