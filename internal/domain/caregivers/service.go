package caregivers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cat-care/internal/platform/apperr"
	"cat-care/internal/ports/auth"
)

var (
	ErrMissingParams    = apperr.BadRequest("missing_params")
	ErrInvalidCaregiver = apperr.BadRequest("invalid_caregiver")
)

type Gate interface {
	AuthorizeManage(ctx context.Context, id auth.Identity, catID string) (string, error)
}

// UserRoles resuelve el rol almacenado de un usuario. found=false si no existe.
type UserRoles interface {
	RoleOf(ctx context.Context, userID string) (role auth.Role, found bool, err error)
}

type Service struct {
	repo  Repository
	gate  Gate
	roles UserRoles
	now   func() time.Time
}

func NewService(repo Repository, gate Gate, roles UserRoles) *Service {
	return &Service{repo: repo, gate: gate, roles: roles, now: time.Now}
}

// Assign delega acceso al gato. El dueño nunca es su propio cuidador y los
// admins no ocupan lugar de cuidador.
func (s *Service) Assign(ctx context.Context, id auth.Identity, catID, userID string) error {
	catID, userID = strings.TrimSpace(catID), strings.TrimSpace(userID)
	if catID == "" || userID == "" {
		return ErrMissingParams
	}

	ownerID, err := s.gate.AuthorizeManage(ctx, id, catID)
	if err != nil {
		return err
	}
	if userID == ownerID {
		return ErrInvalidCaregiver
	}

	role, found, err := s.roles.RoleOf(ctx, userID)
	if err != nil {
		return fmt.Errorf("caregivers: role of %s: %w", userID, err)
	}
	if !found || role != auth.RoleUser {
		return ErrInvalidCaregiver
	}

	return s.repo.Assign(ctx, catID, userID, s.now().UTC())
}

func (s *Service) Unassign(ctx context.Context, id auth.Identity, catID, userID string) error {
	catID, userID = strings.TrimSpace(catID), strings.TrimSpace(userID)
	if catID == "" || userID == "" {
		return ErrMissingParams
	}
	if _, err := s.gate.AuthorizeManage(ctx, id, catID); err != nil {
		return err
	}
	return s.repo.Unassign(ctx, catID, userID)
}

func (s *Service) Roster(ctx context.Context, id auth.Identity, catID string) (Roster, error) {
	catID = strings.TrimSpace(catID)
	if catID == "" {
		return Roster{}, ErrMissingParams
	}
	ownerID, err := s.gate.AuthorizeManage(ctx, id, catID)
	if err != nil {
		return Roster{}, err
	}

	assigned, err := s.repo.ListAssigned(ctx, catID)
	if err != nil {
		return Roster{}, fmt.Errorf("caregivers: assigned: %w", err)
	}
	available, err := s.repo.ListAvailable(ctx, catID, ownerID, MaxAvailable)
	if err != nil {
		return Roster{}, fmt.Errorf("caregivers: available: %w", err)
	}

	return Roster{CatID: catID, OwnerID: ownerID, Assigned: assigned, Available: available}, nil
}
