package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cat-care/internal/platform/apperr"
	"cat-care/internal/platform/logger"
	"cat-care/internal/platform/metrics"
	"cat-care/internal/ports/auth"
	"cat-care/internal/ports/blob"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrNotFound              = apperr.ErrNotFound
	ErrMissingUserID         = apperr.BadRequest("missing_user_id")
	ErrInvalidUsername       = apperr.BadRequest("invalid_username")
	ErrInvalidEmail          = apperr.BadRequest("invalid_email")
	ErrInvalidName           = apperr.BadRequest("invalid_name")
	ErrInvalidRole           = apperr.BadRequest("invalid_role")
	ErrWeakPassword          = apperr.BadRequest("weak_password")
	ErrAlreadyExists         = apperr.Conflict("already_exists")
	ErrCannotBlockSelf       = apperr.BadRequest("cannot_block_self")
	ErrCannotDeleteSelf      = apperr.BadRequest("cannot_delete_self")
	ErrProtectedAccount      = apperr.Forbidden("protected_account")
	ErrCannotDeleteLastAdmin = apperr.BadRequest("cannot_delete_last_admin")
	ErrDeleteFailed          = apperr.Internal("delete_failed")
	ErrMissingPassword       = apperr.BadRequest("missing_password")
	ErrInvalidOldPassword    = apperr.BadRequest("invalid_old_password")
	ErrPasswordMismatch      = apperr.BadRequest("password_mismatch")
)

const MaxListed = 500

type Service struct {
	repo           Repository
	hasher         auth.PasswordHasher
	blobs          blob.Store
	validate       *validator.Validate
	protectedEmail string
	log            logger.Logger
	now            func() time.Time
}

// NewService: protectedEmail es la cuenta admin por defecto, que nunca se
// bloquea ni se borra.
func NewService(repo Repository, hasher auth.PasswordHasher, blobs blob.Store, protectedEmail string, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:           repo,
		hasher:         hasher,
		blobs:          blobs,
		validate:       newValidator(),
		protectedEmail: strings.ToLower(strings.TrimSpace(protectedEmail)),
		log:            log.With(map[string]any{"module": "users"}),
		now:            time.Now,
	}
}

func requireAdmin(id auth.Identity) error {
	if !id.Valid() {
		return apperr.ErrUnauthorized
	}
	if !id.IsAdmin() {
		return apperr.ErrForbidden
	}
	return nil
}

func (s *Service) isProtected(u User) bool {
	return s.protectedEmail != "" && strings.EqualFold(u.Email, s.protectedEmail)
}

type CreateInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      string
	Password  string
}

func (s *Service) Create(ctx context.Context, id auth.Identity, in CreateInput) (User, error) {
	if err := requireAdmin(id); err != nil {
		return User{}, err
	}
	u, err := s.create(ctx, in)
	if err != nil {
		return User{}, err
	}

	metrics.AdminAction("create", "ok")
	s.log.Info("user created", map[string]any{"by": id.UserID, "user_id": u.ID, "role": string(u.Role)})
	return u, nil
}

// create valida y guarda; el caller decide quién puede y qué rol pide.
func (s *Service) create(ctx context.Context, in CreateInput) (User, error) {
	ci := createInput{
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      strings.ToLower(strings.TrimSpace(in.Role)),
	}
	if ci.Role == "" {
		ci.Role = string(auth.RoleUser)
	}
	if err := s.check(ci); err != nil {
		return User{}, err
	}
	if err := CheckPassword(in.Password, ci.Username, ci.Email); err != nil {
		return User{}, err
	}

	exists, err := s.repo.ExistsUsernameOrEmail(ctx, ci.Username, ci.Email)
	if err != nil {
		return User{}, fmt.Errorf("users: exists: %w", err)
	}
	if exists {
		return User{}, ErrAlreadyExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("users: hash: %w", err)
	}

	now := s.now().UTC().Truncate(time.Second)
	u := User{
		ID:           uuid.NewString(),
		Username:     ci.Username,
		Email:        ci.Email,
		PasswordHash: hash,
		FirstName:    ci.FirstName,
		LastName:     ci.LastName,
		Role:         auth.Role(ci.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// la unique constraint del store sigue siendo la última palabra
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

type UpdateInput struct {
	FirstName   string
	LastName    string
	NewPassword string // vacío = no cambia
}

func (s *Service) Update(ctx context.Context, id auth.Identity, targetID string, in UpdateInput) (User, error) {
	if err := requireAdmin(id); err != nil {
		return User{}, err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return User{}, ErrMissingUserID
	}

	pi := profileInput{FirstName: strings.TrimSpace(in.FirstName), LastName: strings.TrimSpace(in.LastName)}
	if err := s.check(pi); err != nil {
		return User{}, err
	}

	u, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return User{}, err
	}

	var hash *string
	if in.NewPassword != "" {
		if err := CheckPassword(in.NewPassword, u.Username, u.Email); err != nil {
			return User{}, err
		}
		h, err := s.hasher.Hash(in.NewPassword)
		if err != nil {
			return User{}, fmt.Errorf("users: hash: %w", err)
		}
		hash = &h
	}

	now := s.now().UTC().Truncate(time.Second)
	ch := AccountChange{FirstName: &pi.FirstName, LastName: &pi.LastName, PasswordHash: hash}
	if _, err := s.repo.UpdateAccount(ctx, targetID, ch, now); err != nil {
		return User{}, err
	}

	u.FirstName, u.LastName, u.UpdatedAt = pi.FirstName, pi.LastName, now
	if hash != nil {
		u.PasswordHash = *hash
	}
	return u, nil
}

// Block cambia is_blocked. La cuenta protegida falla en ambos sentidos.
func (s *Service) Block(ctx context.Context, id auth.Identity, targetID string, blocked bool) error {
	err := s.block(ctx, id, targetID, blocked)
	metrics.AdminAction("block", outcome(err))
	return err
}

func (s *Service) block(ctx context.Context, id auth.Identity, targetID string, blocked bool) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return ErrMissingUserID
	}
	if targetID == id.UserID {
		return ErrCannotBlockSelf
	}

	u, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if s.isProtected(u) {
		return ErrProtectedAccount
	}
	return s.repo.SetBlocked(ctx, targetID, blocked, s.now().UTC())
}

// Delete borra al usuario y todo lo que posee. El chequeo de último admin y
// el borrado no se serializan contra otro Delete concurrente.
func (s *Service) Delete(ctx context.Context, id auth.Identity, targetID string) error {
	err := s.delete(ctx, id, targetID)
	metrics.AdminAction("delete", outcome(err))
	return err
}

func (s *Service) delete(ctx context.Context, id auth.Identity, targetID string) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return ErrMissingUserID
	}
	if targetID == id.UserID {
		return ErrCannotDeleteSelf
	}

	u, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if s.isProtected(u) {
		return ErrProtectedAccount
	}
	if u.Role == auth.RoleAdmin {
		admins, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return fmt.Errorf("users: count admins: %w", err)
		}
		if admins <= 1 {
			return ErrCannotDeleteLastAdmin
		}
	}

	keys, err := s.repo.DeleteCascade(ctx, targetID)
	if err != nil {
		s.log.Error("delete cascade failed", map[string]any{"user_id": targetID, "err": err.Error()})
		return ErrDeleteFailed
	}
	s.log.Info("user deleted", map[string]any{"by": id.UserID, "user_id": targetID, "blobs": len(keys)})
	s.dropBlobs(ctx, keys)
	return nil
}

func (s *Service) List(ctx context.Context, id auth.Identity) ([]User, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, MaxListed)
}

func (s *Service) Stats(ctx context.Context, id auth.Identity) (Stats, error) {
	if err := requireAdmin(id); err != nil {
		return Stats{}, err
	}
	return s.repo.Stats(ctx)
}

// RoleOf lo consume el registro de cuidadores.
func (s *Service) RoleOf(ctx context.Context, userID string) (auth.Role, bool, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return u.Role, true, nil
}

// EnsureDefaultAdmin crea la cuenta protegida si todavía no existe ningún
// usuario con ese email. Sin contraseña configurada no hace nada.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	if s.protectedEmail == "" || password == "" {
		return nil
	}
	exists, err := s.repo.ExistsUsernameOrEmail(ctx, username, s.protectedEmail)
	if err != nil {
		return fmt.Errorf("users: bootstrap exists: %w", err)
	}
	if exists {
		return nil
	}

	system := auth.Identity{UserID: "system", Role: auth.RoleAdmin, Authenticated: true}
	_, err = s.Create(ctx, system, CreateInput{
		Username:  username,
		Email:     s.protectedEmail,
		FirstName: "Admin",
		LastName:  "Admin",
		Role:      string(auth.RoleAdmin),
		Password:  password,
	})
	return err
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperr.CodeOf(err))
}
