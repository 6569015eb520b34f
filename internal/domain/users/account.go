package users

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cat-care/internal/platform/apperr"
	"cat-care/internal/platform/upload"
	"cat-care/internal/ports/auth"
	"cat-care/internal/ports/blob"

	"github.com/google/uuid"
)

// Me devuelve la fila del caller. Una sesión válida sin fila es not_found.
func (s *Service) Me(ctx context.Context, id auth.Identity) (User, error) {
	if !id.Valid() {
		return User{}, apperr.ErrUnauthorized
	}
	return s.repo.GetByID(ctx, id.UserID)
}

// AccountInput: cada grupo es opcional. Nombre y apellido van juntos, la
// contraseña nueva exige la vieja, Avatar nil = no cambia.
type AccountInput struct {
	FirstName   string
	LastName    string
	OldPassword string
	NewPassword string
	Avatar      io.Reader
}

// UpdateAccount aplica nombre, contraseña y avatar en una sola escritura.
// Si la escritura falla, el avatar recién subido se borra.
func (s *Service) UpdateAccount(ctx context.Context, id auth.Identity, in AccountInput) (User, error) {
	if !id.Valid() {
		return User{}, apperr.ErrUnauthorized
	}
	u, err := s.repo.GetByID(ctx, id.UserID)
	if err != nil {
		return User{}, err
	}

	var ch AccountChange
	changed := false

	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if first != "" || last != "" {
		pi := profileInput{FirstName: first, LastName: last}
		if err := s.check(pi); err != nil {
			return User{}, err
		}
		ch.FirstName, ch.LastName = &pi.FirstName, &pi.LastName
		changed = true
	}

	if strings.TrimSpace(in.OldPassword) != "" || strings.TrimSpace(in.NewPassword) != "" {
		if strings.TrimSpace(in.OldPassword) == "" || strings.TrimSpace(in.NewPassword) == "" {
			return User{}, ErrMissingPassword
		}
		if !s.hasher.Compare(u.PasswordHash, in.OldPassword) {
			return User{}, ErrInvalidOldPassword
		}
		if err := CheckPassword(in.NewPassword, u.Username, u.Email); err != nil {
			return User{}, err
		}
		h, err := s.hasher.Hash(in.NewPassword)
		if err != nil {
			return User{}, fmt.Errorf("users: hash: %w", err)
		}
		ch.PasswordHash = &h
		changed = true
	}

	var newKey string
	if in.Avatar != nil {
		key, path, err := s.putAvatar(ctx, u.ID, in.Avatar)
		if err != nil {
			return User{}, err
		}
		newKey = key
		ch.AvatarKey, ch.AvatarPath = &key, &path
		changed = true
	}

	if !changed {
		return u, nil
	}

	now := s.now().UTC().Truncate(time.Second)
	prev, err := s.repo.UpdateAccount(ctx, u.ID, ch, now)
	if err != nil {
		if newKey != "" {
			_ = s.blobs.Delete(ctx, newKey)
		}
		return User{}, err
	}
	s.dropBlobs(ctx, []string{prev})

	if ch.FirstName != nil {
		u.FirstName, u.LastName = *ch.FirstName, *ch.LastName
	}
	if ch.PasswordHash != nil {
		u.PasswordHash = *ch.PasswordHash
	}
	if ch.AvatarKey != nil {
		u.AvatarKey, u.AvatarPath = *ch.AvatarKey, *ch.AvatarPath
	}
	u.UpdatedAt = now
	return u, nil
}

// SetAvatar es UpdateAccount con solo el archivo; sin archivo es invalid_file.
func (s *Service) SetAvatar(ctx context.Context, id auth.Identity, r io.Reader) (User, error) {
	if r == nil {
		return User{}, upload.ErrInvalidFile
	}
	return s.UpdateAccount(ctx, id, AccountInput{Avatar: r})
}

func (s *Service) putAvatar(ctx context.Context, userID string, r io.Reader) (string, string, error) {
	img, err := upload.ReadImage(r)
	if err != nil {
		return "", "", err
	}
	// clave nueva por subida: el store no pisa objetos
	key := "avatars/u-" + userID + "-" + uuid.NewString() + img.Ext
	path, err := s.blobs.Put(ctx, key, bytes.NewReader(img.Data), img.ContentType)
	if err != nil {
		return "", "", fmt.Errorf("users: put avatar: %w", err)
	}
	return key, path, nil
}

// dropBlobs corre después del commit: un fallo deja un blob huérfano y se loguea.
func (s *Service) dropBlobs(ctx context.Context, keys []string) {
	if failed := blob.DeleteAll(ctx, s.blobs, keys); len(failed) > 0 {
		s.log.Warn("orphaned blobs", map[string]any{"keys": failed})
	}
}

type RegisterInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	ConfirmPassword string
}

// Register es el alta pública: siempre rol user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if in.Password != in.ConfirmPassword {
		return User{}, ErrPasswordMismatch
	}
	u, err := s.create(ctx, CreateInput{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      string(auth.RoleUser),
		Password:  in.Password,
	})
	if err != nil {
		return User{}, err
	}
	s.log.Info("user registered", map[string]any{"user_id": u.ID})
	return u, nil
}
