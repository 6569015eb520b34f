package photos

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

const MaxUploadBytes = upload.MaxBytes

var (
	ErrNotFound     = apperr.NotFound("photo_not_found")
	ErrInvalidFile  = upload.ErrInvalidFile
	ErrFileTooLarge = upload.ErrFileTooLarge
)

type Gate interface {
	Authorize(ctx context.Context, id auth.Identity, catID string) error
	AuthorizeManage(ctx context.Context, id auth.Identity, catID string) (string, error)
}

type Service struct {
	repo  Repository
	gate  Gate
	blobs blob.Store
	now   func() time.Time
}

func NewService(repo Repository, gate Gate, blobs blob.Store) *Service {
	return &Service{repo: repo, gate: gate, blobs: blobs, now: time.Now}
}

// Upload: cualquiera con acceso al gato puede subir.
func (s *Service) Upload(ctx context.Context, id auth.Identity, catID string, r io.Reader) (Photo, error) {
	if err := s.gate.Authorize(ctx, id, catID); err != nil {
		return Photo{}, err
	}

	img, err := upload.ReadImage(r)
	if err != nil {
		return Photo{}, err
	}

	photoID := uuid.NewString()
	key := "cats/" + catID + "/" + photoID + img.Ext
	path, err := s.blobs.Put(ctx, key, bytes.NewReader(img.Data), img.ContentType)
	if err != nil {
		return Photo{}, fmt.Errorf("photos: put blob: %w", err)
	}

	p, err := s.repo.Create(ctx, Photo{
		ID:         photoID,
		CatID:      catID,
		Key:        key,
		Path:       path,
		UploadedBy: id.UserID,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		_ = s.blobs.Delete(ctx, key)
		return Photo{}, fmt.Errorf("photos: create: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, id auth.Identity, catID string) ([]Photo, error) {
	if err := s.gate.Authorize(ctx, id, catID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, catID)
}

// Reorder: solo dueño o admin. Los ids vacíos se saltean.
func (s *Service) Reorder(ctx context.Context, id auth.Identity, catID string, ids []string) error {
	if _, err := s.gate.AuthorizeManage(ctx, id, catID); err != nil {
		return err
	}
	clean := make([]string, 0, len(ids))
	for _, pid := range ids {
		if pid = strings.TrimSpace(pid); pid != "" {
			clean = append(clean, pid)
		}
	}
	if len(clean) == 0 {
		return nil
	}
	return s.repo.Reorder(ctx, catID, clean)
}

func (s *Service) Delete(ctx context.Context, id auth.Identity, catID, photoID string) error {
	if _, err := s.gate.AuthorizeManage(ctx, id, catID); err != nil {
		return err
	}
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(photoID))
	if err != nil {
		return err
	}
	if p.CatID != catID {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("photos: delete: %w", err)
	}
	// la fila ya no existe: un blob huérfano no rompe nada
	_ = s.blobs.Delete(ctx, p.Key)
	return nil
}
