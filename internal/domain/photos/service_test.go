package photos

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"cat-care/internal/domain/access"
	"cat-care/internal/platform/apperr"
	"cat-care/internal/ports/auth"
)

var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A" + "rest-of-image")

type testRepo struct {
	byID map[string]Photo
}

func (r *testRepo) Create(_ context.Context, p Photo) (Photo, error) {
	next := 0
	for _, q := range r.byID {
		if q.CatID == p.CatID && q.SortOrder >= next {
			next = q.SortOrder + 1
		}
	}
	p.SortOrder = next
	r.byID[p.ID] = p
	return p, nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Photo, error) {
	p, ok := r.byID[id]
	if !ok {
		return Photo{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) List(_ context.Context, catID string) ([]Photo, error) {
	out := []Photo{}
	for _, p := range r.byID {
		if p.CatID == catID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *testRepo) Reorder(_ context.Context, catID string, ids []string) error {
	for i, id := range ids {
		p, ok := r.byID[id]
		if !ok || p.CatID != catID {
			continue
		}
		p.SortOrder = i
		r.byID[id] = p
	}
	return nil
}

type testBlobs struct {
	objects map[string][]byte
}

func (b *testBlobs) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.objects[key] = data
	return "/uploads/" + key, nil
}

func (b *testBlobs) Delete(_ context.Context, key string) error {
	delete(b.objects, key)
	return nil
}

// owner es dueño de cat-1, carer lo cuida.
type testGate struct{}

func (testGate) Authorize(_ context.Context, id auth.Identity, catID string) error {
	if !id.Valid() {
		return apperr.ErrUnauthorized
	}
	if id.IsAdmin() || (catID == "cat-1" && (id.UserID == "owner" || id.UserID == "carer")) {
		return nil
	}
	return access.ErrForbidden
}

func (testGate) AuthorizeManage(_ context.Context, id auth.Identity, catID string) (string, error) {
	if catID != "cat-1" {
		return "", access.ErrCatNotFound
	}
	if id.IsAdmin() || id.UserID == "owner" {
		return "owner", nil
	}
	return "", access.ErrForbidden
}

func as(id string) auth.Identity {
	return auth.Identity{UserID: id, Role: auth.RoleUser, Authenticated: true}
}

func newSvc() (*Service, *testRepo, *testBlobs) {
	repo := &testRepo{byID: map[string]Photo{}}
	blobs := &testBlobs{objects: map[string][]byte{}}
	return NewService(repo, testGate{}, blobs), repo, blobs
}

func TestUpload_Validation(t *testing.T) {
	svc, _, blobs := newSvc()
	ctx := context.Background()

	if _, err := svc.Upload(ctx, as("carer"), "cat-1", strings.NewReader("")); !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("empty: expected invalid_file, got %v", err)
	}
	if _, err := svc.Upload(ctx, as("carer"), "cat-1", strings.NewReader("GIF89a....")); !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("gif: expected invalid_file, got %v", err)
	}
	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxUploadBytes)...)
	if _, err := svc.Upload(ctx, as("carer"), "cat-1", bytes.NewReader(big)); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("big: expected file_too_large, got %v", err)
	}
	if _, err := svc.Upload(ctx, as("stranger"), "cat-1", bytes.NewReader(pngHeader)); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("stranger: expected forbidden, got %v", err)
	}
	if len(blobs.objects) != 0 {
		t.Fatalf("rejected uploads must not reach the blob store")
	}
}

func TestUploadReorderDelete(t *testing.T) {
	svc, repo, blobs := newSvc()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		p, err := svc.Upload(ctx, as("carer"), "cat-1", bytes.NewReader(pngHeader))
		if err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
		if p.SortOrder != i || !strings.HasSuffix(p.Path, ".png") || p.UploadedBy != "carer" {
			t.Fatalf("unexpected photo %+v", p)
		}
		ids = append(ids, p.ID)
	}

	if err := svc.Reorder(ctx, as("carer"), "cat-1", []string{ids[2], ids[0]}); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("caregiver cannot reorder, got %v", err)
	}
	if err := svc.Reorder(ctx, as("owner"), "cat-1", []string{ids[2], " ", ids[0], ids[1]}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	list, _ := svc.List(ctx, as("carer"), "cat-1")
	if list[0].ID != ids[2] || list[1].ID != ids[0] || list[2].ID != ids[1] || list[2].SortOrder != 2 {
		t.Fatalf("unexpected order after reorder: %+v", list)
	}

	if err := svc.Delete(ctx, as("carer"), "cat-1", ids[0]); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("caregiver cannot delete, got %v", err)
	}
	if err := svc.Delete(ctx, as("owner"), "cat-1", ids[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.byID[ids[0]]; ok || len(blobs.objects) != 2 {
		t.Fatalf("photo row and blob must be gone")
	}
	if err := svc.Delete(ctx, as("owner"), "cat-1", ids[0]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected photo_not_found, got %v", err)
	}
}
