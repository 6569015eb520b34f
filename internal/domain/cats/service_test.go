package cats

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	memblob "cat-care/internal/adapters/blob/memory"
	"cat-care/internal/domain/access"
	"cat-care/internal/platform/apperr"
	"cat-care/internal/platform/upload"
	"cat-care/internal/ports/auth"
)

type testRepo struct {
	byID      map[string]Cat
	photoKeys map[string][]string // catID -> claves de fotos
	deleted   []string
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Cat{}, photoKeys: map[string][]string{}}
}

func (r *testRepo) Create(_ context.Context, c Cat) error {
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Cat, error) {
	c, ok := r.byID[id]
	if !ok {
		return Cat{}, ErrNotFound
	}
	return c, nil
}

func (r *testRepo) Update(_ context.Context, c Cat) error {
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) SetAvatar(_ context.Context, catID, key, path string, at time.Time) (string, error) {
	c, ok := r.byID[catID]
	if !ok {
		return "", ErrNotFound
	}
	prev := c.AvatarKey
	c.AvatarKey, c.AvatarPath, c.UpdatedAt = key, path, at
	r.byID[catID] = c
	return prev, nil
}

func (r *testRepo) Delete(_ context.Context, id string) ([]string, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	keys := append([]string{}, r.photoKeys[id]...)
	if c.AvatarKey != "" {
		keys = append(keys, c.AvatarKey)
	}
	delete(r.byID, id)
	delete(r.photoKeys, id)
	r.deleted = append(r.deleted, id)
	return keys, nil
}

func (r *testRepo) List(_ context.Context, f ListFilter) ([]Cat, error) {
	allowed := map[string]bool{}
	for _, id := range f.CatIDs {
		allowed[id] = true
	}
	var out []Cat
	for _, c := range r.byID {
		switch {
		case f.All:
		case f.OwnerID != "" && c.OwnerID == f.OwnerID:
		case allowed[c.ID]:
		default:
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// access.CatOwners sobre el mismo repo
func (r *testRepo) OwnerOf(_ context.Context, catID string) (string, bool, error) {
	c, ok := r.byID[catID]
	return c.OwnerID, ok, nil
}

func (r *testRepo) ListIDsByOwner(_ context.Context, ownerID string) ([]string, error) {
	var out []string
	for _, c := range r.byID {
		if c.OwnerID == ownerID {
			out = append(out, c.ID)
		}
	}
	return out, nil
}

type testLinks map[string][]string // userID -> catIDs

func (l testLinks) IsAssigned(_ context.Context, catID, userID string) (bool, error) {
	for _, id := range l[userID] {
		if id == catID {
			return true, nil
		}
	}
	return false, nil
}

func (l testLinks) ListCatIDsByUser(_ context.Context, userID string) ([]string, error) {
	return l[userID], nil
}

func identity(id string, role auth.Role) auth.Identity {
	return auth.Identity{UserID: id, Role: role, Authenticated: true}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newSvc(links testLinks) (*Service, *testRepo) {
	svc, repo, _ := newSvcWithBlobs(links)
	return svc, repo
}

func newSvcWithBlobs(links testLinks) (*Service, *testRepo, *memblob.Store) {
	repo := newTestRepo()
	blobs := memblob.New("")
	svc := NewService(repo, access.NewEvaluator(repo, links), blobs)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }
	return svc, repo, blobs
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newSvc(testLinks{})
	ctx := context.Background()
	owner := identity("owner", auth.RoleUser)

	if _, err := svc.Create(ctx, owner, Input{Name: "   "}); !errors.Is(err, ErrCatName) {
		t.Fatalf("expected cat_name, got %v", err)
	}
	neg := -1
	if _, err := svc.Create(ctx, owner, Input{Name: "Mruczek", Age: &neg}); !errors.Is(err, ErrInvalidAge) {
		t.Fatalf("expected invalid_age, got %v", err)
	}
	if _, err := svc.Create(ctx, auth.Anonymous(), Input{Name: "Mruczek"}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	age := 3
	c, err := svc.Create(ctx, owner, Input{Name: " Mruczek ", Age: &age})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.OwnerID != "owner" || c.Name != "Mruczek" || c.ID == "" {
		t.Fatalf("unexpected cat %+v", c)
	}
}

func TestList_Scopes(t *testing.T) {
	svc, repo := newSvc(testLinks{"carer": {"c2"}})
	ctx := context.Background()
	repo.byID["c1"] = Cat{ID: "c1", OwnerID: "carer", Name: "A"}
	repo.byID["c2"] = Cat{ID: "c2", OwnerID: "owner", Name: "B"}
	repo.byID["c3"] = Cat{ID: "c3", OwnerID: "owner", Name: "C"}

	got, err := svc.List(ctx, identity("carer", auth.RoleUser), false, true)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 || !got[0].IsOwner || got[1].IsOwner {
		t.Fatalf("user with all=true must still see only own+cared cats: %+v", got)
	}

	got, _ = svc.List(ctx, identity("carer", auth.RoleUser), true, false)
	if len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("owned only: %+v", got)
	}

	got, _ = svc.List(ctx, identity("root", auth.RoleAdmin), false, true)
	if len(got) != 3 {
		t.Fatalf("admin all: %+v", got)
	}

	got, _ = svc.List(ctx, identity("nobody", auth.RoleUser), false, false)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestUpdateDelete_OwnerOrAdminOnly(t *testing.T) {
	svc, repo := newSvc(testLinks{"carer": {"c1"}})
	ctx := context.Background()
	repo.byID["c1"] = Cat{ID: "c1", OwnerID: "owner", Name: "A"}

	if _, err := svc.Update(ctx, identity("carer", auth.RoleUser), "c1", Input{Name: "B"}); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("caregiver must not update, got %v", err)
	}
	c, err := svc.Update(ctx, identity("owner", auth.RoleUser), "c1", Input{Name: "B"})
	if err != nil || c.Name != "B" || c.OwnerID != "owner" {
		t.Fatalf("owner update failed: %+v %v", c, err)
	}

	if err := svc.Delete(ctx, identity("carer", auth.RoleUser), "c1"); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("caregiver must not delete, got %v", err)
	}
	if err := svc.Delete(ctx, identity("root", auth.RoleAdmin), "c1"); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected one delete, got %v", repo.deleted)
	}
	if err := svc.Delete(ctx, identity("root", auth.RoleAdmin), "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not_found after delete, got %v", err)
	}
}

func TestSetAvatar(t *testing.T) {
	svc, repo, blobs := newSvcWithBlobs(testLinks{"carer": {"c1"}})
	ctx := context.Background()
	repo.byID["c1"] = Cat{ID: "c1", OwnerID: "owner", Name: "A"}

	// el permiso va antes que el archivo
	if _, err := svc.SetAvatar(ctx, identity("carer", auth.RoleUser), "c1", nil); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("caregiver must not set avatar, got %v", err)
	}
	if _, err := svc.SetAvatar(ctx, identity("carer", auth.RoleUser), "ghost", nil); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("missing cat must look forbidden, got %v", err)
	}
	if _, err := svc.SetAvatar(ctx, identity("owner", auth.RoleUser), "c1", nil); !errors.Is(err, upload.ErrInvalidFile) {
		t.Fatalf("expected invalid_file without a file, got %v", err)
	}
	if _, err := svc.SetAvatar(ctx, identity("owner", auth.RoleUser), "c1", strings.NewReader("GIF89a....")); !errors.Is(err, upload.ErrInvalidFile) {
		t.Fatalf("expected invalid_file for gif, got %v", err)
	}

	first, err := svc.SetAvatar(ctx, identity("owner", auth.RoleUser), "c1", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("set avatar: %v", err)
	}
	if !strings.HasPrefix(first.AvatarKey, "cats/c1/avatar-") || !strings.HasSuffix(first.AvatarKey, ".png") {
		t.Fatalf("unexpected avatar key %q", first.AvatarKey)
	}
	if first.AvatarPath != "/uploads/"+first.AvatarKey {
		t.Fatalf("unexpected avatar path %q", first.AvatarPath)
	}

	second, err := svc.SetAvatar(ctx, identity("root", auth.RoleAdmin), "c1", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("replace avatar: %v", err)
	}
	if _, _, ok := blobs.Get(first.AvatarKey); ok {
		t.Fatalf("replaced avatar blob must be removed")
	}
	if _, _, ok := blobs.Get(second.AvatarKey); !ok {
		t.Fatalf("new avatar blob missing")
	}
}

func TestDelete_RemovesBlobs(t *testing.T) {
	svc, repo, blobs := newSvcWithBlobs(testLinks{})
	ctx := context.Background()
	repo.byID["c1"] = Cat{ID: "c1", OwnerID: "owner", Name: "A"}
	repo.byID["c2"] = Cat{ID: "c2", OwnerID: "owner", Name: "B"}

	c, err := svc.SetAvatar(ctx, identity("owner", auth.RoleUser), "c1", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("set avatar: %v", err)
	}
	for _, k := range []string{"cats/c1/p1.png", "cats/c2/p2.png"} {
		if _, err := blobs.Put(ctx, k, bytes.NewReader(pngHeader), "image/png"); err != nil {
			t.Fatalf("seed blob: %v", err)
		}
	}
	repo.photoKeys["c1"] = []string{"cats/c1/p1.png"}
	repo.photoKeys["c2"] = []string{"cats/c2/p2.png"}

	if err := svc.Delete(ctx, identity("owner", auth.RoleUser), "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, k := range []string{"cats/c1/p1.png", c.AvatarKey} {
		if _, _, ok := blobs.Get(k); ok {
			t.Fatalf("blob %s must be removed with the cat", k)
		}
	}
	if _, _, ok := blobs.Get("cats/c2/p2.png"); !ok {
		t.Fatalf("other cat's photo must stay")
	}
}
