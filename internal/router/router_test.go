package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cat-care/internal/adapters/auth/bcrypthash"
	memblob "cat-care/internal/adapters/blob/memory"
	"cat-care/internal/router"

	"golang.org/x/crypto/bcrypt"
)

const adminHeaderID = "ops-admin"

func newServer(t *testing.T) (*httptest.Server, *router.App) {
	t.Helper()
	ts, app, _ := newServerWithBlobs(t)
	return ts, app
}

func newServerWithBlobs(t *testing.T) (*httptest.Server, *router.App, *memblob.Store) {
	t.Helper()
	blobs := memblob.New("")
	app := router.New(router.Options{
		Blob:              blobs,
		Hasher:            bcrypthash.New(bcrypt.MinCost),
		DefaultAdminEmail: "admin@example.com",
	})
	ts := httptest.NewServer(app.Handler)
	t.Cleanup(ts.Close)
	return ts, app, blobs
}

func TestHTTP_ScenarioA_CaregiverAccessFollowsAssignment(t *testing.T) {
	ts, _ := newServer(t)

	ownerID := createUser(t, ts.URL, "olga", "user")
	carerID := createUser(t, ts.URL, "piotr", "user")

	// 1) Owner crea el gato
	catID := createCat(t, ts.URL, ownerID, "Mruczek")

	// 2) Cuidador sin vínculo: sin acceso
	if canAccess(t, ts.URL, carerID, catID) {
		t.Fatalf("expected no access before assignment")
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/cats/"+catID+"/activities", carerID, "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before assignment, got %d", st)
		}
	}

	// 3) Owner asigna cuidador
	{
		st, body := doReq(t, ts.URL, "POST", "/cats/"+catID+"/caregivers", ownerID, "", map[string]any{"user_id": carerID})
		if st != http.StatusOK {
			t.Fatalf("expected 200 assign, got %d body=%s", st, string(body))
		}
	}

	// 4) Cuidador ve el gato y sus actividades
	if !canAccess(t, ts.URL, carerID, catID) {
		t.Fatalf("expected access after assignment")
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/cats/"+catID+"/activities", carerID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 upcoming by caregiver, got %d body=%s", st, string(body))
		}
	}

	// 5) El cuidador no gestiona el roster
	{
		st, _ := doReq(t, ts.URL, "GET", "/cats/"+catID+"/caregivers", carerID, "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 roster by caregiver, got %d", st)
		}
	}

	// 6) Owner lo quita: pierde acceso en el acto
	{
		st, body := doReq(t, ts.URL, "DELETE", "/cats/"+catID+"/caregivers/"+carerID, ownerID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 unassign, got %d body=%s", st, string(body))
		}
	}
	if canAccess(t, ts.URL, carerID, catID) {
		t.Fatalf("expected no access after unassignment")
	}

	// 7) Admin siempre accede
	if !canAccess(t, ts.URL, adminHeaderID, catID) {
		t.Fatalf("expected admin access")
	}
}

func TestHTTP_Caregivers_RejectOwnerAndAdmins(t *testing.T) {
	ts, _ := newServer(t)

	ownerID := createUser(t, ts.URL, "olga", "user")
	adminID := createUser(t, ts.URL, "marta", "admin")
	catID := createCat(t, ts.URL, ownerID, "Luna")

	for _, target := range []string{ownerID, adminID, "missing-user"} {
		st, body := doReq(t, ts.URL, "POST", "/cats/"+catID+"/caregivers", ownerID, "", map[string]any{"user_id": target})
		if st != http.StatusBadRequest || errorCode(body) != "invalid_caregiver" {
			t.Fatalf("expected invalid_caregiver for %s, got %d body=%s", target, st, string(body))
		}
	}
}

func TestHTTP_ScenarioB_BlockGuards(t *testing.T) {
	ts, app := newServer(t)

	if err := app.EnsureDefaultAdmin(context.Background(), "admin", "Def@ultAdm1n"); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	// idempotente
	if err := app.EnsureDefaultAdmin(context.Background(), "admin", "Def@ultAdm1n"); err != nil {
		t.Fatalf("bootstrap admin twice: %v", err)
	}

	adminID := createUser(t, ts.URL, "marta", "admin")
	protectedID := findUserID(t, ts.URL, "admin@example.com")

	{
		st, body := doReq(t, ts.URL, "POST", "/admin/users/"+adminID+"/block", adminID, "admin", map[string]any{"blocked": true})
		if st != http.StatusBadRequest || errorCode(body) != "cannot_block_self" {
			t.Fatalf("expected cannot_block_self, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/admin/users/"+protectedID+"/block", adminID, "admin", map[string]any{"blocked": true})
		if st != http.StatusForbidden || errorCode(body) != "protected_account" {
			t.Fatalf("expected protected_account, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "DELETE", "/admin/users/"+protectedID, adminID, "admin", nil)
		if st != http.StatusForbidden || errorCode(body) != "protected_account" {
			t.Fatalf("expected protected_account on delete, got %d body=%s", st, string(body))
		}
	}

	// un user normal no entra al panel
	userID := createUser(t, ts.URL, "olga", "user")
	{
		st, _ := doReq(t, ts.URL, "GET", "/admin/users", userID, "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for non-admin, got %d", st)
		}
	}
}

func TestHTTP_ScenarioC_LastAdminCannotBeDeleted(t *testing.T) {
	ts, _ := newServer(t)

	first := createUser(t, ts.URL, "marta", "admin")
	second := createUser(t, ts.URL, "jan", "admin")

	// 2 admins => se puede borrar uno
	{
		st, body := doReq(t, ts.URL, "DELETE", "/admin/users/"+second, first, "admin", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete second admin, got %d body=%s", st, string(body))
		}
	}

	// queda uno: ni siquiera otra sesión admin lo puede borrar
	{
		st, body := doReq(t, ts.URL, "DELETE", "/admin/users/"+first, adminHeaderID, "admin", nil)
		if st != http.StatusBadRequest || errorCode(body) != "cannot_delete_last_admin" {
			t.Fatalf("expected cannot_delete_last_admin, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "DELETE", "/admin/users/"+first, first, "admin", nil)
		if st != http.StatusBadRequest || errorCode(body) != "cannot_delete_self" {
			t.Fatalf("expected cannot_delete_self, got %d body=%s", st, string(body))
		}
	}

	var stats struct {
		TotalUsers int `json:"total_users"`
		AdminUsers int `json:"admin_users"`
	}
	st, body := doReq(t, ts.URL, "GET", "/admin/stats", first, "admin", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 stats, got %d", st)
	}
	_ = json.Unmarshal(body, &stats)
	if stats.TotalUsers != 1 || stats.AdminUsers != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestHTTP_DeleteUserCascadesOwnedCats(t *testing.T) {
	ts, _ := newServer(t)

	ownerID := createUser(t, ts.URL, "olga", "user")
	catID := createCat(t, ts.URL, ownerID, "Luna")
	createActivity(t, ts.URL, ownerID, catID, map[string]any{"title": "Vet", "date": "2030-01-10", "time": "10:00"})

	st, body := doReq(t, ts.URL, "DELETE", "/admin/users/"+ownerID, adminHeaderID, "admin", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 delete user, got %d body=%s", st, string(body))
	}

	st, _ = doReq(t, ts.URL, "GET", "/cats/"+catID, adminHeaderID, "admin", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected cat gone after cascade, got %d", st)
	}
	st, body = doReq(t, ts.URL, "GET", "/activities", adminHeaderID, "admin", nil)
	if st != http.StatusOK || len(items(t, body)) != 0 {
		t.Fatalf("expected no activities after cascade, got %d body=%s", st, string(body))
	}
}

func TestHTTP_ScenarioD_MarkDoneOnUpdate(t *testing.T) {
	ts, _ := newServer(t)

	ownerID := createUser(t, ts.URL, "olga", "user")
	carerID := createUser(t, ts.URL, "piotr", "user")
	catID := createCat(t, ts.URL, ownerID, "Mruczek")
	if st, _ := doReq(t, ts.URL, "POST", "/cats/"+catID+"/caregivers", ownerID, "", map[string]any{"user_id": carerID}); st != http.StatusOK {
		t.Fatalf("assign failed: %d", st)
	}

	created := createActivity(t, ts.URL, ownerID, catID, map[string]any{
		"title": "Feed",
		"date":  "2030-01-10",
		"time":  "08:30",
	})
	if created.Status != "planned" || created.DoneAt != nil || created.DoneBy != nil {
		t.Fatalf("expected planned without done fields, got %+v", created)
	}

	before := time.Now().Add(-time.Second)
	st, body := doReq(t, ts.URL, "PUT", "/cats/"+catID+"/activities/"+created.ID, carerID, "", map[string]any{
		"title":            "Feed",
		"date":             "2030-01-10",
		"time":             "08:30",
		"mark_done":        true,
		"done_description": "ate everything",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 update, got %d body=%s", st, string(body))
	}
	var updated activityResp
	_ = json.Unmarshal(body, &updated)
	if updated.Status != "done" || updated.DoneAt == nil || updated.DoneBy == nil || *updated.DoneBy != carerID {
		t.Fatalf("expected done by caregiver, got %+v", updated)
	}
	if updated.DoneAt.Before(before) {
		t.Fatalf("done_at must be the update time, got %v", updated.DoneAt)
	}

	// cerrada no se puede cancelar
	st, body = doReq(t, ts.URL, "POST", "/cats/"+catID+"/activities/"+created.ID+"/cancel", ownerID, "", nil)
	if st != http.StatusConflict || errorCode(body) != "invalid_transition" {
		t.Fatalf("expected invalid_transition, got %d body=%s", st, string(body))
	}

	// activity de otro gato => activity_not_found
	otherCat := createCat(t, ts.URL, ownerID, "Luna")
	st, body = doReq(t, ts.URL, "PUT", "/cats/"+otherCat+"/activities/"+created.ID, ownerID, "", map[string]any{
		"title": "Feed", "date": "2030-01-10", "time": "08:30",
	})
	if st != http.StatusNotFound || errorCode(body) != "activity_not_found" {
		t.Fatalf("expected activity_not_found, got %d body=%s", st, string(body))
	}
}

func TestHTTP_CalendarMatchesDayDetail(t *testing.T) {
	ts, _ := newServer(t)

	ownerID := createUser(t, ts.URL, "olga", "user")
	catID := createCat(t, ts.URL, ownerID, "Mruczek")
	createActivity(t, ts.URL, ownerID, catID, map[string]any{"title": "Vet", "date": "2030-02-01", "time": "09:00"})
	createActivity(t, ts.URL, ownerID, catID, map[string]any{"title": "Brush", "date": "2030-02-01", "time": "18:00"})
	createActivity(t, ts.URL, ownerID, catID, map[string]any{"title": "Feed", "date": "2030-02-03", "time": "07:00"})

	st, body := doReq(t, ts.URL, "GET", "/calendar?from=2030-02-01&to=2030-02-05", ownerID, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 calendar, got %d body=%s", st, string(body))
	}
	var days struct {
		Items []struct {
			Day                string `json:"day"`
			PlannedFutureCount int    `json:"planned_future_count"`
			DoneLikeCount      int    `json:"done_like_count"`
		} `json:"items"`
	}
	_ = json.Unmarshal(body, &days)
	if len(days.Items) != 2 || days.Items[0].Day != "2030-02-01" || days.Items[0].PlannedFutureCount != 2 {
		t.Fatalf("unexpected calendar %s", string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/calendar/day?date=2030-02-01", ownerID, "", nil)
	if st != http.StatusOK || len(items(t, body)) != 2 {
		t.Fatalf("expected 2 activities on day detail, got %d body=%s", st, string(body))
	}

	// otro usuario no ve nada
	strangerID := createUser(t, ts.URL, "piotr", "user")
	_, body = doReq(t, ts.URL, "GET", "/calendar?from=2030-02-01&to=2030-02-05", strangerID, "", nil)
	if len(items(t, body)) != 0 {
		t.Fatalf("expected empty calendar for stranger, got %s", string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/calendar?from=2030-02-05&to=2030-02-01", ownerID, "", nil)
	if st != http.StatusBadRequest || errorCode(body) != "invalid_range" {
		t.Fatalf("expected invalid_range, got %d body=%s", st, string(body))
	}
}

func TestHTTP_AnonymousIsRejected(t *testing.T) {
	ts, _ := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/cats", "", "", nil)
	if st != http.StatusUnauthorized || errorCode(body) != "unauthorized" {
		t.Fatalf("expected 401, got %d body=%s", st, string(body))
	}

	st, _ = doReq(t, ts.URL, "GET", "/health", "", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected public health, got %d", st)
	}
}

func TestHTTP_MissingCat_AdminGets404OthersGet403(t *testing.T) {
	ts, _ := newServer(t)
	userID := createUser(t, ts.URL, "olga", "user")

	st, _ := doReq(t, ts.URL, "GET", "/cats/nope", userID, "", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "GET", "/cats/nope", adminHeaderID, "admin", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 for admin, got %d", st)
	}
}

func TestHTTP_ForeignAndMissingCatLookTheSame(t *testing.T) {
	ts, _ := newServer(t)

	ownerID := createUser(t, ts.URL, "olga", "user")
	strangerID := createUser(t, ts.URL, "piotr", "user")
	catID := createCat(t, ts.URL, ownerID, "Mruczek")

	cases := []struct {
		method  string
		path    string
		payload any
	}{
		{"GET", "/cats/%s", nil},
		{"PUT", "/cats/%s", map[string]any{"name": "Luna"}},
		{"DELETE", "/cats/%s", nil},
		{"GET", "/cats/%s/caregivers", nil},
		{"POST", "/cats/%s/caregivers", map[string]any{"user_id": strangerID}},
		{"DELETE", "/cats/%s/caregivers/" + strangerID, nil},
		{"PUT", "/cats/%s/photos/order", map[string]any{"order": []string{"x"}}},
		{"DELETE", "/cats/%s/photos/x", nil},
		{"POST", "/cats/%s/avatar", nil},
	}
	for _, c := range cases {
		foreign, fbody := doReq(t, ts.URL, c.method, fmt.Sprintf(c.path, catID), strangerID, "", c.payload)
		missing, mbody := doReq(t, ts.URL, c.method, fmt.Sprintf(c.path, "nope"), strangerID, "", c.payload)
		if foreign != http.StatusForbidden || missing != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403/403, got %d (%s) / %d (%s)", c.method, c.path, foreign, fbody, missing, mbody)
		}
	}

	// admin sí distingue
	st, _ := doReq(t, ts.URL, "GET", "/cats/nope/caregivers", adminHeaderID, "admin", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 roster of missing cat for admin, got %d", st)
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type accountResp struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       string `json:"role"`
	AvatarPath string `json:"avatar_path"`
}

func TestHTTP_RegisterAndManageOwnAccount(t *testing.T) {
	ts, _, blobs := newServerWithBlobs(t)

	reg := map[string]any{
		"username": "zofia", "email": "zofia@example.org", "first_name": "Zofia", "last_name": "Nowak",
		"password": "Kot#Mruczek42", "confirm_password": "Kot#Mruczek43",
	}
	st, body := doReq(t, ts.URL, "POST", "/register", "", "", reg)
	if st != http.StatusBadRequest || errorCode(body) != "password_mismatch" {
		t.Fatalf("expected password_mismatch, got %d %s", st, body)
	}
	reg["confirm_password"] = "Kot#Mruczek42"
	st, body = doReq(t, ts.URL, "POST", "/register", "", "", reg)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register, got %d %s", st, body)
	}
	var me accountResp
	_ = json.Unmarshal(body, &me)
	if me.ID == "" || me.Role != "user" {
		t.Fatalf("registration must create a plain user: %s", body)
	}
	st, body = doReq(t, ts.URL, "POST", "/register", "", "", reg)
	if st != http.StatusConflict || errorCode(body) != "already_exists" {
		t.Fatalf("expected already_exists, got %d %s", st, body)
	}

	st, body = doReq(t, ts.URL, "GET", "/me", me.ID, "", nil)
	if st != http.StatusOK || !strings.Contains(string(body), `"username":"zofia"`) {
		t.Fatalf("expected own profile, got %d %s", st, body)
	}
	if strings.Contains(string(body), "password") {
		t.Fatalf("profile must not expose the hash: %s", body)
	}

	st, body = doReq(t, ts.URL, "PUT", "/me", me.ID, "", map[string]any{"new_password": "Pies#Burek77"})
	if st != http.StatusBadRequest || errorCode(body) != "missing_password" {
		t.Fatalf("expected missing_password, got %d %s", st, body)
	}
	st, body = doReq(t, ts.URL, "PUT", "/me", me.ID, "", map[string]any{"old_password": "wrong", "new_password": "Pies#Burek77"})
	if st != http.StatusBadRequest || errorCode(body) != "invalid_old_password" {
		t.Fatalf("expected invalid_old_password, got %d %s", st, body)
	}
	st, body = doReq(t, ts.URL, "PUT", "/me", me.ID, "", map[string]any{"first_name": "Zosia"})
	if st != http.StatusBadRequest || errorCode(body) != "invalid_name" {
		t.Fatalf("name without last name: expected invalid_name, got %d %s", st, body)
	}

	// nombre + contraseña + avatar en un solo PUT multipart
	st, body = doUpload(t, ts.URL, "PUT", "/me", me.ID, "avatar", pngHeader, map[string]string{
		"first_name": "Zosia", "last_name": "Nowak", "old_password": "Kot#Mruczek42", "new_password": "Pies#Burek77",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 account update, got %d %s", st, body)
	}
	_ = json.Unmarshal(body, &me)
	if me.FirstName != "Zosia" || !strings.HasPrefix(me.AvatarPath, "/uploads/avatars/") {
		t.Fatalf("unexpected account after update: %s", body)
	}
	firstAvatar := strings.TrimPrefix(me.AvatarPath, "/uploads/")
	if _, _, ok := blobs.Get(firstAvatar); !ok {
		t.Fatalf("avatar blob missing")
	}

	// la contraseña nueva quedó guardada
	st, body = doReq(t, ts.URL, "PUT", "/me", me.ID, "", map[string]any{"old_password": "Pies#Burek77", "new_password": "Kot#Mruczek42"})
	if st != http.StatusOK {
		t.Fatalf("expected new password to verify, got %d %s", st, body)
	}

	st, body = doUpload(t, ts.URL, "POST", "/me/avatar", me.ID, "avatar", pngHeader, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 avatar, got %d %s", st, body)
	}
	_ = json.Unmarshal(body, &me)
	if _, _, ok := blobs.Get(firstAvatar); ok {
		t.Fatalf("replaced avatar blob must be removed")
	}
	st, body = doUpload(t, ts.URL, "POST", "/me/avatar", me.ID, "avatar", []byte("GIF89a...."), nil)
	if st != http.StatusBadRequest || errorCode(body) != "invalid_file" {
		t.Fatalf("expected invalid_file, got %d %s", st, body)
	}
}

func TestHTTP_DeletesRemoveStoredFiles(t *testing.T) {
	ts, _, blobs := newServerWithBlobs(t)

	ownerID := createUser(t, ts.URL, "olga", "user")
	catA := createCat(t, ts.URL, ownerID, "Mruczek")
	catB := createCat(t, ts.URL, ownerID, "Luna")

	upload := func(method, path, field string) string {
		t.Helper()
		st, body := doUpload(t, ts.URL, method, path, ownerID, field, pngHeader, nil)
		if st != http.StatusOK && st != http.StatusCreated {
			t.Fatalf("%s %s: got %d %s", method, path, st, body)
		}
		var resp struct {
			Path       string `json:"path"`
			AvatarPath string `json:"avatar_path"`
		}
		_ = json.Unmarshal(body, &resp)
		p := resp.Path
		if p == "" {
			p = resp.AvatarPath
		}
		key := strings.TrimPrefix(p, "/uploads/")
		if _, _, ok := blobs.Get(key); !ok {
			t.Fatalf("%s %s: blob %q not stored", method, path, key)
		}
		return key
	}

	photoA := upload("POST", "/cats/"+catA+"/photos", "photo")
	avatarA := upload("POST", "/cats/"+catA+"/avatar", "avatar")
	photoB := upload("POST", "/cats/"+catB+"/photos", "photo")
	avatarB := upload("POST", "/cats/"+catB+"/avatar", "avatar")
	userAvatar := upload("POST", "/me/avatar", "avatar")

	// borrar un gato limpia sus archivos y nada más
	if st, body := doReq(t, ts.URL, "DELETE", "/cats/"+catA, ownerID, "", nil); st != http.StatusOK {
		t.Fatalf("delete cat: %d %s", st, body)
	}
	for _, k := range []string{photoA, avatarA} {
		if _, _, ok := blobs.Get(k); ok {
			t.Fatalf("blob %s must go with its cat", k)
		}
	}
	if _, _, ok := blobs.Get(photoB); !ok {
		t.Fatalf("other cat's photo must stay")
	}

	// borrar al usuario limpia lo que quedaba
	if st, body := doReq(t, ts.URL, "DELETE", "/admin/users/"+ownerID, adminHeaderID, "admin", nil); st != http.StatusOK {
		t.Fatalf("delete user: %d %s", st, body)
	}
	for _, k := range []string{photoB, avatarB, userAvatar} {
		if _, _, ok := blobs.Get(k); ok {
			t.Fatalf("blob %s must go with its owner", k)
		}
	}
}

type activityResp struct {
	ID     string     `json:"id"`
	Status string     `json:"status"`
	DoneAt *time.Time `json:"done_at"`
	DoneBy *string    `json:"done_by"`
}

func createUser(t *testing.T, baseURL, username, role string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/admin/users", adminHeaderID, "admin", map[string]any{
		"username":   username,
		"email":      username + "@example.org",
		"first_name": "Test",
		"last_name":  "User",
		"role":       role,
		"password":   "Kot#Mruczek42",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create user, got %d body=%s", st, string(body))
	}
	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create user: missing id body=%s", string(body))
	}
	return resp.ID
}

func findUserID(t *testing.T, baseURL, email string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/admin/users", adminHeaderID, "admin", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list users, got %d", st)
	}
	var resp struct {
		Items []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"items"`
	}
	_ = json.Unmarshal(body, &resp)
	for _, u := range resp.Items {
		if u.Email == email {
			return u.ID
		}
	}
	t.Fatalf("user %s not found in %s", email, string(body))
	return ""
}

func createCat(t *testing.T, baseURL, userID, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/cats", userID, "", map[string]any{"name": name})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create cat, got %d body=%s", st, string(body))
	}
	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create cat: missing id body=%s", string(body))
	}
	return resp.ID
}

func createActivity(t *testing.T, baseURL, userID, catID string, payload map[string]any) activityResp {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/cats/"+catID+"/activities", userID, "", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create activity, got %d body=%s", st, string(body))
	}
	var resp activityResp
	_ = json.Unmarshal(body, &resp)
	return resp
}

func canAccess(t *testing.T, baseURL, userID, catID string) bool {
	t.Helper()

	role := ""
	if userID == adminHeaderID {
		role = "admin"
	}
	st, body := doReq(t, baseURL, "GET", "/cats/"+catID+"/access", userID, role, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 access check, got %d body=%s", st, string(body))
	}
	var resp struct {
		CanAccess bool `json:"can_access"`
	}
	_ = json.Unmarshal(body, &resp)
	return resp.CanAccess
}

func items(t *testing.T, body []byte) []json.RawMessage {
	t.Helper()
	var resp struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode items: %v body=%s", err, string(body))
	}
	return resp.Items
}

func errorCode(body []byte) string {
	var resp struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &resp)
	return resp.Error
}

func doReq(t *testing.T, baseURL, method, path, userID, role string, payload any) (int, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, bodyReader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-Debug-Role", role)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func doUpload(t *testing.T, baseURL, method, path, userID, field string, data []byte, fields map[string]string) (int, []byte) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	fw, err := mw.CreateFormFile(field, "upload.bin")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest(method, baseURL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Debug-User-ID", userID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}
