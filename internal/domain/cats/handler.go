package cats

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"cat-care/internal/middleware"
	"cat-care/internal/platform/httpjson"
	"cat-care/internal/platform/logger"
	"cat-care/internal/platform/upload"

	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	svc *Service
	log logger.Logger
}

func NewHandlers(svc *Service, log logger.Logger) *Handlers {
	return &Handlers{svc: svc, log: log.With(map[string]any{"module": "cats"})}
}

type catRequest struct {
	Name        string `json:"name"`
	Breed       string `json:"breed"`
	Age         *int   `json:"age"`
	Description string `json:"description"`
}

func (req catRequest) input() Input {
	return Input{Name: req.Name, Breed: req.Breed, Age: req.Age, Description: req.Description}
}

type catResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Breed       string    `json:"breed,omitempty"`
	Age         *int      `json:"age,omitempty"`
	Description string    `json:"description,omitempty"`
	AvatarPath  string    `json:"avatar_path,omitempty"`
	IsOwner     bool      `json:"is_owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCatResponse(c Cat, isOwner bool) catResponse {
	return catResponse{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Name:        c.Name,
		Breed:       c.Breed,
		Age:         c.Age,
		Description: c.Description,
		AvatarPath:  c.AvatarPath,
		IsOwner:     isOwner,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// List godoc
// @Summary Listar gatos
// @Description Gatos propios y los que el usuario cuida. `all=true` (solo admin) lista todos.
// @Tags cats
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param owned query bool false "Solo gatos propios"
// @Param all query bool false "Todos los gatos (admin)"
// @Success 200 {object} httpjson.ItemsResponse[catResponse]
// @Failure 401 {object} httpjson.ErrorResponse
// @Router /cats [get]
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	owned, _ := strconv.ParseBool(r.URL.Query().Get("owned"))
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	items, err := h.svc.List(r.Context(), middleware.GetIdentity(r.Context()), owned, all)
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}

	out := make([]catResponse, 0, len(items))
	for _, v := range items {
		out = append(out, toCatResponse(v.Cat, v.IsOwner))
	}
	httpjson.Items(w, out)
}

// Create godoc
// @Summary Crear gato
// @Description El usuario autenticado queda como dueño.
// @Tags cats
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body catRequest true "Datos del gato"
// @Success 201 {object} catResponse
// @Failure 400 {object} httpjson.ErrorResponse "invalid_json / cat_name / invalid_age"
// @Failure 401 {object} httpjson.ErrorResponse
// @Router /cats [post]
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req catRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}

	c, err := h.svc.Create(r.Context(), middleware.GetIdentity(r.Context()), req.input())
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toCatResponse(c, true))
}

// Get godoc
// @Summary Perfil de gato
// @Description Dueño, cuidador asignado o admin.
// @Tags cats
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Success 200 {object} catResponse
// @Failure 403 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /cats/{catID} [get]
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "catID"))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toCatResponse(v.Cat, v.IsOwner))
}

// Update godoc
// @Summary Actualizar gato
// @Description Solo dueño o admin. El dueño no cambia.
// @Tags cats
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Param payload body catRequest true "Datos del gato"
// @Success 200 {object} catResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 403 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /cats/{catID} [put]
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	var req catRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}

	id := middleware.GetIdentity(r.Context())
	c, err := h.svc.Update(r.Context(), id, chi.URLParam(r, "catID"), req.input())
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toCatResponse(c, c.OwnerID == id.UserID))
}

// Delete godoc
// @Summary Borrar gato
// @Description Solo dueño o admin. Borra también actividades, fotos y cuidadores.
// @Tags cats
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Success 200 {object} httpjson.OKResponse
// @Failure 403 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /cats/{catID} [delete]
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "catID")); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.OK(w)
}

// Avatar godoc
// @Summary Subir avatar del gato
// @Description Solo dueño o admin. multipart/form-data, campo "avatar". jpeg/png/webp hasta 5 MiB. Reemplaza el anterior.
// @Tags cats
// @Accept mpfd
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Param avatar formData file true "Imagen"
// @Success 200 {object} catResponse
// @Failure 400 {object} httpjson.ErrorResponse "invalid_file / file_too_large"
// @Failure 403 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /cats/{catID}/avatar [post]
func (h *Handlers) Avatar(w http.ResponseWriter, r *http.Request) {
	file, err := upload.FormFile(w, r, "avatar")
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	var body io.Reader
	if file != nil {
		defer file.Close()
		body = file
	}

	id := middleware.GetIdentity(r.Context())
	c, err := h.svc.SetAvatar(r.Context(), id, chi.URLParam(r, "catID"), body)
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toCatResponse(c, c.OwnerID == id.UserID))
}
