package photos

import (
	"io"
	"net/http"
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
	return &Handlers{svc: svc, log: log.With(map[string]any{"module": "photos"})}
}

type photoResponse struct {
	ID         string    `json:"id"`
	CatID      string    `json:"cat_id"`
	Path       string    `json:"path"`
	SortOrder  int       `json:"sort_order"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type reorderRequest struct {
	Order []string `json:"order"`
}

func toPhotoResponse(p Photo) photoResponse {
	return photoResponse{
		ID:         p.ID,
		CatID:      p.CatID,
		Path:       p.Path,
		SortOrder:  p.SortOrder,
		UploadedBy: p.UploadedBy,
		CreatedAt:  p.CreatedAt,
	}
}

// List godoc
// @Summary Galería del gato
// @Tags photos
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Success 200 {object} httpjson.ItemsResponse[photoResponse]
// @Failure 403 {object} httpjson.ErrorResponse
// @Router /cats/{catID}/photos [get]
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "catID"))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	out := make([]photoResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPhotoResponse(p))
	}
	httpjson.Items(w, out)
}

// Upload godoc
// @Summary Subir foto
// @Description multipart/form-data, campo "photo". jpeg/png/webp hasta 5 MiB.
// @Tags photos
// @Accept mpfd
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Param photo formData file true "Imagen"
// @Success 201 {object} photoResponse
// @Failure 400 {object} httpjson.ErrorResponse "invalid_file / file_too_large"
// @Failure 403 {object} httpjson.ErrorResponse
// @Router /cats/{catID}/photos [post]
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	file, err := upload.FormFile(w, r, "photo")
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	var body io.Reader
	if file != nil {
		defer file.Close()
		body = file
	}

	p, err := h.svc.Upload(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "catID"), body)
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toPhotoResponse(p))
}

// Reorder godoc
// @Summary Reordenar fotos
// @Description Solo dueño o admin. Las posiciones quedan 0..n-1 en el orden recibido.
// @Tags photos
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Param payload body reorderRequest true "IDs en el orden deseado"
// @Success 200 {object} httpjson.OKResponse
// @Failure 403 {object} httpjson.ErrorResponse
// @Router /cats/{catID}/photos/order [put]
func (h *Handlers) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	if err := h.svc.Reorder(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "catID"), req.Order); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.OK(w)
}

// Delete godoc
// @Summary Borrar foto
// @Tags photos
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Param photoID path string true "ID de la foto"
// @Success 200 {object} httpjson.OKResponse
// @Failure 403 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /cats/{catID}/photos/{photoID} [delete]
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "catID"), chi.URLParam(r, "photoID"))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.OK(w)
}
