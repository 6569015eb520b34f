package caregivers

import (
	"net/http"

	"cat-care/internal/middleware"
	"cat-care/internal/platform/httpjson"
	"cat-care/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	svc *Service
	log logger.Logger
}

func NewHandlers(svc *Service, log logger.Logger) *Handlers {
	return &Handlers{svc: svc, log: log.With(map[string]any{"module": "caregivers"})}
}

type assignRequest struct {
	UserID string `json:"user_id"`
}

type caregiverResponse struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	AvatarPath string `json:"avatar_path,omitempty"`
}

type rosterResponse struct {
	CatID     string              `json:"cat_id"`
	OwnerID   string              `json:"owner_id"`
	Assigned  []caregiverResponse `json:"assigned"`
	Available []caregiverResponse `json:"available"`
}

func toCaregiverResponses(items []Caregiver) []caregiverResponse {
	out := make([]caregiverResponse, 0, len(items))
	for _, c := range items {
		out = append(out, caregiverResponse{
			UserID:     c.UserID,
			Username:   c.Username,
			FirstName:  c.FirstName,
			LastName:   c.LastName,
			AvatarPath: c.AvatarPath,
		})
	}
	return out
}

// Roster godoc
// @Summary Cuidadores de un gato
// @Description Asignados y candidatos disponibles (rol user, sin el dueño). Solo dueño o admin.
// @Tags caregivers
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Success 200 {object} rosterResponse
// @Failure 403 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /cats/{catID}/caregivers [get]
func (h *Handlers) Roster(w http.ResponseWriter, r *http.Request) {
	ro, err := h.svc.Roster(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "catID"))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, rosterResponse{
		CatID:     ro.CatID,
		OwnerID:   ro.OwnerID,
		Assigned:  toCaregiverResponses(ro.Assigned),
		Available: toCaregiverResponses(ro.Available),
	})
}

// Assign godoc
// @Summary Asignar cuidador
// @Description Idempotente. Falla con invalid_caregiver si el usuario es el dueño o no tiene rol user.
// @Tags caregivers
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Param payload body assignRequest true "Usuario a asignar"
// @Success 200 {object} httpjson.OKResponse
// @Failure 400 {object} httpjson.ErrorResponse "missing_params / invalid_caregiver"
// @Failure 403 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /cats/{catID}/caregivers [post]
func (h *Handlers) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	if err := h.svc.Assign(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "catID"), req.UserID); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.OK(w)
}

// Unassign godoc
// @Summary Quitar cuidador
// @Description Quitar un vínculo inexistente no es error.
// @Tags caregivers
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Param userID path string true "ID del cuidador"
// @Success 200 {object} httpjson.OKResponse
// @Failure 403 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /cats/{catID}/caregivers/{userID} [delete]
func (h *Handlers) Unassign(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Unassign(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "catID"), chi.URLParam(r, "userID"))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.OK(w)
}
