package activities

import (
	"net/http"
	"strings"
	"time"

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
	return &Handlers{svc: svc, log: log.With(map[string]any{"module": "activities"})}
}

type writeActivityRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Date            string `json:"date"` // YYYY-MM-DD
	Time            string `json:"time"` // HH:MM
	MarkDone        bool   `json:"mark_done"`
	DoneDescription string `json:"done_description"`
}

func (req writeActivityRequest) input() WriteInput {
	return WriteInput{
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		Time:            req.Time,
		MarkDone:        req.MarkDone,
		DoneDescription: req.DoneDescription,
	}
}

type ActivityResponse struct {
	ID              string     `json:"id"`
	CatID           string     `json:"cat_id"`
	CatName         string     `json:"cat_name,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	StartsAt        time.Time  `json:"starts_at"`
	StartsAtLocal   string     `json:"starts_at_local"` // "YYYY-MM-DD HH:MM:SS" en la zona configurada
	Status          Status     `json:"status"`
	DoneAt          *time.Time `json:"done_at"`
	DoneBy          *string    `json:"done_by"`
	DoneDescription *string    `json:"done_description"`
	CreatedBy       string     `json:"created_by"`
}

func toResponse(a Activity, loc *time.Location) ActivityResponse {
	out := ActivityResponse{
		ID:            a.ID,
		CatID:         a.CatID,
		CatName:       a.CatName,
		Title:         a.Title,
		Description:   a.Description,
		StartsAt:      a.StartsAt,
		StartsAtLocal: a.StartsAt.In(loc).Format(DateTimeLayout),
		Status:        a.Status,
		DoneAt:        a.DoneAt,
		CreatedBy:     a.CreatedBy,
	}
	if a.DoneBy != "" {
		by := a.DoneBy
		out.DoneBy = &by
	}
	if a.DoneDescription != "" {
		d := a.DoneDescription
		out.DoneDescription = &d
	}
	return out
}

func ToResponses(items []Activity, loc *time.Location) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a, loc))
	}
	return out
}

type dashboardResponse struct {
	Recent  []ActivityResponse `json:"recent"`
	Planned []ActivityResponse `json:"planned"`
}

// Upcoming godoc
// @Summary Próximas actividades de un gato
// @Description Planificadas con starts_at >= ahora, ascendente (máx 200). Dueño, cuidador o admin.
// @Tags activities
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Success 200 {object} httpjson.ItemsResponse[ActivityResponse]
// @Failure 403 {object} httpjson.ErrorResponse
// @Router /cats/{catID}/activities [get]
func (h *Handlers) Upcoming(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Upcoming(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "catID"))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Items(w, ToResponses(items, h.svc.Location()))
}

// Create godoc
// @Summary Crear actividad
// @Description Fecha y hora van por separado. Con mark_done=true queda cerrada por el usuario actual.
// @Tags activities
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Param payload body writeActivityRequest true "Actividad"
// @Success 201 {object} ActivityResponse
// @Failure 400 {object} httpjson.ErrorResponse "missing_fields / invalid_datetime"
// @Failure 403 {object} httpjson.ErrorResponse
// @Router /cats/{catID}/activities [post]
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req writeActivityRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	a, err := h.svc.Create(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "catID"), req.input())
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toResponse(a, h.svc.Location()))
}

// Update godoc
// @Summary Actualizar actividad
// @Description Sin mark_done solo cambia título/descripción/fecha. Con mark_done=true reescribe done_at/done_by con el actor actual.
// @Tags activities
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Param activityID path string true "ID de la actividad"
// @Param payload body writeActivityRequest true "Actividad"
// @Success 200 {object} ActivityResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 403 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse "activity_not_found"
// @Router /cats/{catID}/activities/{activityID} [put]
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	var req writeActivityRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	a, err := h.svc.Update(r.Context(), middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "catID"), chi.URLParam(r, "activityID"), req.input())
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toResponse(a, h.svc.Location()))
}

// Cancel godoc
// @Summary Cancelar actividad
// @Description Solo desde planned; done/cancelled devuelven invalid_transition.
// @Tags activities
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Param activityID path string true "ID de la actividad"
// @Success 200 {object} ActivityResponse
// @Failure 403 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Failure 409 {object} httpjson.ErrorResponse "invalid_transition"
// @Router /cats/{catID}/activities/{activityID}/cancel [post]
func (h *Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Cancel(r.Context(), middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "catID"), chi.URLParam(r, "activityID"))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toResponse(a, h.svc.Location()))
}

// Search godoc
// @Summary Buscar actividades
// @Description Sobre todos los gatos visibles. when=future|past. Máx 200.
// @Tags activities
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param status query string false "planned|done|cancelled"
// @Param q query string false "Texto libre"
// @Param when query string false "future|past"
// @Success 200 {object} httpjson.ItemsResponse[ActivityResponse]
// @Failure 400 {object} httpjson.ErrorResponse "invalid_status"
// @Router /activities [get]
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	when := strings.ToLower(strings.TrimSpace(q.Get("when")))

	items, err := h.svc.Search(r.Context(), middleware.GetIdentity(r.Context()), SearchInput{
		Status: q.Get("status"),
		Query:  q.Get("q"),
		Future: when == "future",
		Past:   when == "past",
	})
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Items(w, ToResponses(items, h.svc.Location()))
}

// Dashboard godoc
// @Summary Resumen de actividades
// @Description Las 6 más recientes y las 6 próximas planificadas.
// @Tags activities
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} dashboardResponse
// @Router /activities/dashboard [get]
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, dashboardResponse{
		Recent:  ToResponses(d.Recent, h.svc.Location()),
		Planned: ToResponses(d.Planned, h.svc.Location()),
	})
}
