package calendar

import (
	"net/http"

	"cat-care/internal/domain/activities"
	"cat-care/internal/middleware"
	"cat-care/internal/platform/httpjson"
	"cat-care/internal/platform/logger"
)

type Handlers struct {
	svc *Service
	log logger.Logger
}

func NewHandlers(svc *Service, log logger.Logger) *Handlers {
	return &Handlers{svc: svc, log: log.With(map[string]any{"module": "calendar"})}
}

type dayCountResponse struct {
	Day                string `json:"day"`
	PlannedFutureCount int    `json:"planned_future_count"`
	DoneLikeCount      int    `json:"done_like_count"`
}

// Range godoc
// @Summary Conteos por día
// @Description Agrupa las actividades visibles de [from, to) por día. Las canceladas no cuentan.
// @Tags calendar
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param from query string true "YYYY-MM-DD (inclusive)"
// @Param to query string true "YYYY-MM-DD (exclusivo)"
// @Success 200 {object} httpjson.ItemsResponse[dayCountResponse]
// @Failure 400 {object} httpjson.ErrorResponse "missing_range / invalid_range"
// @Router /calendar [get]
func (h *Handlers) Range(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	counts, err := h.svc.RangeCounts(r.Context(), middleware.GetIdentity(r.Context()), q.Get("from"), q.Get("to"))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}

	out := make([]dayCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, dayCountResponse{
			Day:                c.Day,
			PlannedFutureCount: c.PlannedFutureCount,
			DoneLikeCount:      c.DoneLikeCount,
		})
	}
	httpjson.Items(w, out)
}

// Day godoc
// @Summary Detalle de un día
// @Description Actividades visibles no canceladas del día, por hora ascendente, sin tope.
// @Tags calendar
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param date query string true "YYYY-MM-DD"
// @Success 200 {object} httpjson.ItemsResponse[activities.ActivityResponse]
// @Failure 400 {object} httpjson.ErrorResponse "missing_date / invalid_date"
// @Router /calendar/day [get]
func (h *Handlers) Day(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.DayDetail(r.Context(), middleware.GetIdentity(r.Context()), r.URL.Query().Get("date"))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Items(w, activities.ToResponses(items, h.svc.Location()))
}
