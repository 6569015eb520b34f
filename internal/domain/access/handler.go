package access

import (
	"net/http"

	"cat-care/internal/middleware"
	"cat-care/internal/platform/httpjson"
	"cat-care/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type accessResponse struct {
	CatID     string `json:"cat_id"`
	CanAccess bool   `json:"can_access"`
}

// CanAccessHandler godoc
// @Summary Consultar acceso a un gato
// @Description Responde si la identidad actual puede leer/escribir el gato (dueño, cuidador o admin). Nunca devuelve 403: la respuesta es el booleano.
// @Tags cats
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, user|admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Success 200 {object} accessResponse
// @Failure 401 {object} httpjson.ErrorResponse
// @Router /cats/{catID}/access [get]
func CanAccessHandler(e *Evaluator, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catID := chi.URLParam(r, "catID")
		ok, err := e.CanAccess(r.Context(), middleware.GetIdentity(r.Context()), catID)
		if err != nil {
			httpjson.Error(w, r, log, err)
			return
		}
		httpjson.Write(w, http.StatusOK, accessResponse{CatID: catID, CanAccess: ok})
	}
}
