// Package httpjson centraliza las respuestas JSON. Antes cada módulo tenía su
// propio writeJSON; con siete módulos ya convenía extraerlo.
package httpjson

import (
	"encoding/json"
	"net/http"

	"cat-care/internal/platform/apperr"
	"cat-care/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ErrorResponse struct {
	Error   apperr.Code `json:"error"`
	Message string      `json:"message,omitempty"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter) {
	Write(w, http.StatusOK, OKResponse{OK: true})
}

func Items[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	Write(w, http.StatusOK, ItemsResponse[T]{Items: items})
}

// Error escribe err con su status. En 5xx nunca se devuelve el detalle;
// la causa queda en el log.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	e := apperr.From(err)
	if e.Status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", map[string]any{
				"request_id": chimw.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"code":       string(e.Code),
				"err":        err.Error(),
			})
		}
		Write(w, e.Status, ErrorResponse{Error: e.Code})
		return
	}
	Write(w, e.Status, ErrorResponse{Error: e.Code, Message: e.Message})
}

// Decode lee el body JSON; devuelve invalid_json (400) si no se puede.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrInvalidJSON
	}
	return nil
}

var ErrInvalidJSON = apperr.BadRequest("invalid_json")
