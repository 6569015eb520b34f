// Package apperr define el vocabulario de errores (códigos estables + status HTTP)
// que comparten los servicios de dominio y los handlers.
package apperr

import (
	"errors"
	"net/http"
)

// Code es el identificador estable que ve el cliente (ej: "forbidden").
type Code string

const (
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"
)

// Error asocia un código con su clase de status HTTP.
type Error struct {
	Code    Code
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code)
}

// Is compara por código: una copia con mensaje propio sigue matcheando
// con errors.Is contra el sentinel del paquete.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage devuelve una copia con mensaje legible (ej: motivo de weak_password).
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

func New(status int, code Code) *Error {
	return &Error{Code: code, Status: status}
}

func BadRequest(code Code) *Error   { return New(http.StatusBadRequest, code) }
func Unauthorized(code Code) *Error { return New(http.StatusUnauthorized, code) }
func Forbidden(code Code) *Error    { return New(http.StatusForbidden, code) }
func NotFound(code Code) *Error     { return New(http.StatusNotFound, code) }
func Conflict(code Code) *Error     { return New(http.StatusConflict, code) }
func Internal(code Code) *Error     { return New(http.StatusInternalServerError, code) }

// Sentinels compartidos por varios módulos.
var (
	ErrUnauthorized = Unauthorized(CodeUnauthorized)
	ErrForbidden    = Forbidden(CodeForbidden)
	ErrNotFound     = NotFound(CodeNotFound)
)

// From extrae el *Error de la cadena. Cualquier otro error se reporta como
// internal_error para no filtrar detalles del store al cliente.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(CodeInternal)
}

// CodeOf es un atajo (útil en tests).
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return From(err).Code
}
