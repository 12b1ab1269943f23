package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/JJ-Sinklaire/desesperanza/pkg/errors"
	"github.com/JJ-Sinklaire/desesperanza/pkg/logger"
	"github.com/JJ-Sinklaire/desesperanza/pkg/validator"
)

// Response is the JSON envelope used by every endpoint of the service:
// {success, data?, message?, errors?: {field: message}}.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// OKMessage writes a 200 response carrying only a message.
func OKMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Message: message})
}

// Created writes a 201 response with the given message and data.
func Created(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteValidationError writes a 400 response with the per-field messages of a
// validation failure.
func WriteValidationError(w http.ResponseWriter, err error) {
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: "datos invalidos",
			Errors:  ve.Fields(),
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{Success: false, Message: err.Error()})
}

// WriteError maps an error onto the response envelope. AppErrors keep their
// status, message, and field map; anything else becomes a 500 with a generic
// message, and the underlying cause is logged rather than leaked.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status != http.StatusInternalServerError {
		WriteJSON(w, appErr.Status, Response{
			Success: false,
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	message := "ocurrio un error interno"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		message = "recurso no encontrado"
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrLimitExceeded):
		message = err.Error()
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrAlreadyExists):
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnavailable):
		message = "servicio externo no disponible"
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Success: false, Message: message})
}
