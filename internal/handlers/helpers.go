package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// maxBodyBytes caps request bodies accepted by the API.
const maxBodyBytes = 1 << 20

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteStageError writes a pipeline error with its kind and stage, choosing
// the status code from the error kind.
func WriteStageError(w http.ResponseWriter, err error) error {
	e := models.AsError(err)
	return WriteJSON(w, StatusForError(e), map[string]interface{}{
		"status": "error",
		"error":  e,
	})
}

// StatusForError maps an error kind to an HTTP status code.
func StatusForError(err *models.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.Kind {
	case models.ErrInvalidInput:
		return http.StatusBadRequest
	case models.ErrNotFound:
		return http.StatusNotFound
	case models.ErrUpstream:
		return http.StatusBadGateway
	case models.ErrTransportFailure:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads a JSON body into v. An empty body leaves v untouched.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return models.WrapError(models.ErrInvalidInput, "", "corpo da requisição inválido", fmt.Errorf("decode: %w", err))
	}
	return nil
}
