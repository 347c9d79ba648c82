package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/stockpile/pkg/apperr"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Kind    apperr.Kind `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Write encodes body with the given status.
func Write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusOK, Envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusCreated, Envelope{Status: http.StatusCreated, Data: data})
}

// Message sends a 200 with only a message, for acknowledgements.
func Message(w http.ResponseWriter, message string) {
	Write(w, http.StatusOK, Envelope{Status: http.StatusOK, Message: message})
}

// Error sends a JSON error response without a kind.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	Write(w, http.StatusUnprocessableEntity, Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Kind:    apperr.InvalidInput,
		Errors:  errs,
	})
}

// Fail renders err with the status of its kind. Errors without a kind
// become a 500 with a generic message.
func Fail(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)
	Write(w, status, Envelope{Status: status, Message: apperr.MessageOf(err), Kind: kind})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.MissingToken, apperr.InvalidToken, apperr.InvalidCredentials:
		return http.StatusUnauthorized
	case apperr.AccessDenied:
		return http.StatusForbidden
	case apperr.UserNotFound, apperr.ProductNotFound:
		return http.StatusNotFound
	case apperr.DuplicateUsername, apperr.DuplicateProduct, apperr.InsufficientStock:
		return http.StatusConflict
	case apperr.InvalidQuantity:
		return http.StatusBadRequest
	case apperr.InvalidInput:
		return http.StatusUnprocessableEntity
	case apperr.StoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
