// internal/app/features/shared/respond.go
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/artom-sites/choirhub/internal/app/system/apperr"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// Error maps err through the apperr taxonomy and writes the JSON error
// body. Internal errors are logged with their cause but reported to the
// client without it.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		msg = "internal error"
	}
	JSON(w, status, errorBody{Error: msg})
}

// Decode parses the request body into v, returning an InvalidArgument
// on malformed JSON.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.InvalidArgumentf("malformed request body")
	}
	return nil
}

// Unauthenticated is the stock response for requests with no identity.
func Unauthenticated(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, errorBody{Error: apperr.ErrUnauthenticated.Error()})
}

// IsNotFound reports whether err is the taxonomy's NotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
