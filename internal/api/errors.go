package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/insight-sphere/internal/errors"
	"github.com/insight-sphere/internal/logging"
	"github.com/insight-sphere/internal/types"
)

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondData wraps data in a success envelope
func respondData[T any](w http.ResponseWriter, data T) {
	respondJSON(w, http.StatusOK, types.Envelope[T]{Success: true, Data: data})
}

// respondError sends a failure envelope
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, types.Envelope[any]{Success: false, Message: message})
}

// respondFailure maps a provider failure to its status code. Upstream failures
// keep their own message; anything unexpected gets the per-resource description.
func respondFailure(w http.ResponseWriter, r *http.Request, resource types.Resource, err error) {
	catErr := apperrors.Categorize(err)

	message := catErr.Message
	if catErr.Category == apperrors.CategorySystem {
		message = apperrors.DefaultFetchMessage(resource)
	}

	logging.FromContext(r.Context()).WithError(err).WithFields(map[string]interface{}{
		"resource": resource,
		"status":   catErr.StatusCode,
		"code":     catErr.Code,
	}).Error("Market data request failed")

	respondError(w, catErr.StatusCode, message)
}
