package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rulegate/rulegate/internal/types"
)

// errorResponse is the body shape for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v with the given status. Encoding failures after the
// header is written can only be logged by the caller, so they are dropped.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes.
// Definition and predicate configuration errors are the client's fault (422),
// unknown namespaces are 404, malformed requests are 400, the rest is 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrNamespaceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrNamespaceTooLong),
		errors.Is(err, types.ErrTooManyRules),
		errors.Is(err, types.ErrMissingKind),
		errors.Is(err, types.ErrMissingField),
		errors.Is(err, types.ErrUnknownKind),
		errors.Is(err, types.ErrInvalidOneOf),
		errors.Is(err, types.ErrTooManyOneOfValues),
		errors.Is(err, types.ErrInvalidPattern),
		errors.Is(err, types.ErrInvalidFieldPath),
		errors.Is(err, types.ErrFieldPathTooDeep),
		errors.Is(err, types.ErrWhenTooDeep),
		errors.Is(err, types.ErrWhenCycle),
		errors.Is(err, types.ErrPredicateConfig):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrPayloadTooLarge):
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeBadRequest reports a malformed request body.
func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
