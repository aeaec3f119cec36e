package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rulegate/rulegate/internal/engine"
	"github.com/rulegate/rulegate/internal/types"
)

// evaluateRequest carries either a full data mapping or a single field/value
// pair. Exactly one mode applies: field set means scoped evaluation.
type evaluateRequest struct {
	Data  map[string]any `json:"data,omitempty"`
	Field string         `json:"field,omitempty"`
	Value any            `json:"value,omitempty"`
}

// evaluateResponse reports the overall verdict plus per-rule entries.
type evaluateResponse struct {
	Namespace string            `json:"namespace"`
	Passed    bool              `json:"passed"`
	Results   *engine.ResultSet `json:"results"`
}

// handleEvaluate runs a namespace's rule set against submitted data.
func (s *RuleAPIService) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, types.ErrPayloadTooLarge)
			return
		}
		writeBadRequest(w, "invalid evaluate body: "+err.Error())
		return
	}
	if req.Field != "" && req.Data != nil {
		writeBadRequest(w, "provide either data or field/value, not both")
		return
	}

	var (
		rs  *engine.ResultSet
		err error
	)
	if req.Field != "" {
		rs, err = s.reg.EvaluateField(namespace, req.Field, req.Value)
	} else {
		rs, err = s.reg.Evaluate(namespace, req.Data)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		Namespace: namespace,
		Passed:    rs.Status(),
		Results:   rs,
	})
}
