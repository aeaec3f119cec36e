package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rulegate/rulegate/internal/core/auth"
	"github.com/rulegate/rulegate/internal/types"
)

// listResponse is the cross-namespace inventory served to client evaluators.
type listResponse struct {
	Namespaces []string `json:"namespaces"`
	ETag       string   `json:"etag"`
}

// handleListRuleSets returns all namespaces plus a content-addressable ETag.
// If-None-Match lets polling clients skip refetching unchanged rule sets.
func (s *RuleAPIService) handleListRuleSets(w http.ResponseWriter, r *http.Request) {
	etag := s.reg.ETag()
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	writeJSON(w, http.StatusOK, listResponse{
		Namespaces: s.reg.Namespaces(),
		ETag:       etag,
	})
}

// handleGetRuleSet serves the wire-format definitions for one namespace.
func (s *RuleAPIService) handleGetRuleSet(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")

	defs, err := s.reg.Export(namespace)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, defs)
}

// handlePutRuleSet replaces a namespace's rule set. The body is the JSON
// array of definitions. The set is compiled before anything is persisted;
// a set that does not compile never reaches the database or the registry.
func (s *RuleAPIService) handlePutRuleSet(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")

	defs, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	if err := s.reg.Register(namespace, defs); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.SaveRuleSet(namespace, defs); err != nil {
		// Registration succeeded but persistence failed. Roll the registry
		// back so a restart does not silently lose the set.
		s.reg.Remove(namespace)
		s.log.Error("failed to persist rule set", "namespace", namespace, "error", err)
		writeError(w, err)
		return
	}

	s.log.Info("rule set updated",
		"namespace", namespace,
		"rules", len(defs),
		"client_id", auth.ClientIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteRuleSet removes a namespace from storage and the registry.
func (s *RuleAPIService) handleDeleteRuleSet(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")

	existed, err := s.store.DeleteRuleSet(namespace)
	if err != nil {
		writeError(w, err)
		return
	}
	if !s.reg.Remove(namespace) && !existed {
		writeError(w, types.ErrNamespaceNotFound)
		return
	}

	s.log.Info("rule set removed",
		"namespace", namespace,
		"client_id", auth.ClientIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads a size-limited JSON array of definitions. Reports the
// failure to the client itself; callers just bail out on !ok.
func (s *RuleAPIService) decodeBody(w http.ResponseWriter, r *http.Request) ([]types.Definition, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var defs []types.Definition
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&defs); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, types.ErrPayloadTooLarge)
			return nil, false
		}
		writeBadRequest(w, "invalid rule set body: "+err.Error())
		return nil, false
	}
	return defs, true
}
