// Package api provides the HTTP rule set API over chi.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rulegate/rulegate/internal/core/config"
	"github.com/rulegate/rulegate/internal/registry"
	"github.com/rulegate/rulegate/internal/types"
)

// RuleStore defines the persistence operations the API needs.
// Implemented by *db.Store.
type RuleStore interface {
	SaveRuleSet(namespace string, defs []types.Definition) error
	DeleteRuleSet(namespace string) (bool, error)
}

// RuleAPIService implements the HTTP rule set API.
// Thin orchestration layer delegating to registry, storage, and auth packages.
type RuleAPIService struct {
	store RuleStore
	reg   *registry.Registry
	cfg   *config.RuleAPIConfig
	log   *slog.Logger
}

// NewRuleAPIService creates a service instance with dependencies.
func NewRuleAPIService(store RuleStore, reg *registry.Registry, cfg *config.RuleAPIConfig, log *slog.Logger) (*RuleAPIService, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if reg == nil {
		return nil, fmt.Errorf("reg cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &RuleAPIService{
		store: store,
		reg:   reg,
		cfg:   cfg,
		log:   log,
	}, nil
}

// Router builds the chi router for the service. The authn middleware guards
// everything under /v1; /healthz stays unauthenticated for probes.
func (s *RuleAPIService) Router(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		if authn != nil {
			r.Use(authn)
		}
		r.Get("/rulesets", s.handleListRuleSets)
		r.Route("/rulesets/{namespace}", func(r chi.Router) {
			r.Get("/", s.handleGetRuleSet)
			r.Put("/", s.handlePutRuleSet)
			r.Delete("/", s.handleDeleteRuleSet)
			r.Post("/evaluate", s.handleEvaluate)
		})
	})

	return r
}

func (s *RuleAPIService) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
