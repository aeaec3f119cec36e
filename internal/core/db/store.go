package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rulegate/rulegate/internal/registry"
	"github.com/rulegate/rulegate/internal/types"
)

/*
 * Rule set persistence.
 *
 * Rule sets are stored as one row per namespace holding the JSON array of
 * wire-format definitions. The database is the durable source of truth; the
 * registry is the compiled in-memory view. Writes go definition-first: a
 * set that does not compile is rejected before it ever reaches a row, so
 * the table only ever contains loadable rule sets.
 */

// RuleSetRecord is a stored rule set row.
type RuleSetRecord struct {
	Namespace  string `db:"namespace"`
	Definition string `db:"definition"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

// Store wraps named queries with rule-set level operations.
type Store struct {
	q *Queries
}

// NewStore creates a store over loaded queries.
func NewStore(q *Queries) *Store {
	return &Store{q: q}
}

// SaveRuleSet persists the definitions for a namespace, inserting or
// replacing the existing row.
func (s *Store) SaveRuleSet(namespace string, defs []types.Definition) error {
	raw, err := json.Marshal(defs)
	if err != nil {
		return fmt.Errorf("failed to encode rule set %q: %w", namespace, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.q.Exec("upsert-rule-set", namespace, string(raw), now, now); err != nil {
		return fmt.Errorf("failed to save rule set %q: %w", namespace, err)
	}
	return nil
}

// GetRuleSet loads the definitions stored under a namespace.
// Returns types.ErrNamespaceNotFound when no row exists.
func (s *Store) GetRuleSet(namespace string) ([]types.Definition, error) {
	var rec RuleSetRecord
	err := s.q.Get("get-rule-set", &rec, namespace)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNamespaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rule set %q: %w", namespace, err)
	}

	var defs []types.Definition
	if err := json.Unmarshal([]byte(rec.Definition), &defs); err != nil {
		return nil, fmt.Errorf("corrupt rule set %q: %w", namespace, err)
	}
	return defs, nil
}

// DeleteRuleSet removes a namespace's row. Reports whether a row existed.
func (s *Store) DeleteRuleSet(namespace string) (bool, error) {
	res, err := s.q.Exec("delete-rule-set", namespace)
	if err != nil {
		return false, fmt.Errorf("failed to delete rule set %q: %w", namespace, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListRuleSets returns all stored rule set rows ordered by namespace.
func (s *Store) ListRuleSets() ([]RuleSetRecord, error) {
	var recs []RuleSetRecord
	if err := s.q.Select("list-rule-sets", &recs); err != nil {
		return nil, fmt.Errorf("failed to list rule sets: %w", err)
	}
	return recs, nil
}

// LoadRegistry hydrates a registry from every stored rule set. A stored
// set that no longer compiles aborts the load; the operator fixes the data
// rather than silently serving a subset.
func (s *Store) LoadRegistry(reg *registry.Registry) error {
	recs, err := s.ListRuleSets()
	if err != nil {
		return err
	}

	for _, rec := range recs {
		var defs []types.Definition
		if err := json.Unmarshal([]byte(rec.Definition), &defs); err != nil {
			return fmt.Errorf("corrupt rule set %q: %w", rec.Namespace, err)
		}
		if err := reg.Register(rec.Namespace, defs); err != nil {
			return fmt.Errorf("failed to register stored rule set: %w", err)
		}
	}
	return nil
}
