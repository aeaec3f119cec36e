// Package registry provides an explicit, namespace-keyed store of compiled
// rule sets.
//
// The hosting application constructs one Registry and passes it to whatever
// needs cross-namespace lookup; the evaluation engine itself never touches
// it. Rule sets are compiled on registration and immutable afterwards, so
// concurrent evaluations share them without locking beyond the map itself.
package registry

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rulegate/rulegate/internal/engine"
	"github.com/rulegate/rulegate/internal/types"
)

// set holds one namespace's compiled rules alongside the definitions they
// were compiled from, so exports reproduce the registered wire form.
type set struct {
	defs      []types.Definition
	rules     []*engine.Rule
	evaluator *engine.Evaluator
}

// Registry is a thread-safe namespace-keyed store of rule sets.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]*set
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{sets: make(map[string]*set)}
}

// Register compiles and stores a rule set under namespace, replacing any
// previous set atomically. A compilation failure leaves the previous set
// untouched; a namespace is never partially registered.
func (r *Registry) Register(namespace string, defs []types.Definition) error {
	if namespace == "" {
		return types.ErrNamespaceNotFound
	}
	if len(namespace) > types.MaxNamespaceLength {
		return types.ErrNamespaceTooLong
	}
	if len(defs) > types.MaxRulesPerSet {
		return types.ErrTooManyRules
	}

	rules, err := engine.CompileAll(defs)
	if err != nil {
		return fmt.Errorf("namespace %q: %w", namespace, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[namespace] = &set{
		defs:      append([]types.Definition{}, defs...),
		rules:     rules,
		evaluator: engine.NewEvaluator(namespace),
	}
	return nil
}

// Rules returns the compiled rules for namespace.
func (r *Registry) Rules(namespace string) ([]*engine.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sets[namespace]
	if !ok {
		return nil, types.ErrNamespaceNotFound
	}
	return s.rules, nil
}

// Evaluate runs the namespace's rule set against a full data mapping.
func (r *Registry) Evaluate(namespace string, data map[string]any) (*engine.ResultSet, error) {
	s, err := r.lookup(namespace)
	if err != nil {
		return nil, err
	}
	return s.evaluator.Evaluate(data, s.rules)
}

// EvaluateField runs the namespace's rule set against a single field/value
// pair, skipping rules addressing other fields.
func (r *Registry) EvaluateField(namespace, field string, value any) (*engine.ResultSet, error) {
	s, err := r.lookup(namespace)
	if err != nil {
		return nil, err
	}
	return s.evaluator.EvaluateField(field, value, s.rules)
}

// Export returns the wire-format definitions registered under namespace,
// suitable for serving to a client-side evaluator.
func (r *Registry) Export(namespace string) ([]types.Definition, error) {
	s, err := r.lookup(namespace)
	if err != nil {
		return nil, err
	}
	return append([]types.Definition{}, s.defs...), nil
}

// Remove deletes a namespace. Reports whether it existed.
func (r *Registry) Remove(namespace string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sets[namespace]
	delete(r.sets, namespace)
	return ok
}

// Namespaces returns all registered namespaces in sorted order.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sets))
	for ns := range r.sets {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// ETag computes a content-addressable hash over every registered rule set.
// Identical contents always produce identical tags, letting client
// evaluators skip refetching unchanged definitions.
func (r *Registry) ETag() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.sets))
	for ns := range r.sets {
		keys = append(keys, ns)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, ns := range keys {
		raw, err := json.Marshal(r.sets[ns].defs)
		if err != nil {
			continue
		}
		h.Write([]byte(ns))
		h.Write([]byte{0})
		h.Write(raw)
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (r *Registry) lookup(namespace string) (*set, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sets[namespace]
	if !ok {
		return nil, types.ErrNamespaceNotFound
	}
	return s, nil
}
