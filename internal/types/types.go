// Package types provides domain models shared across Rulegate components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library so client-side evaluators can embed them without pulling in
// server dependencies. ID utilities in ids.go import uuid but are isolated
// for selective inclusion.
package types

// Definition is the wire-format description of a single validation rule.
// It is what rule authors write, what the API serves to client evaluators,
// and what internal/engine compiles. A Definition carries no behavior;
// compilation validates it and binds the predicate.
type Definition struct {
	Kind     string       `json:"kind"`
	Field    string       `json:"field"`
	Value    any          `json:"value,omitempty"`
	Message  string       `json:"message,omitempty"`
	Optional bool         `json:"optional,omitempty"`
	Inverse  bool         `json:"inverse,omitempty"`
	When     []Definition `json:"when,omitempty"`
}

// ResultEntry is the outcome of evaluating one rule. Active=false marks a
// rule whose "when" prerequisites failed; its predicate was never invoked
// and Passed is forced to true so it does not count as a failure.
type ResultEntry struct {
	Field     string `json:"field"`
	Kind      string `json:"kind"`
	Active    bool   `json:"active"`
	Message   string `json:"message"`
	Namespace string `json:"namespace"`
	Passed    bool   `json:"passed"`
}

// Resource limits enforced by the rule engine to keep evaluation bounded
// and deterministic.
const (
	// MaxFieldPathDepth prevents stack growth during recursive path
	// resolution. 16 bracket groups handles deeply nested form data.
	MaxFieldPathDepth = 16

	// MaxWhenDepth bounds "when" prerequisite nesting. Definitions are
	// trees, but the ApplyWhen combinator can still chain compiled rules,
	// so both the compiler and the evaluator enforce this ceiling.
	MaxWhenDepth = 8

	// MaxRulesPerSet limits rules per namespace so a single evaluation
	// pass stays proportional to form size rather than stored input.
	MaxRulesPerSet = 1000

	// MaxOneOfValues limits oneOf whitelists to prevent quadratic
	// membership scans.
	MaxOneOfValues = 256

	// MaxPayloadSize limits evaluation request bodies. 1MB covers typical
	// form submissions; larger documents should be validated in chunks.
	MaxPayloadSize = 1024 * 1024

	// MaxNamespaceLength bounds namespace identifiers in storage and URLs.
	MaxNamespaceLength = 128
)
