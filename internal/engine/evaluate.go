// internal/engine/evaluate.go
package engine

import (
	"fmt"

	"github.com/rulegate/rulegate/internal/types"
)

/*
 * Conditional rule evaluation orchestration.
 *
 * Evaluates an ordered rule list against an input data mapping, producing
 * one ResultEntry per rule in input order.
 *
 * Evaluation flow, per rule:
 *   1. Resolve subject via the field path
 *   2. Single-field scoped calls skip rules whose subject is missing
 *   3. Non-empty "when" lists run as an independent sub-evaluation against
 *      the same data; a failing prerequisite records the rule as inactive
 *      (active=false, passed=true) without invoking its predicate
 *   4. Otherwise dispatch the predicate and XOR the inverse flag
 *
 * Sub-evaluations are fully resolved before the parent's entry is appended,
 * so entries never interleave with sibling rules. Recursion depth equals
 * "when" nesting depth; MaxWhenDepth guards against chains assembled after
 * compilation.
 *
 * Predicate configuration errors abort the pass. A misconfigured rule set
 * must surface to the caller, never masquerade as a pass or a failure.
 */

// Evaluator runs rule lists against input data. The namespace is an opaque
// grouping tag threaded into every result entry; the engine itself never
// interprets it.
type Evaluator struct {
	Namespace string
}

// NewEvaluator creates an evaluator tagging entries with namespace.
func NewEvaluator(namespace string) *Evaluator {
	return &Evaluator{Namespace: namespace}
}

// Evaluate runs rules against a full data mapping. Nil or empty data means
// there is nothing to validate: the result set is empty and no error is
// returned.
func (e *Evaluator) Evaluate(data map[string]any, rules []*Rule) (*ResultSet, error) {
	return e.run(data, rules, false, 0)
}

// EvaluateField runs rules against a single field/value pair. Rules whose
// subject does not resolve under this scoping are skipped entirely,
// producing no entry, so a caller can validate one input in isolation.
func (e *Evaluator) EvaluateField(field string, value any, rules []*Rule) (*ResultSet, error) {
	return e.run(map[string]any{field: value}, rules, true, 0)
}

func (e *Evaluator) run(data map[string]any, rules []*Rule, scoped bool, depth int) (*ResultSet, error) {
	if depth > types.MaxWhenDepth {
		return nil, types.ErrWhenTooDeep
	}

	rs := &ResultSet{}
	if len(data) == 0 {
		return rs, nil
	}

	for _, r := range rules {
		sub := Resolve(data, r.path)
		if scoped && !sub.Present {
			continue
		}

		if len(r.When) > 0 {
			prereq, err := e.run(data, r.When, scoped, depth+1)
			if err != nil {
				return nil, err
			}
			if !prereq.Status() {
				// Prerequisite failed: record inactive, never run the predicate
				rs.append(e.entry(r, false, true))
				continue
			}
		}

		passed, err := r.predicate(sub, r)
		if err != nil {
			return nil, fmt.Errorf("rule %q on field %q: %w", r.Kind, r.Field, err)
		}
		if r.Inverse {
			passed = !passed
		}
		rs.append(e.entry(r, true, passed))
	}

	return rs, nil
}

func (e *Evaluator) entry(r *Rule, active, passed bool) types.ResultEntry {
	return types.ResultEntry{
		Field:     r.Field,
		Kind:      r.Kind,
		Active:    active,
		Message:   renderMessage(r.Message, r.Field, r.Value),
		Namespace: e.Namespace,
		Passed:    passed,
	}
}
