// internal/engine/predicates.go
package engine

import (
	"unicode/utf8"

	"github.com/rulegate/rulegate/internal/types"
)

/*
 * Catalog of rule-kind predicates.
 *
 * Pure functions from (subject, rule) to a boolean outcome. The catalog is
 * a finite table resolved at compile time so unknown kinds fail during rule
 * construction, never during evaluation. The inverse flag is applied by the
 * evaluator, not here.
 *
 * Error returns signal a misconfigured rule set (e.g. a non-numeric
 * minLength threshold that slipped past compilation). They propagate to the
 * caller as fatal evaluation errors and are never folded into pass/fail.
 *
 * Missing subjects (Present=false) are normal inputs, not errors. Most
 * kinds treat missing as failing; maxLength, maxValue, and a deactivated
 * required treat it permissively.
 *
 * Why function-based: a table of 13 small functions over a shared signature
 * reads better than 13 single-method interface implementations.
 */

// predicateFunc evaluates one rule kind against a resolved subject.
type predicateFunc func(sub Subject, r *Rule) (bool, error)

// catalog maps each known kind to its predicate. Compilation resolves
// kinds against this table; evaluation dispatches through the resolved
// function pointer.
var catalog = map[string]predicateFunc{
	"required":    checkRequired,
	"regex":       checkRegex,
	"minLength":   checkMinLength,
	"maxLength":   checkMaxLength,
	"exactLength": checkExactLength,
	"minValue":    checkMinValue,
	"maxValue":    checkMaxValue,
	"oneOf":       checkOneOf,
	"luhn":        checkLuhn,
	"equals":      checkEquals,
	"exactCount":  checkExactCount,
	"minCount":    checkMinCount,
	"maxCount":    checkMaxCount,
}

// defaultMessages provides the per-kind fallback message templates.
// {{field}} and {{value}} are substituted at evaluation time.
var defaultMessages = map[string]string{
	"required":    "{{field}} is required",
	"regex":       "{{field}} has an invalid format",
	"minLength":   "{{field}} must be at least {{value}} characters",
	"maxLength":   "{{field}} must be at most {{value}} characters",
	"exactLength": "{{field}} must be exactly {{value}} characters",
	"minValue":    "{{field}} must be at least {{value}}",
	"maxValue":    "{{field}} must be at most {{value}}",
	"oneOf":       "{{field}} must be one of {{value}}",
	"luhn":        "{{field}} is not a valid card number",
	"equals":      "{{field}} must equal {{value}}",
	"exactCount":  "{{field}} must contain exactly {{value}} items",
	"minCount":    "{{field}} must contain at least {{value}} items",
	"maxCount":    "{{field}} must contain at most {{value}} items",
}

// checkRequired passes when the rule is deactivated (falsy value or the
// optional compatibility flag) or when the subject is present and not an
// empty string.
func checkRequired(sub Subject, r *Rule) (bool, error) {
	// Optional is the activation flag for required, kept for definition
	// compatibility; it does not bypass any other kind.
	if r.Optional || !truthy(r.Value) {
		return true, nil
	}
	if !sub.Present {
		return false, nil
	}
	if s, ok := sub.Value.(string); ok && s == "" {
		return false, nil
	}
	return true, nil
}

// checkRegex passes when the stringified subject matches the compiled
// pattern. Numeric subjects are coerced to their string form first.
func checkRegex(sub Subject, r *Rule) (bool, error) {
	if r.pattern == nil {
		return false, types.ErrPredicateConfig
	}
	if !sub.Present {
		return false, nil
	}
	s, ok := asString(sub.Value)
	if !ok {
		return false, nil
	}
	return r.pattern.MatchString(s), nil
}

func checkMinLength(sub Subject, r *Rule) (bool, error) {
	n, ok := asFloat(r.Value)
	if !ok {
		return false, types.ErrPredicateConfig
	}
	if !sub.Present || n <= 0 {
		return false, nil
	}
	s, ok := asString(sub.Value)
	if !ok {
		return false, nil
	}
	return float64(utf8.RuneCountInString(s)) >= n, nil
}

// checkMaxLength is permissive: a missing or falsy subject passes.
func checkMaxLength(sub Subject, r *Rule) (bool, error) {
	n, ok := asFloat(r.Value)
	if !ok {
		return false, types.ErrPredicateConfig
	}
	if !sub.Present || !truthy(sub.Value) {
		return true, nil
	}
	s, ok := asString(sub.Value)
	if !ok {
		return false, nil
	}
	return float64(utf8.RuneCountInString(s)) <= n, nil
}

func checkExactLength(sub Subject, r *Rule) (bool, error) {
	n, ok := asFloat(r.Value)
	if !ok {
		return false, types.ErrPredicateConfig
	}
	if !sub.Present {
		return false, nil
	}
	s, ok := asString(sub.Value)
	if !ok {
		return false, nil
	}
	return float64(utf8.RuneCountInString(s)) == n, nil
}

func checkMinValue(sub Subject, r *Rule) (bool, error) {
	n, ok := asFloat(r.Value)
	if !ok {
		return false, types.ErrPredicateConfig
	}
	if !sub.Present {
		return false, nil
	}
	f, ok := asFloat(sub.Value)
	if !ok {
		return false, nil
	}
	return f >= n, nil
}

// checkMaxValue is permissive: a missing or falsy subject passes.
func checkMaxValue(sub Subject, r *Rule) (bool, error) {
	n, ok := asFloat(r.Value)
	if !ok {
		return false, types.ErrPredicateConfig
	}
	if !sub.Present || !truthy(sub.Value) {
		return true, nil
	}
	f, ok := asFloat(sub.Value)
	if !ok {
		return false, nil
	}
	return f <= n, nil
}

// checkOneOf tests membership against the whitelist normalized at compile
// time (a list, or the key set of a mapping).
func checkOneOf(sub Subject, r *Rule) (bool, error) {
	if r.choices == nil {
		return false, types.ErrPredicateConfig
	}
	if !sub.Present {
		return false, nil
	}
	for _, c := range r.choices {
		if equalValues(sub.Value, c) {
			return true, nil
		}
	}
	return false, nil
}

// checkLuhn validates a card-style number: strip non-digits, require a
// non-empty result, then verify the Luhn checksum (double every second
// digit from the right, subtract 9 when above 9, sum mod 10 == 0).
func checkLuhn(sub Subject, r *Rule) (bool, error) {
	if !sub.Present {
		return false, nil
	}
	s, ok := asString(sub.Value)
	if !ok {
		return false, nil
	}

	digits := make([]int, 0, len(s))
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits = append(digits, int(c-'0'))
		}
	}
	if len(digits) == 0 {
		return false, nil
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0, nil
}

// checkEquals coerces the subject toward the configured value's type, then
// compares strictly. Integer targets are widened to float64; boolean
// targets accept only boolean subjects.
func checkEquals(sub Subject, r *Rule) (bool, error) {
	if !sub.Present {
		return false, nil
	}
	switch target := r.Value.(type) {
	case bool:
		b, ok := sub.Value.(bool)
		return ok && b == target, nil
	case float64, int, int64:
		t, _ := asFloat(r.Value)
		f, ok := asFloat(sub.Value)
		return ok && f == t, nil
	case string:
		s, ok := asString(sub.Value)
		return ok && s == target, nil
	case nil:
		return sub.Value == nil, nil
	default:
		return false, types.ErrPredicateConfig
	}
}

func checkExactCount(sub Subject, r *Rule) (bool, error) {
	return checkCount(sub, r, func(n, want float64) bool { return n == want })
}

func checkMinCount(sub Subject, r *Rule) (bool, error) {
	return checkCount(sub, r, func(n, want float64) bool { return n >= want })
}

func checkMaxCount(sub Subject, r *Rule) (bool, error) {
	return checkCount(sub, r, func(n, want float64) bool { return n <= want })
}

// checkCount implements the shared list-length comparison. The subject
// must be a list; anything else fails.
func checkCount(sub Subject, r *Rule, cmp func(n, want float64) bool) (bool, error) {
	want, ok := asFloat(r.Value)
	if !ok {
		return false, types.ErrPredicateConfig
	}
	if !sub.Present {
		return false, nil
	}
	list, ok := sub.Value.([]any)
	if !ok {
		return false, nil
	}
	return cmp(float64(len(list)), want), nil
}
