// internal/engine/coerce.go
package engine

import (
	"strconv"
	"strings"
)

/*
 * Type coercion helpers for predicate evaluation.
 *
 * Input data arrives as decoded JSON, so scalars are float64, string, bool,
 * or nil; programmatic callers may also pass int/int64. The catalog kinds
 * each pick the coercions they need:
 *
 *   - Length and regex kinds view numeric subjects through asString
 *   - Value kinds view numeric strings through asFloat
 *   - equals coerces the subject toward the configured value's type,
 *     with booleans excluded from coercion entirely
 *
 * Booleans never coerce to strings or numbers; "true" vs 1 ambiguity is
 * rejected rather than guessed at.
 */

// truthy reports whether a value is non-empty in the loose sense used by
// the permissive predicates (maxLength, maxValue, required activation).
// nil, false, empty string, zero numbers, and empty containers are falsy.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// asFloat converts a value to float64 for numeric comparison.
// Accepts float64, int, int64, and numeric strings. Rejects booleans.
// Whitespace-only strings are not valid numbers.
func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asString converts a value to its string form for length and pattern
// checks. Numeric subjects coerce; booleans and containers do not.
func asString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	default:
		return "", false
	}
}

// equalValues performs equality comparison with numeric type mixing.
// float64/int/int64 compare by numeric value for JSON compatibility;
// everything else compares by strict equality of comparable scalars.
func equalValues(a, b any) bool {
	if fa, oka := numeric(a); oka {
		if fb, okb := numeric(b); okb {
			return fa == fb
		}
		return false
	}
	switch a.(type) {
	case string, bool, nil:
		return a == b
	default:
		return false
	}
}

// numeric converts strictly numeric types to float64. Unlike asFloat it
// does not parse strings, so "5" and 5 stay distinct in membership checks.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
