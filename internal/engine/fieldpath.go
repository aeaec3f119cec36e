// internal/engine/fieldpath.go
package engine

import (
	"strconv"
	"strings"

	"github.com/rulegate/rulegate/internal/types"
)

/*
 * Field path resolution for input data mappings.
 *
 * Parses bracket-notation path expressions ("customer[address][zip]") into
 * segment chains at compile time, then resolves them against decoded JSON
 * structures at evaluation time. A trailing empty bracket group ("tags[]")
 * is an array marker for rule authors and is stripped during parsing; list
 * semantics belong to the count predicates, not the resolver.
 *
 * Key functions:
 *   - ParsePath: expression -> []Segment, validated once per rule
 *   - Resolve: traverses nested maps/slices following the segment chain
 *
 * Missing semantics: a path that cannot be walked to the end yields
 * Subject{Present: false}. This is distinct from a present null or empty
 * value; the required/optional predicates depend on that distinction, as
 * does single-field scoped evaluation.
 */

// Segment is one component of a field path. Bracket keys are stored as
// strings; numeric keys double as slice indices during resolution.
type Segment struct {
	Key string
}

// Subject is the value extracted from input data for one rule.
// Present=false means the path did not resolve (MISSING), which predicates
// must distinguish from a present nil or empty value.
type Subject struct {
	Value   any
	Present bool
}

// missing is the canonical not-found subject.
var missing = Subject{}

// ParsePath parses a bracket-notation field path expression into segments.
// Returns ErrInvalidFieldPath for empty expressions, unbalanced brackets,
// or empty bracket groups in non-trailing position.
// Returns ErrFieldPathTooDeep when segments exceed MaxFieldPathDepth.
func ParsePath(expr string) ([]Segment, error) {
	if expr == "" {
		return nil, types.ErrInvalidFieldPath
	}

	open := strings.IndexByte(expr, '[')
	if open < 0 {
		if strings.IndexByte(expr, ']') >= 0 {
			return nil, types.ErrInvalidFieldPath
		}
		return []Segment{{Key: expr}}, nil
	}
	if open == 0 {
		return nil, types.ErrInvalidFieldPath
	}

	segs := []Segment{{Key: expr[:open]}}
	rest := expr[open:]

	for rest != "" {
		if rest[0] != '[' {
			return nil, types.ErrInvalidFieldPath
		}
		close := strings.IndexByte(rest, ']')
		if close < 0 {
			return nil, types.ErrInvalidFieldPath
		}
		key := rest[1:close]
		rest = rest[close+1:]

		if key == "" {
			// Trailing "[]" is an array marker, not a path segment
			if rest != "" {
				return nil, types.ErrInvalidFieldPath
			}
			break
		}
		segs = append(segs, Segment{Key: key})
	}

	if len(segs) > types.MaxFieldPathDepth {
		return nil, types.ErrFieldPathTooDeep
	}

	return segs, nil
}

// Resolve traverses data following the segment chain, descending one level
// per segment. Returns a MISSING subject as soon as the current value is not
// a container or the key is absent.
func Resolve(data map[string]any, segs []Segment) Subject {
	if data == nil || len(segs) == 0 {
		return missing
	}

	var current any = data
	for _, seg := range segs {
		switch v := current.(type) {
		case map[string]any:
			val, ok := v[seg.Key]
			if !ok {
				return missing
			}
			current = val
		case []any:
			idx, err := strconv.Atoi(seg.Key)
			if err != nil || idx < 0 || idx >= len(v) {
				return missing
			}
			current = v[idx]
		default:
			// Scalar or nil but path continues
			return missing
		}
	}

	return Subject{Value: current, Present: true}
}
