// internal/engine/definition.go
package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/rulegate/rulegate/internal/types"
)

/*
 * Rule compilation and validation.
 *
 * Compiles a wire-format types.Definition into a Rule with a parsed field
 * path, a resolved predicate, and kind-specific pre-processing (compiled
 * regex, normalized oneOf whitelist).
 *
 * Why compile-time validation: resolving the kind against the catalog and
 * validating configuration during compilation moves error detection to rule
 * registration time. An unknown kind or malformed oneOf never reaches an
 * evaluation pass.
 *
 * "not<Kind>" normalization: a kind named "notRegex" compiles as "regex"
 * with the inverse flag set, provided the stripped name maps to a known
 * kind. This is an explicit construction-time step, not dispatch magic.
 *
 * Rules are immutable after compilation except for ApplyWhen, which may
 * extend the prerequisite list before first use. ApplyWhen rejects cycles
 * and excessive nesting as definition errors.
 */

// Rule is a compiled, evaluation-ready validation rule.
type Rule struct {
	Kind     string
	Field    string
	Value    any
	Message  string // template with {{field}}/{{value}} placeholders
	Optional bool
	Inverse  bool
	When     []*Rule

	path      []Segment
	predicate predicateFunc
	pattern   *regexp.Regexp // regex kind only
	choices   []any          // oneOf kind only
}

// Compile validates a definition and produces an evaluation-ready Rule.
// Fails on missing kind or field, unknown kinds, malformed field paths,
// uncompilable patterns, and oneOf values that are neither list nor
// mapping. "when" definitions compile recursively.
func Compile(def types.Definition) (*Rule, error) {
	return compile(def, 0)
}

// CompileAll compiles an ordered rule list, failing on the first invalid
// definition so a rule set is never partially usable.
func CompileAll(defs []types.Definition) ([]*Rule, error) {
	rules := make([]*Rule, 0, len(defs))
	for i, def := range defs {
		r, err := compile(def, 0)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func compile(def types.Definition, depth int) (*Rule, error) {
	if depth > types.MaxWhenDepth {
		return nil, types.ErrWhenTooDeep
	}
	if def.Kind == "" {
		return nil, types.ErrMissingKind
	}
	if def.Field == "" {
		return nil, types.ErrMissingField
	}

	kind := def.Kind
	inverse := def.Inverse
	if _, ok := catalog[kind]; !ok {
		if stripped, ok := stripNotPrefix(kind); ok {
			kind = stripped
			inverse = true
		} else {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownKind, def.Kind)
		}
	}

	path, err := ParsePath(def.Field)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", def.Field, err)
	}

	msg := def.Message
	if msg == "" {
		msg = defaultMessages[kind]
	}

	r := &Rule{
		Kind:      kind,
		Field:     def.Field,
		Value:     def.Value,
		Message:   msg,
		Optional:  def.Optional,
		Inverse:   inverse,
		path:      path,
		predicate: catalog[kind],
	}

	switch kind {
	case "regex":
		pat, ok := def.Value.(string)
		if !ok {
			return nil, types.ErrInvalidPattern
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidPattern, err)
		}
		r.pattern = re
	case "oneOf":
		choices, err := normalizeChoices(def.Value)
		if err != nil {
			return nil, err
		}
		r.choices = choices
	}

	for i, sub := range def.When {
		w, err := compile(sub, depth+1)
		if err != nil {
			return nil, fmt.Errorf("when %d: %w", i, err)
		}
		r.When = append(r.When, w)
	}

	return r, nil
}

// stripNotPrefix derives the base kind from a "not<Kind>" name.
// "notRegex" -> "regex". Only succeeds when the stripped name maps to a
// known kind; "notify" does not become "ify".
func stripNotPrefix(kind string) (string, bool) {
	if !strings.HasPrefix(kind, "not") || len(kind) <= 3 {
		return "", false
	}
	rest := []rune(kind[3:])
	if !unicode.IsUpper(rest[0]) {
		return "", false
	}
	rest[0] = unicode.ToLower(rest[0])
	stripped := string(rest)
	if _, ok := catalog[stripped]; !ok {
		return "", false
	}
	return stripped, true
}

// normalizeChoices converts a oneOf value into a flat whitelist. Lists are
// used as-is; mapping keys become the whitelist in sorted order so exports
// are deterministic.
func normalizeChoices(value any) ([]any, error) {
	var choices []any
	switch v := value.(type) {
	case []any:
		choices = v
	case []string:
		choices = make([]any, len(v))
		for i, s := range v {
			choices[i] = s
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		choices = make([]any, len(keys))
		for i, k := range keys {
			choices[i] = k
		}
	default:
		return nil, types.ErrInvalidOneOf
	}
	if len(choices) > types.MaxOneOfValues {
		return nil, types.ErrTooManyOneOfValues
	}
	return choices, nil
}

// ApplyWhen appends prerequisite rules to the "when" list. Explicit
// combinator for hosts that assemble conditional chains after compilation;
// must be called before the rule's first evaluation.
// Returns ErrWhenCycle if a prerequisite chain leads back to r, and
// ErrWhenTooDeep if the combined nesting exceeds MaxWhenDepth.
func (r *Rule) ApplyWhen(prereqs ...*Rule) error {
	for _, p := range prereqs {
		if reaches(p, r) {
			return types.ErrWhenCycle
		}
	}
	extended := append(append([]*Rule{}, r.When...), prereqs...)
	if whenDepth(&Rule{When: extended}, 0) > types.MaxWhenDepth {
		return types.ErrWhenTooDeep
	}
	r.When = extended
	return nil
}

// ApplyWhenAll attaches the same prerequisites to every rule in the list,
// stopping at the first definition error.
func ApplyWhenAll(rules []*Rule, prereqs ...*Rule) error {
	for i, r := range rules {
		if err := r.ApplyWhen(prereqs...); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// reaches reports whether target is reachable from root through "when"
// chains, including root itself.
func reaches(root, target *Rule) bool {
	if root == target {
		return true
	}
	for _, w := range root.When {
		if reaches(w, target) {
			return true
		}
	}
	return false
}

// whenDepth returns the deepest "when" nesting level below r.
func whenDepth(r *Rule, depth int) int {
	max := depth
	for _, w := range r.When {
		if d := whenDepth(w, depth+1); d > max {
			max = d
		}
	}
	return max
}

// Definition reconstructs the wire-format definition of a compiled rule.
// The output reflects normalization: a "notRegex" definition exports as
// kind "regex" with inverse set, and default messages stay implicit.
func (r *Rule) Definition() types.Definition {
	def := types.Definition{
		Kind:     r.Kind,
		Field:    r.Field,
		Value:    r.Value,
		Optional: r.Optional,
		Inverse:  r.Inverse,
	}
	if r.Message != defaultMessages[r.Kind] {
		def.Message = r.Message
	}
	for _, w := range r.When {
		def.When = append(def.When, w.Definition())
	}
	return def
}

// renderMessage substitutes {{field}} and {{value}} placeholders.
// Hosts needing richer translation replace messages before compilation.
func renderMessage(template, field string, value any) string {
	return strings.NewReplacer(
		"{{field}}", field,
		"{{value}}", formatValue(value),
	).Replace(template)
}

// formatValue renders a rule value for message substitution. Lists join
// with commas so oneOf messages read naturally.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = formatValue(e)
		}
		return strings.Join(parts, ", ")
	default:
		if s, ok := asString(v); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
}
