package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rulegate/rulegate/internal/types"
)

func TestEvaluate_OneEntryPerRule(t *testing.T) {
	rules, err := CompileAll([]types.Definition{
		{Kind: "required", Field: "name", Value: true},
		{Kind: "minLength", Field: "name", Value: float64(3)},
		{Kind: "minValue", Field: "age", Value: float64(18)},
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}

	rs, err := NewEvaluator("signup").Evaluate(map[string]any{"name": "Alice", "age": float64(30)}, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if rs.Len() != len(rules) {
		t.Fatalf("Len() = %d, want %d", rs.Len(), len(rules))
	}
	for i, e := range rs.Entries() {
		if !e.Active || !e.Passed {
			t.Errorf("entry %d = %+v, want active and passed", i, e)
		}
		if e.Namespace != "signup" {
			t.Errorf("entry %d namespace = %q, want signup", i, e.Namespace)
		}
	}
}

func TestEvaluate_EntryOrderMatchesRuleOrder(t *testing.T) {
	rules, err := CompileAll([]types.Definition{
		{Kind: "required", Field: "a", Value: true},
		{Kind: "required", Field: "b", Value: true},
		{Kind: "required", Field: "c", Value: true},
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}

	rs, err := NewEvaluator("t").Evaluate(map[string]any{"b": "x"}, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	var fields []string
	for _, e := range rs.Entries() {
		fields = append(fields, e.Field)
	}
	if !reflect.DeepEqual(fields, []string{"a", "b", "c"}) {
		t.Errorf("entry order = %v, want [a b c]", fields)
	}
}

func TestEvaluate_EmptyDataNothingToValidate(t *testing.T) {
	rules, _ := CompileAll([]types.Definition{{Kind: "required", Field: "name", Value: true}})

	for _, data := range []map[string]any{nil, {}} {
		rs, err := NewEvaluator("t").Evaluate(data, rules)
		if err != nil {
			t.Fatalf("Evaluate() error = %v, want nil", err)
		}
		if rs.Len() != 0 {
			t.Errorf("Len() = %d, want 0", rs.Len())
		}
		if !rs.Status() {
			t.Errorf("Status() = false, want true for empty data")
		}
	}
}

func TestEvaluate_WhenPrerequisiteFails(t *testing.T) {
	// The guarded rule would fail hard if its predicate ever ran: the
	// subject is missing and required would report a failure.
	rules, err := CompileAll([]types.Definition{
		{
			Kind: "required", Field: "shipping_address", Value: true,
			When: []types.Definition{
				{Kind: "equals", Field: "delivery", Value: "postal"},
			},
		},
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}

	rs, err := NewEvaluator("checkout").Evaluate(map[string]any{"delivery": "pickup"}, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if rs.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rs.Len())
	}
	e := rs.Entries()[0]
	if e.Active {
		t.Errorf("Active = true, want false when prerequisite fails")
	}
	if !e.Passed {
		t.Errorf("Passed = false, want true for inactive entry")
	}
	if !rs.Status() {
		t.Errorf("Status() = false, want true (inactive entries never fail)")
	}
}

func TestEvaluate_WhenPrerequisitePasses(t *testing.T) {
	rules, err := CompileAll([]types.Definition{
		{
			Kind: "required", Field: "shipping_address", Value: true,
			When: []types.Definition{
				{Kind: "equals", Field: "delivery", Value: "postal"},
			},
		},
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}

	rs, err := NewEvaluator("checkout").Evaluate(map[string]any{"delivery": "postal"}, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	e := rs.Entries()[0]
	if !e.Active {
		t.Errorf("Active = false, want true when prerequisite passes")
	}
	if e.Passed {
		t.Errorf("Passed = true, want false (shipping_address missing)")
	}
}

func TestEvaluate_NestedWhen(t *testing.T) {
	rules, err := CompileAll([]types.Definition{
		{
			Kind: "minLength", Field: "vat_number", Value: float64(4),
			When: []types.Definition{
				{
					Kind: "equals", Field: "account", Value: "business",
					When: []types.Definition{
						{Kind: "required", Field: "account", Value: true},
					},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}

	// Inner prerequisite fails (account missing) so the middle rule is
	// inactive and therefore passing; the outer rule becomes active.
	rs, err := NewEvaluator("t").Evaluate(map[string]any{"vat_number": "NL01"}, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if e := rs.Entries()[0]; !e.Active || !e.Passed {
		t.Errorf("entry = %+v, want active and passed", e)
	}
}

func TestEvaluate_Inverse(t *testing.T) {
	rules, err := CompileAll([]types.Definition{
		{Kind: "minValue", Field: "age", Value: float64(10), Inverse: true},
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}

	ev := NewEvaluator("t")

	rs, err := ev.Evaluate(map[string]any{"age": float64(9)}, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !rs.Entries()[0].Passed {
		t.Errorf("inverse minValue on 9 = failed, want passed")
	}

	rs, err = ev.Evaluate(map[string]any{"age": float64(10)}, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if rs.Entries()[0].Passed {
		t.Errorf("inverse minValue on 10 = passed, want failed")
	}
}

func TestEvaluateField_SkipsUnrelatedRules(t *testing.T) {
	rules, err := CompileAll([]types.Definition{
		{Kind: "required", Field: "email", Value: true},
		{Kind: "minLength", Field: "email", Value: float64(5)},
		{Kind: "required", Field: "name", Value: true},
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}

	rs, err := NewEvaluator("t").EvaluateField("email", "a@b.c", rules)
	if err != nil {
		t.Fatalf("EvaluateField() error = %v", err)
	}

	if rs.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (name rule skipped)", rs.Len())
	}
	for _, e := range rs.Entries() {
		if e.Field != "email" {
			t.Errorf("entry field = %q, want email", e.Field)
		}
	}
}

func TestEvaluate_PredicateConfigErrorIsFatal(t *testing.T) {
	rules, err := CompileAll([]types.Definition{
		{Kind: "minLength", Field: "f", Value: "not numeric"},
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}

	_, err = NewEvaluator("t").Evaluate(map[string]any{"f": "abc"}, rules)
	if !errors.Is(err, types.ErrPredicateConfig) {
		t.Errorf("Evaluate() error = %v, want ErrPredicateConfig", err)
	}
}

func TestEvaluate_MessageRendering(t *testing.T) {
	rules, err := CompileAll([]types.Definition{
		{Kind: "minLength", Field: "name", Value: float64(3)},
		{Kind: "required", Field: "name", Value: true, Message: "who are you, {{field}}?"},
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}

	rs, err := NewEvaluator("t").Evaluate(map[string]any{"name": "ab"}, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	msgs := rs.Messages()
	if msgs[0] != "name must be at least 3 characters" {
		t.Errorf("default message = %q", msgs[0])
	}
	if msgs[1] != "who are you, name?" {
		t.Errorf("custom message = %q", msgs[1])
	}
}

// Property-based test: evaluation is idempotent
func TestEvaluate_PropertyIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	rules, err := CompileAll([]types.Definition{
		{Kind: "required", Field: "name", Value: true},
		{Kind: "minLength", Field: "name", Value: float64(3)},
		{Kind: "minValue", Field: "age", Value: float64(18)},
		{Kind: "oneOf", Field: "country", Value: []any{"nl", "us"}},
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}
	ev := NewEvaluator("prop")

	properties.Property("same data and rules yield structurally identical results", prop.ForAll(
		func(name string, age int, country string) bool {
			data := map[string]any{"name": name, "age": float64(age), "country": country}
			rs1, err1 := ev.Evaluate(data, rules)
			rs2, err2 := ev.Evaluate(data, rules)
			if err1 != nil || err2 != nil {
				return false
			}
			return reflect.DeepEqual(rs1.Entries(), rs2.Entries())
		},
		gen.AlphaString(),
		gen.IntRange(0, 120),
		gen.AlphaString(),
	))

	properties.Property("entry count always equals rule count for full-data form", prop.ForAll(
		func(name string) bool {
			data := map[string]any{"name": name}
			rs, err := ev.Evaluate(data, rules)
			return err == nil && rs.Len() == len(rules)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
