package registry

import (
	"sync"
	"testing"

	"github.com/rulegate/rulegate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupDefs() []types.Definition {
	return []types.Definition{
		{Kind: "required", Field: "email", Value: true},
		{Kind: "regex", Field: "email", Value: `@`},
		{Kind: "minLength", Field: "password", Value: float64(8)},
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register("signup", signupDefs()))

	rules, err := r.Rules("signup")
	require.NoError(t, err)
	assert.Len(t, rules, 3)
	assert.Equal(t, []string{"signup"}, r.Namespaces())
}

func TestRegister_InvalidDefinitionsRejected(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register("signup", signupDefs()))

	bad := []types.Definition{
		{Kind: "required", Field: "email", Value: true},
		{Kind: "mystery", Field: "email"},
	}
	err := r.Register("signup", bad)
	require.ErrorIs(t, err, types.ErrUnknownKind)

	// Previous set survives a failed replacement
	rules, err := r.Rules("signup")
	require.NoError(t, err)
	assert.Len(t, rules, 3)
}

func TestRegister_Limits(t *testing.T) {
	t.Parallel()

	r := New()

	long := make([]byte, types.MaxNamespaceLength+1)
	for i := range long {
		long[i] = 'n'
	}
	assert.ErrorIs(t, r.Register(string(long), signupDefs()), types.ErrNamespaceTooLong)

	many := make([]types.Definition, types.MaxRulesPerSet+1)
	for i := range many {
		many[i] = types.Definition{Kind: "required", Field: "f", Value: true}
	}
	assert.ErrorIs(t, r.Register("big", many), types.ErrTooManyRules)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register("signup", signupDefs()))

	rs, err := r.Evaluate("signup", map[string]any{
		"email":    "a@b.c",
		"password": "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.True(t, rs.Status())
	assert.Equal(t, "signup", rs.Entries()[0].Namespace)

	_, err = r.Evaluate("unknown", map[string]any{"email": "a@b.c"})
	assert.ErrorIs(t, err, types.ErrNamespaceNotFound)
}

func TestEvaluateField(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register("signup", signupDefs()))

	rs, err := r.EvaluateField("signup", "password", "short")
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len(), "only the password rule applies")
	assert.False(t, rs.Status())
}

func TestExport(t *testing.T) {
	t.Parallel()

	r := New()
	defs := signupDefs()
	require.NoError(t, r.Register("signup", defs))

	exported, err := r.Export("signup")
	require.NoError(t, err)
	assert.Equal(t, defs, exported)

	// Mutating the export must not affect the registry
	exported[0].Field = "tampered"
	again, err := r.Export("signup")
	require.NoError(t, err)
	assert.Equal(t, "email", again[0].Field)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register("signup", signupDefs()))

	assert.True(t, r.Remove("signup"))
	assert.False(t, r.Remove("signup"))
	_, err := r.Rules("signup")
	assert.ErrorIs(t, err, types.ErrNamespaceNotFound)
}

func TestETag(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	require.NoError(t, a.Register("signup", signupDefs()))
	require.NoError(t, b.Register("signup", signupDefs()))
	assert.Equal(t, a.ETag(), b.ETag(), "identical contents produce identical tags")

	require.NoError(t, b.Register("checkout", []types.Definition{
		{Kind: "required", Field: "total", Value: true},
	}))
	assert.NotEqual(t, a.ETag(), b.ETag())
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register("signup", signupDefs()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rs, err := r.Evaluate("signup", map[string]any{"email": "a@b.c", "password": "longenough"})
				if err != nil || !rs.Status() {
					t.Errorf("Evaluate() = %v, %v", rs, err)
					return
				}
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = r.Register("signup", signupDefs())
				_ = r.ETag()
			}
		}()
	}
	wg.Wait()
}
