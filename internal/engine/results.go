// internal/engine/results.go
package engine

import (
	"encoding/json"

	"github.com/rulegate/rulegate/internal/types"
)

/*
 * Result-set aggregation and query surface.
 *
 * An ordered, append-only collection of result entries. Every evaluation
 * call produces a fresh set; the query operations derive new sets over
 * filtered subsequences and never mutate the receiver, so a set handed to
 * a caller stays stable no matter how it is sliced afterwards.
 */

// ResultSet holds per-rule outcomes for one evaluation call, in the order
// the rules were supplied.
type ResultSet struct {
	entries []types.ResultEntry
}

// append adds an entry during an evaluation pass. Unexported: the set is
// read-only once the pass completes.
func (rs *ResultSet) append(e types.ResultEntry) {
	rs.entries = append(rs.entries, e)
}

// Entries returns a copy of all entries in insertion order.
func (rs *ResultSet) Entries() []types.ResultEntry {
	out := make([]types.ResultEntry, len(rs.entries))
	copy(out, rs.entries)
	return out
}

// Len returns the number of entries.
func (rs *ResultSet) Len() int {
	return len(rs.entries)
}

// ByField returns a new set holding entries whose field is in names.
func (rs *ResultSet) ByField(names ...string) *ResultSet {
	return rs.filter(func(e types.ResultEntry) bool {
		for _, n := range names {
			if e.Field == n {
				return true
			}
		}
		return false
	})
}

// ByKind returns a new set holding entries whose kind is in kinds.
func (rs *ResultSet) ByKind(kinds ...string) *ResultSet {
	return rs.filter(func(e types.ResultEntry) bool {
		for _, k := range kinds {
			if e.Kind == k {
				return true
			}
		}
		return false
	})
}

// Passed returns a new set holding only passing entries.
func (rs *ResultSet) Passed() *ResultSet {
	return rs.filter(func(e types.ResultEntry) bool { return e.Passed })
}

// Failed returns a new set holding only failing entries.
func (rs *ResultSet) Failed() *ResultSet {
	return rs.filter(func(e types.ResultEntry) bool { return !e.Passed })
}

// Active returns a new set holding entries whose predicate actually ran.
func (rs *ResultSet) Active() *ResultSet {
	return rs.filter(func(e types.ResultEntry) bool { return e.Active })
}

// Status reports whether the evaluation passed: true iff no entry failed.
func (rs *ResultSet) Status() bool {
	return rs.Failed().Len() == 0
}

// Messages returns the rendered message of every entry, in order. Not
// filtered by outcome; combine with Failed() for user-facing errors.
func (rs *ResultSet) Messages() []string {
	out := make([]string, len(rs.entries))
	for i, e := range rs.entries {
		out[i] = e.Message
	}
	return out
}

func (rs *ResultSet) filter(keep func(types.ResultEntry) bool) *ResultSet {
	sub := &ResultSet{}
	for _, e := range rs.entries {
		if keep(e) {
			sub.entries = append(sub.entries, e)
		}
	}
	return sub
}

// MarshalJSON serializes the set as a flat entry array.
func (rs *ResultSet) MarshalJSON() ([]byte, error) {
	if rs.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(rs.entries)
}
