// Package diff computes minimal field-level change sets between two
// snapshots of the same resource kind. Each kind enumerates its own scalar
// attributes (see types.Snapshot), so there is no runtime introspection and
// the comparison per kind stays a plain map walk. Child collections never
// appear in a diff; containment changes travel as explicit move events.
package diff

import (
	"errors"
	"reflect"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
)

// ErrInvalidDiffOperands reports a programmer error: operands of different
// kinds, or a missing operand. It is never a user-facing condition.
var ErrInvalidDiffOperands = errors.New("clutter-map: diff requires two snapshots of the same resource kind")

// Diff returns field -> newValue for every declared attribute whose value
// changed between before and after. Null-to-value transitions (and the
// reverse) count as changes. Identical snapshots yield an empty map. The
// result is deterministic: same operands, same map.
func Diff(before, after types.Snapshot) (map[string]any, error) {
	if before == nil || after == nil {
		return nil, ErrInvalidDiffOperands
	}
	if before.ResourceKind() != after.ResourceKind() {
		return nil, ErrInvalidDiffOperands
	}

	oldFields := before.Fields()
	newFields := after.Fields()

	changes := make(map[string]any)
	for field, newValue := range newFields {
		oldValue, ok := oldFields[field]
		if !ok || !valuesEqual(oldValue, newValue) {
			changes[field] = newValue
		}
	}
	return changes, nil
}

// valuesEqual compares attribute values null-safely. Slices and maps are
// compared structurally; a nil slice equals an empty one so storage drivers
// that round-trip nil differently do not produce phantom diffs.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Kind() == reflect.Slice && bv.Kind() == reflect.Slice {
		if av.Len() == 0 && bv.Len() == 0 {
			return true
		}
	}
	return reflect.DeepEqual(a, b)
}
