package crudguard

import (
	"maps"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/goliatone/go-crud"
)

// DefaultPolicyMap maps the standard CRUD verbs onto the inventory policy
// actions. Create/Update/Delete (and their batch variants) map to the write
// action while list/show map to the read action.
func DefaultPolicyMap() map[crud.CrudOperation]types.PolicyAction {
	return map[crud.CrudOperation]types.PolicyAction{
		crud.OpRead:        types.PolicyActionInventoryRead,
		crud.OpList:        types.PolicyActionInventoryRead,
		crud.OpCreate:      types.PolicyActionInventoryWrite,
		crud.OpCreateBatch: types.PolicyActionInventoryWrite,
		crud.OpUpdate:      types.PolicyActionInventoryWrite,
		crud.OpUpdateBatch: types.PolicyActionInventoryWrite,
		crud.OpDelete:      types.PolicyActionInventoryWrite,
		crud.OpDeleteBatch: types.PolicyActionInventoryWrite,
	}
}

func clonePolicyMap(in map[crud.CrudOperation]types.PolicyAction) map[crud.CrudOperation]types.PolicyAction {
	if len(in) == 0 {
		return nil
	}
	cp := make(map[crud.CrudOperation]types.PolicyAction, len(in))
	maps.Copy(cp, in)
	return cp
}
