// Package state defines the health states a component can be in, the
// snapshot shape published for every node of a component tree, and the
// rule that folds a node's own state together with its children's.
//
// The snapshot shape is the contract consumed by health reporting layers:
//
//	{
//	  "name": "UserStateManager",
//	  "state": "DEGRADED",
//	  "reason": "subcomponents not ok: UserRepository=FAILED",
//	  "updatedOn": "2026-10-15T09:12:44.102Z",
//	  "components": [ ... ]
//	}
//
// Leaves never carry a components field.
package state
