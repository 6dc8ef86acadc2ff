package request

import "encoding/json"

// SetScopeRequest is the body for granting a client a scope
type SetScopeRequest struct {
	Scope string `json:"scope"`
}

// PatchPlayerRequest is the body for merge-patching a player's state.
// State carries the merge patch document itself.
type PatchPlayerRequest struct {
	State json.RawMessage `json:"state"`
}
