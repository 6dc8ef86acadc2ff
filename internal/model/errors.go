package model

import "errors"

// Common errors used across the application
var (
	// Client errors
	ErrClientNotFound  = errors.New("client not found")
	ErrClientIDTaken   = errors.New("client id is already taken")
	ErrInvalidClientID = errors.New("invalid client id")
	ErrInvalidScope    = errors.New("invalid scope")

	// Player errors
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInvalidPlayerID   = errors.New("invalid player id")
	ErrInvalidStatePatch = errors.New("state patch must be a JSON object")

	// Id allocation retry bound exceeded; operational anomaly, not user error
	ErrAllocationExhausted = errors.New("client id allocation exhausted")
)
