package model

import (
	"encoding/json"
	"regexp"
	"time"
)

// PlayerID uniquely identifies a player. Ids are derived from scanned
// physical tags: 6 characters from the uppercase hex alphabet.
type PlayerID string

var playerIDPattern = regexp.MustCompile(`^[A-F0-9]{6}$`)

// Player represents a game participant with a mutable JSON state document
type Player struct {
	ID PlayerID
	// State is always a valid JSON object; it is mutated only via merge patch
	State        json.RawMessage
	CreatedAt    time.Time
	LastModified time.Time
}

// PlayerSummary is a player record without its state body, for listings
type PlayerSummary struct {
	ID           PlayerID
	CreatedAt    time.Time
	LastModified time.Time
}

// EmptyState is the state document assigned to a freshly registered player
func EmptyState() json.RawMessage {
	return json.RawMessage(`{}`)
}

// ValidPlayerID reports whether id is a well-formed player id
func ValidPlayerID(id PlayerID) bool {
	return playerIDPattern.MatchString(string(id))
}

// IsJSONObject reports whether raw is a JSON object document
func IsJSONObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil && m != nil
}
