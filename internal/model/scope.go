package model

import (
	"encoding/json"
	"strings"
)

const (
	adminScope = "admin"
	roomPrefix = "room-"
)

// Scope is a client's granted authorization tier: admin, or access to a
// single named room. The zero value is not valid; construct via AdminScope,
// RoomScope or ParseScope. Absence of a scope is modelled as *Scope == nil.
type Scope struct {
	admin bool
	room  string
}

// AdminScope returns the admin scope
func AdminScope() Scope {
	return Scope{admin: true}
}

// RoomScope returns a scope granting access to the named room
func RoomScope(name string) Scope {
	return Scope{room: name}
}

// ParseScope parses "admin" or "room-<name>"
func ParseScope(s string) (Scope, error) {
	if s == adminScope {
		return AdminScope(), nil
	}
	if name, ok := strings.CutPrefix(s, roomPrefix); ok && name != "" {
		return RoomScope(name), nil
	}
	return Scope{}, ErrInvalidScope
}

// IsAdmin reports whether the scope is the admin scope
func (s Scope) IsAdmin() bool {
	return s.admin
}

// Room returns the room name and true for a room scope
func (s Scope) Room() (string, bool) {
	if s.admin {
		return "", false
	}
	return s.room, true
}

func (s Scope) String() string {
	if s.admin {
		return adminScope
	}
	return roomPrefix + s.room
}

// MarshalJSON serializes the scope as its wire string
func (s Scope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses the wire string form
func (s *Scope) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseScope(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
