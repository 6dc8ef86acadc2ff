package model

import (
	"regexp"
	"time"
)

// ClientID is the short public identifier of a registered client
type ClientID string

// RootClientID is the id reported for the root-token escape hatch.
// It never corresponds to a stored client row.
const RootClientID ClientID = "ROOT"

var (
	clientIDPattern = regexp.MustCompile(`^[A-Z]{4}$`)
	tokenPattern    = regexp.MustCompile(`^[a-z0-9]{8}-[a-z0-9]{4}-[a-z0-9]{4}-[a-z0-9]{4}-[a-z0-9]{12}$`)
)

// Client represents a registered caller/session
type Client struct {
	// Token is the secret session credential. It must never appear
	// in any read response.
	Token        string
	ID           ClientID
	Scope        *Scope // nil until an admin grants one
	CreatedAt    time.Time
	LastModified time.Time
}

// ValidClientID reports whether id is a well-formed client id (4 uppercase letters)
func ValidClientID(id ClientID) bool {
	return clientIDPattern.MatchString(string(id))
}

// ValidToken reports whether token is a well-formed session token (UUIDv4 shape)
func ValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}
