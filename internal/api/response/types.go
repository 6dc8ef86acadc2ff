package response

import (
	"encoding/json"
	"time"

	"github.com/mcoot/tabletag-go/internal/model"
	"github.com/mcoot/tabletag-go/internal/services/identity"
)

// Session represents a resolved caller identity in API responses
type Session struct {
	ID    string       `json:"id"`
	Scope *model.Scope `json:"scope"`
}

// SessionFromIdentity converts an identity session to a response Session
func SessionFromIdentity(s identity.Session) Session {
	return Session{
		ID:    string(s.ID),
		Scope: s.Scope,
	}
}

// Client represents a client record in API responses. The session token is
// a credential and is never included; it travels only in the cookie set at
// registration time.
type Client struct {
	ID           string       `json:"id"`
	Scope        *model.Scope `json:"scope"`
	CreatedAt    time.Time    `json:"created_at"`
	LastModified time.Time    `json:"last_modified"`
}

// ClientFromModel converts a model.Client to a response Client
func ClientFromModel(c *model.Client) Client {
	return Client{
		ID:           string(c.ID),
		Scope:        c.Scope,
		CreatedAt:    c.CreatedAt,
		LastModified: c.LastModified,
	}
}

// ClientsFromModel converts a slice of model.Client
func ClientsFromModel(clients []*model.Client) []Client {
	out := make([]Client, len(clients))
	for i, c := range clients {
		out[i] = ClientFromModel(c)
	}
	return out
}

// Player represents a player record with its full state document
type Player struct {
	ID           string          `json:"id"`
	State        json.RawMessage `json:"state"`
	CreatedAt    time.Time       `json:"created_at"`
	LastModified time.Time       `json:"last_modified"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:           string(p.ID),
		State:        p.State,
		CreatedAt:    p.CreatedAt,
		LastModified: p.LastModified,
	}
}

// PlayerSummary represents a player record without its state document
type PlayerSummary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

// PlayerSummariesFromModel converts a slice of model.PlayerSummary
func PlayerSummariesFromModel(summaries []*model.PlayerSummary) []PlayerSummary {
	out := make([]PlayerSummary, len(summaries))
	for i, s := range summaries {
		out[i] = PlayerSummary{
			ID:           string(s.ID),
			CreatedAt:    s.CreatedAt,
			LastModified: s.LastModified,
		}
	}
	return out
}

// Envelope wraps a successful data response
type Envelope struct {
	Data any `json:"data"`
}

// SuccessResponse acknowledges an operation with no data to return
type SuccessResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is the health check response
type HealthResponse struct {
	Status string `json:"status"`
}
