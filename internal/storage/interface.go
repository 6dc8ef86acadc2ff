package storage

import (
	"context"
	"encoding/json"

	"github.com/mcoot/tabletag-go/internal/model"
)

// Store defines the interface for the durable record store.
//
// Mutations report not-found purely through their result (zero rows
// affected maps to the relevant sentinel error); callers never pair an
// existence check with a mutation.
type Store interface {
	// Client operations

	// InsertClient creates a client row with no scope. The caller must
	// have established, under the shard's write slot, that the token is
	// unassigned; a uniqueness violation therefore means the generated id
	// collided and is reported as model.ErrClientIDTaken.
	InsertClient(ctx context.Context, token string, id model.ClientID) error
	GetClientByToken(ctx context.Context, token string) (*model.Client, error)
	GetClientByID(ctx context.Context, id model.ClientID) (*model.Client, error)
	// ListClients returns all clients, newest-created first
	ListClients(ctx context.Context) ([]*model.Client, error)
	// SetClientScope updates the scope and bumps LastModified
	SetClientScope(ctx context.Context, id model.ClientID, scope model.Scope) error
	DeleteClient(ctx context.Context, id model.ClientID) error

	// Player operations

	// CreatePlayerIfAbsent inserts a player with an empty state document;
	// it is a no-op for an existing id
	CreatePlayerIfAbsent(ctx context.Context, id model.PlayerID) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// ListPlayers returns summaries without state bodies, most-recently-modified first
	ListPlayers(ctx context.Context) ([]*model.PlayerSummary, error)
	// PatchPlayerState merge-patches the state document atomically and
	// bumps LastModified
	PatchPlayerState(ctx context.Context, id model.PlayerID, patch json.RawMessage) error
	DeletePlayer(ctx context.Context, id model.PlayerID) error
}
