package player

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/tabletag-go/internal/model"
	"github.com/mcoot/tabletag-go/internal/shard"
	"github.com/mcoot/tabletag-go/internal/storage"
)

// Service manages durable per-player state documents
type Service struct {
	store  storage.Store
	shard  *shard.Serializer
	logger *slog.Logger
}

// New creates a new player service
func New(store storage.Store, sh *shard.Serializer, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		shard:  sh,
		logger: logger,
	}
}

// RegisterOrFetch creates the player with empty state if it does not exist,
// then returns it. Registering an existing player is a no-op fetch.
func (s *Service) RegisterOrFetch(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if !model.ValidPlayerID(id) {
		return nil, model.ErrInvalidPlayerID
	}

	err := s.shard.Do(func() error {
		return s.store.CreatePlayerIfAbsent(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetPlayer(ctx, id)
}

// Fetch returns a player by id
func (s *Service) Fetch(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if !model.ValidPlayerID(id) {
		return nil, model.ErrInvalidPlayerID
	}
	return s.store.GetPlayer(ctx, id)
}

// ListAll returns summaries of all players, most-recently-modified first
func (s *Service) ListAll(ctx context.Context) ([]*model.PlayerSummary, error) {
	return s.store.ListPlayers(ctx)
}

// Patch merge-patches a player's state document and returns the result.
// The patch must be a JSON object; null members delete keys, nested
// objects merge, and everything else replaces.
func (s *Service) Patch(ctx context.Context, id model.PlayerID, patch json.RawMessage) (*model.Player, error) {
	if !model.ValidPlayerID(id) {
		return nil, model.ErrInvalidPlayerID
	}
	if !model.IsJSONObject(patch) {
		return nil, model.ErrInvalidStatePatch
	}

	err := s.shard.Do(func() error {
		return s.store.PatchPlayerState(ctx, id, patch)
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetPlayer(ctx, id)
}

// Delete removes a player record
func (s *Service) Delete(ctx context.Context, id model.PlayerID) error {
	if !model.ValidPlayerID(id) {
		return model.ErrInvalidPlayerID
	}
	return s.shard.Do(func() error {
		return s.store.DeletePlayer(ctx, id)
	})
}
