package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/mcoot/tabletag-go/internal/dependencies/clock"
	"github.com/mcoot/tabletag-go/internal/model"
	"github.com/mcoot/tabletag-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	clock clock.Clock

	clients     map[string]*model.Client        // keyed by token
	clientIDIdx map[model.ClientID]string       // id -> token
	players     map[model.PlayerID]*model.Player
}

// New creates a new in-memory storage instance
func New(clk clock.Clock) *Storage {
	return &Storage{
		clock:       clk,
		clients:     make(map[string]*model.Client),
		clientIDIdx: make(map[model.ClientID]string),
		players:     make(map[model.PlayerID]*model.Player),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Client operations

func (s *Storage) InsertClient(ctx context.Context, token string, id model.ClientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.clientIDIdx[id]; taken {
		return model.ErrClientIDTaken
	}

	now := s.clock.Now()
	s.clients[token] = &model.Client{
		Token:        token,
		ID:           id,
		CreatedAt:    now,
		LastModified: now,
	}
	s.clientIDIdx[id] = token
	return nil
}

func (s *Storage) GetClientByToken(ctx context.Context, token string) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[token]
	if !ok {
		return nil, model.ErrClientNotFound
	}
	return copyClient(client), nil
}

func (s *Storage) GetClientByID(ctx context.Context, id model.ClientID) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.lookupByID(id)
	if !ok {
		return nil, model.ErrClientNotFound
	}
	return copyClient(client), nil
}

func (s *Storage) ListClients(ctx context.Context) ([]*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]*model.Client, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, copyClient(client))
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].CreatedAt.After(clients[j].CreatedAt)
	})
	return clients, nil
}

func (s *Storage) SetClientScope(ctx context.Context, id model.ClientID, scope model.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, ok := s.lookupByID(id)
	if !ok {
		return model.ErrClientNotFound
	}
	client.Scope = &scope
	client.LastModified = s.clock.Now()
	return nil
}

func (s *Storage) DeleteClient(ctx context.Context, id model.ClientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.clientIDIdx[id]
	if !ok {
		return model.ErrClientNotFound
	}
	delete(s.clients, token)
	delete(s.clientIDIdx, id)
	return nil
}

// Player operations

func (s *Storage) CreatePlayerIfAbsent(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; ok {
		return nil
	}

	now := s.clock.Now()
	s.players[id] = &model.Player{
		ID:           id,
		State:        model.EmptyState(),
		CreatedAt:    now,
		LastModified: now,
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return copyPlayer(player), nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.PlayerSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]*model.PlayerSummary, 0, len(s.players))
	for _, player := range s.players {
		summaries = append(summaries, &model.PlayerSummary{
			ID:           player.ID,
			CreatedAt:    player.CreatedAt,
			LastModified: player.LastModified,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastModified.After(summaries[j].LastModified)
	})
	return summaries, nil
}

func (s *Storage) PatchPlayerState(ctx context.Context, id model.PlayerID, patch json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}

	merged, err := model.MergePatch(player.State, patch)
	if err != nil {
		return err
	}
	player.State = merged
	player.LastModified = s.clock.Now()
	return nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return model.ErrPlayerNotFound
	}
	delete(s.players, id)
	return nil
}

// lookupByID must be called with the lock held
func (s *Storage) lookupByID(id model.ClientID) (*model.Client, bool) {
	token, ok := s.clientIDIdx[id]
	if !ok {
		return nil, false
	}
	client, ok := s.clients[token]
	return client, ok
}

func copyClient(c *model.Client) *model.Client {
	out := *c
	if c.Scope != nil {
		scope := *c.Scope
		out.Scope = &scope
	}
	return &out
}

func copyPlayer(p *model.Player) *model.Player {
	out := *p
	out.State = append(json.RawMessage(nil), p.State...)
	return &out
}
