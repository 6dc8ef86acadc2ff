package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tabletag-go/internal/model"
	"github.com/mcoot/tabletag-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// Uniqueness is enforced with SETNX on the id index, and patches are
// read-modify-write; both rely on the shard's single-writer discipline
// rather than on Redis-side transactions.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Client operations

func (s *Storage) InsertClient(ctx context.Context, token string, id model.ClientID) error {
	ok, err := s.client.SetNX(ctx, clientIDIndexKey(id), token, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrClientIDTaken
	}

	now := time.Now().UTC()
	data, err := json.Marshal(&model.Client{
		Token:        token,
		ID:           id,
		CreatedAt:    now,
		LastModified: now,
	})
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + membership update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, clientKey(token), data, 0)
	pipe.SAdd(ctx, clientSetKey(), token)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetClientByToken(ctx context.Context, token string) (*model.Client, error) {
	data, err := s.client.Get(ctx, clientKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrClientNotFound
		}
		return nil, err
	}

	var client model.Client
	if err := json.Unmarshal(data, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Storage) GetClientByID(ctx context.Context, id model.ClientID) (*model.Client, error) {
	token, err := s.client.Get(ctx, clientIDIndexKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrClientNotFound
		}
		return nil, err
	}
	return s.GetClientByToken(ctx, token)
}

func (s *Storage) ListClients(ctx context.Context) ([]*model.Client, error) {
	tokens, err := s.client.SMembers(ctx, clientSetKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return []*model.Client{}, nil
	}

	keys := make([]string, len(tokens))
	for i, token := range tokens {
		keys[i] = clientKey(token)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	clients := make([]*model.Client, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Record deleted since the set was read
		}
		var client model.Client
		if err := json.Unmarshal([]byte(val.(string)), &client); err != nil {
			return nil, err
		}
		clients = append(clients, &client)
	}

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].CreatedAt.After(clients[j].CreatedAt)
	})
	return clients, nil
}

func (s *Storage) SetClientScope(ctx context.Context, id model.ClientID, scope model.Scope) error {
	client, err := s.GetClientByID(ctx, id)
	if err != nil {
		return err
	}

	client.Scope = &scope
	client.LastModified = time.Now().UTC()

	data, err := json.Marshal(client)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, clientKey(client.Token), data, 0).Err()
}

func (s *Storage) DeleteClient(ctx context.Context, id model.ClientID) error {
	token, err := s.client.Get(ctx, clientIDIndexKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ErrClientNotFound
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, clientKey(token))
	pipe.Del(ctx, clientIDIndexKey(id))
	pipe.SRem(ctx, clientSetKey(), token)
	_, err = pipe.Exec(ctx)
	return err
}

// Player operations

func (s *Storage) CreatePlayerIfAbsent(ctx context.Context, id model.PlayerID) error {
	now := time.Now().UTC()
	data, err := json.Marshal(&model.Player{
		ID:           id,
		State:        model.EmptyState(),
		CreatedAt:    now,
		LastModified: now,
	})
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, playerKey(id), data, 0).Result()
	if err != nil {
		return err
	}
	if ok {
		return s.client.SAdd(ctx, playerSetKey(), string(id)).Err()
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.PlayerSummary, error) {
	ids, err := s.client.SMembers(ctx, playerSetKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.PlayerSummary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	summaries := make([]*model.PlayerSummary, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			return nil, err
		}
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
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		return err
	}

	merged, err := model.MergePatch(player.State, patch)
	if err != nil {
		return err
	}
	player.State = merged
	player.LastModified = time.Now().UTC()

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(id), data, 0).Err()
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	deleted, err := s.client.Del(ctx, playerKey(id)).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return model.ErrPlayerNotFound
	}
	return s.client.SRem(ctx, playerSetKey(), string(id)).Err()
}
