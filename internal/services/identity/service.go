package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mcoot/tabletag-go/internal/dependencies/random"
	"github.com/mcoot/tabletag-go/internal/model"
	"github.com/mcoot/tabletag-go/internal/shard"
	"github.com/mcoot/tabletag-go/internal/storage"
)

// DefaultMaxAllocAttempts bounds the id-allocation retry loop. The 4-letter
// space is small relative to concurrent registrations, so collisions are
// expected and retried; exhausting the bound is an operational anomaly.
const DefaultMaxAllocAttempts = 1000

const clientIDLength = 4

// Session is a resolved caller identity
type Session struct {
	ID    model.ClientID
	Scope *model.Scope
}

// Registration is the result of RegisterOrFetch. TokenIssued tells the
// session transport to persist Token as the caller's credential.
type Registration struct {
	Session     Session
	Token       string
	TokenIssued bool
}

// Config holds configuration for the identity service
type Config struct {
	// RootToken, when non-empty, resolves to an admin session without a
	// store lookup. Operational bootstrap only; never a stored record.
	RootToken string
	// MaxAllocAttempts bounds the id-allocation retry loop.
	// Defaults to DefaultMaxAllocAttempts.
	MaxAllocAttempts int
}

// DefaultConfig returns default identity configuration
func DefaultConfig() Config {
	return Config{
		MaxAllocAttempts: DefaultMaxAllocAttempts,
	}
}

// Service manages client identities and the registration handshake
type Service struct {
	store            storage.Store
	shard            *shard.Serializer
	random           random.Random
	logger           *slog.Logger
	rootToken        string
	maxAllocAttempts int
}

// New creates a new identity service
func New(store storage.Store, sh *shard.Serializer, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.MaxAllocAttempts == 0 {
		cfg.MaxAllocAttempts = DefaultMaxAllocAttempts
	}
	return &Service{
		store:            store,
		shard:            sh,
		random:           rnd,
		logger:           logger,
		rootToken:        cfg.RootToken,
		maxAllocAttempts: cfg.MaxAllocAttempts,
	}
}

// ResolveSession resolves a session token to a caller identity. A malformed
// or unknown token resolves to nil without error; the store is not touched
// for malformed tokens.
func (s *Service) ResolveSession(ctx context.Context, token string) (*Session, error) {
	if !model.ValidToken(token) {
		return nil, nil
	}
	if s.rootToken != "" && token == s.rootToken {
		scope := model.AdminScope()
		return &Session{ID: model.RootClientID, Scope: &scope}, nil
	}

	client, err := s.store.GetClientByToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrClientNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &Session{ID: client.ID, Scope: client.Scope}, nil
}

// RegisterOrFetch resolves an existing session, or registers a fresh client
// with a newly allocated 4-letter id. It is idempotent for a known token.
// Id collisions are retried with a regenerated id up to the configured
// bound; exceeding it returns model.ErrAllocationExhausted.
func (s *Service) RegisterOrFetch(ctx context.Context, token string) (*Registration, error) {
	var reg *Registration

	err := s.shard.Do(func() error {
		session, err := s.ResolveSession(ctx, token)
		if err != nil {
			return err
		}
		if session != nil {
			reg = &Registration{Session: *session, Token: token}
			return nil
		}

		issued := false
		if !model.ValidToken(token) {
			token = uuid.NewString()
			issued = true
		}

		for range s.maxAllocAttempts {
			id := s.newClientID()
			err := s.store.InsertClient(ctx, token, id)
			if errors.Is(err, model.ErrClientIDTaken) {
				continue
			}
			if err != nil {
				return err
			}
			reg = &Registration{
				Session:     Session{ID: id},
				Token:       token,
				TokenIssued: issued,
			}
			return nil
		}

		s.logger.Error("client id allocation exhausted",
			slog.Int("attempts", s.maxAllocAttempts))
		return model.ErrAllocationExhausted
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// ListClients returns all registered clients, newest-created first
func (s *Service) ListClients(ctx context.Context) ([]*model.Client, error) {
	return s.store.ListClients(ctx)
}

// GetClient returns a client by its public id
func (s *Service) GetClient(ctx context.Context, id model.ClientID) (*model.Client, error) {
	if !model.ValidClientID(id) {
		return nil, model.ErrInvalidClientID
	}
	return s.store.GetClientByID(ctx, id)
}

// SetScope grants a scope to a client and bumps its LastModified
func (s *Service) SetScope(ctx context.Context, id model.ClientID, scope model.Scope) error {
	if !model.ValidClientID(id) {
		return model.ErrInvalidClientID
	}
	return s.shard.Do(func() error {
		return s.store.SetClientScope(ctx, id, scope)
	})
}

// DeleteClient removes a client record
func (s *Service) DeleteClient(ctx context.Context, id model.ClientID) error {
	if !model.ValidClientID(id) {
		return model.ErrInvalidClientID
	}
	return s.shard.Do(func() error {
		return s.store.DeleteClient(ctx, id)
	})
}

// newClientID draws 4 random bytes and maps each into A-Z. The modulo
// mapping is not perfectly uniform; regeneration on collision is what
// callers rely on, not exact uniformity.
func (s *Service) newClientID() model.ClientID {
	b := s.random.Bytes(clientIDLength)
	letters := make([]byte, len(b))
	for i, x := range b {
		letters[i] = 'A' + x%26
	}
	return model.ClientID(letters)
}
