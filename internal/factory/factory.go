package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/tabletag-go/internal/dependencies/clock"
	"github.com/mcoot/tabletag-go/internal/dependencies/random"
	"github.com/mcoot/tabletag-go/internal/services/authz"
	"github.com/mcoot/tabletag-go/internal/services/identity"
	"github.com/mcoot/tabletag-go/internal/services/player"
	"github.com/mcoot/tabletag-go/internal/shard"
	"github.com/mcoot/tabletag-go/internal/storage"
	"github.com/mcoot/tabletag-go/internal/storage/memory"
	redisstorage "github.com/mcoot/tabletag-go/internal/storage/redis"
	sqlitestorage "github.com/mcoot/tabletag-go/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Shard  *shard.Serializer

	// Services
	IdentityService *identity.Service
	PlayerService   *player.Service
	Guard           *authz.Guard
}

// Close releases the storage backend's underlying connection, if it holds one
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Config holds configuration for the application factory
type Config struct {
	// IdentityConfig holds configuration for the identity service (optional)
	// If zero value, defaults to identity.DefaultConfig()
	IdentityConfig identity.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLiteConfig holds SQLite settings (required if StorageType is "sqlite")
	SQLiteConfig *sqlitestorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Create storage based on type
	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New(clk)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSQLite:
		if cfg.SQLiteConfig == nil {
			return nil, errors.New("SQLiteConfig required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.New(*cfg.SQLiteConfig)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	identityCfg := cfg.IdentityConfig
	if identityCfg.MaxAllocAttempts == 0 {
		identityCfg.MaxAllocAttempts = identity.DefaultMaxAllocAttempts
	}

	return newWithDependencies(store, clk, rnd, identityCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, rnd random.Random, identityCfg identity.Config, logger *slog.Logger) *App {
	// All writes across services funnel through the one serializer
	sh := shard.New()

	identityService := identity.New(store, sh, rnd, identityCfg, logger)
	playerService := player.New(store, sh, logger)
	guard := authz.NewGuard(identityService)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Shard:           sh,
		IdentityService: identityService,
		PlayerService:   playerService,
		Guard:           guard,
	}
}
