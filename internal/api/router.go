package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tabletag-go/internal/api/handler"
	"github.com/mcoot/tabletag-go/internal/api/middleware"
	"github.com/mcoot/tabletag-go/internal/api/response"
	"github.com/mcoot/tabletag-go/internal/services/authz"
	"github.com/mcoot/tabletag-go/internal/services/identity"
	"github.com/mcoot/tabletag-go/internal/services/player"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Guard           *authz.Guard
	IdentityService *identity.Service
	PlayerService   *player.Service

	// DevMode relaxes the Secure flag on session cookies
	DevMode bool
}

// NewRouter creates a new API router with all routes configured.
//
// Tiers are applied per route rather than per subrouter because public,
// authorized and admin routes interleave under the same path prefixes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	clientHandler := handler.NewClientHandler(cfg.IdentityService, cfg.DevMode)
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService)

	// Create middleware
	authorized := middleware.RequireTier(cfg.Guard, authz.TierAuthorized)
	admin := middleware.RequireTier(cfg.Guard, authz.TierAdmin)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Client routes; /clients/me must register before /clients/{id}
	api.HandleFunc("/clients/me", clientHandler.Me).Methods(http.MethodGet)
	api.Handle("/clients", admin(http.HandlerFunc(clientHandler.List))).Methods(http.MethodGet)
	api.Handle("/clients/{id}", admin(http.HandlerFunc(clientHandler.Get))).Methods(http.MethodGet)
	api.Handle("/clients/{id}", admin(http.HandlerFunc(clientHandler.SetScope))).Methods(http.MethodPatch)
	api.Handle("/clients/{id}", admin(http.HandlerFunc(clientHandler.Delete))).Methods(http.MethodDelete)

	// Player routes
	api.Handle("/players", admin(http.HandlerFunc(playerHandler.List))).Methods(http.MethodGet)
	api.Handle("/players/{id}", authorized(http.HandlerFunc(playerHandler.Get))).Methods(http.MethodGet)
	api.Handle("/players/{id}", authorized(http.HandlerFunc(playerHandler.Register))).Methods(http.MethodPost)
	api.Handle("/players/{id}", authorized(http.HandlerFunc(playerHandler.Patch))).Methods(http.MethodPatch)
	api.Handle("/players/{id}", admin(http.HandlerFunc(playerHandler.Delete))).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
