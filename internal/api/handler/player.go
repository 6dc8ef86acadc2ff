package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tabletag-go/internal/api/request"
	"github.com/mcoot/tabletag-go/internal/api/response"
	"github.com/mcoot/tabletag-go/internal/model"
	"github.com/mcoot/tabletag-go/internal/services/player"
)

// PlayerHandler handles player state endpoints
type PlayerHandler struct {
	playerService *player.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService *player.Service) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
	}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.playerService.ListAll(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Data: response.PlayerSummariesFromModel(summaries),
	})
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	p, err := h.playerService.Fetch(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Data: response.PlayerFromModel(p),
	})
}

// Register handles POST /api/v1/players/{id}
//
// Registration is idempotent: an existing player is returned unchanged
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	p, err := h.playerService.RegisterOrFetch(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Data: response.PlayerFromModel(p),
	})
}

// Patch handles PATCH /api/v1/players/{id}
//
// The body's state member is a JSON merge patch applied to the player's
// state document
func (h *PlayerHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	var req request.PatchPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if _, err := h.playerService.Patch(r.Context(), id, req.State); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{Success: true})
}

// Delete handles DELETE /api/v1/players/{id}
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	if err := h.playerService.Delete(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{Success: true})
}
