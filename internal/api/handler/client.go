package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/tabletag-go/internal/api/middleware"
	"github.com/mcoot/tabletag-go/internal/api/request"
	"github.com/mcoot/tabletag-go/internal/api/response"
	"github.com/mcoot/tabletag-go/internal/model"
	"github.com/mcoot/tabletag-go/internal/services/identity"
)

const sessionCookieMaxAge = int((365 * 24 * time.Hour) / time.Second)

// ClientHandler handles client identity endpoints
type ClientHandler struct {
	identityService *identity.Service

	// devMode drops the Secure flag on the session cookie for local
	// plain-HTTP development
	devMode bool
}

// NewClientHandler creates a new client handler
func NewClientHandler(identityService *identity.Service, devMode bool) *ClientHandler {
	return &ClientHandler{
		identityService: identityService,
		devMode:         devMode,
	}
}

// Me handles GET /api/v1/clients/me
//
// This is the registration handshake: an unknown or absent token registers
// a fresh client and sets the session cookie; a known token just resolves.
func (h *ClientHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)

	reg, err := h.identityService.RegisterOrFetch(r.Context(), token)
	if err != nil {
		WriteError(w, err)
		return
	}

	if reg.TokenIssued {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    reg.Token,
			Path:     "/",
			MaxAge:   sessionCookieMaxAge,
			HttpOnly: true,
			Secure:   !h.devMode,
			SameSite: http.SameSiteStrictMode,
		})
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Data: response.SessionFromIdentity(reg.Session),
	})
}

// List handles GET /api/v1/clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.identityService.ListClients(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Data: response.ClientsFromModel(clients),
	})
}

// Get handles GET /api/v1/clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.ClientID(mux.Vars(r)["id"])

	client, err := h.identityService.GetClient(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Data: response.ClientFromModel(client),
	})
}

// SetScope handles PATCH /api/v1/clients/{id}
func (h *ClientHandler) SetScope(w http.ResponseWriter, r *http.Request) {
	id := model.ClientID(mux.Vars(r)["id"])

	var req request.SetScopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	scope, err := model.ParseScope(req.Scope)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.identityService.SetScope(r.Context(), id, scope); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{Success: true})
}

// Delete handles DELETE /api/v1/clients/{id}
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.ClientID(mux.Vars(r)["id"])

	if err := h.identityService.DeleteClient(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{Success: true})
}
