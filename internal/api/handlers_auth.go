/**
 * @description
 * This file contains the HTTP handlers for account endpoints: registration,
 * login, the authenticated profile, and friendships. Handlers parse requests,
 * call the application services, and write JSON responses; business rules
 * live in the service layer.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/practpec/api-voyaj-sub001/internal/app"
	"github.com/practpec/api-voyaj-sub001/internal/domain"
)

// AuthHandlers holds the account and friendship services.
type AuthHandlers struct {
	auth        *app.AuthService
	friendships *app.FriendshipService
}

// NewAuthHandlers creates a new instance of AuthHandlers.
func NewAuthHandlers(auth *app.AuthService, friendships *app.FriendshipService) *AuthHandlers {
	return &AuthHandlers{auth: auth, friendships: friendships}
}

// RegisterHandler handles account creation.
func (h *AuthHandlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// LoginHandler handles credential verification and token issuance.
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// MeHandler returns the authenticated user's profile.
func (h *AuthHandlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMeHandler overwrites the caller's editable profile fields.
func (h *AuthHandlers) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req app.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SendFriendRequestHandler creates a pending friendship.
func (h *AuthHandlers) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req struct {
		AddresseeID string `json:"addressee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	friendship, err := h.friendships.SendRequest(r.Context(), userID, req.AddresseeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, friendship)
}

// RespondFriendRequestHandler accepts or rejects a pending friendship.
func (h *AuthHandlers) RespondFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	friendship, err := h.friendships.Respond(r.Context(), chi.URLParam(r, "id"), userID, req.Accept)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friendship)
}

// ListFriendshipsHandler lists every friendship involving the caller.
func (h *AuthHandlers) ListFriendshipsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	friendships, err := h.friendships.ListFriendships(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friendships)
}
