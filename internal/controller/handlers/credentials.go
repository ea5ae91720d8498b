package handlers

import (
	"encoding/json"
	"net/http"

	"ledgersync/internal/token"
	"ledgersync/pkg/api"
)

// StoreCredential handles PUT /credentials/{user_id}.
// It stores token material obtained out of band from the provider's
// authorization flow, making it the user's current credential.
func (h *Handlers) StoreCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("user_id")
	if userID == "" {
		h.httpError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var req api.StoreTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.AccessToken == "" || req.RefreshToken == "" || req.ExpiresIn <= 0 {
		h.httpError(w, "access_token, refresh_token and expires_in are required", http.StatusBadRequest)
		return
	}

	tok, err := h.tokens.StoreToken(ctx, token.Payload{
		AccessToken:  req.AccessToken,
		TokenType:    req.TokenType,
		RefreshToken: req.RefreshToken,
		ExpiresIn:    req.ExpiresIn,
		Scope:        req.Scope,
	}, userID)
	if err != nil {
		h.log.Error("failed to store token", "user_id", userID, "error", err)
		h.httpError(w, "Failed to store token", http.StatusInternalServerError)
		return
	}

	if req.TenantID != "" {
		if err := h.creds.SetCredentialTenant(ctx, userID, req.TenantID); err != nil {
			h.log.Error("failed to set credential tenant", "user_id", userID, "tenant_id", req.TenantID, "error", err)
			h.httpError(w, "Failed to set tenant", http.StatusInternalServerError)
			return
		}
	}

	h.respondJson(w, http.StatusOK, api.StoreTokenResponse{
		UserID:    userID,
		ExpiresAt: tok.ExpiresAt,
	})
}

// DeleteCredential handles DELETE /credentials/{user_id}.
// Deleting an absent credential succeeds.
func (h *Handlers) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		h.httpError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.tokens.Invalidate(r.Context(), userID); err != nil {
		h.log.Error("failed to delete credential", "user_id", userID, "error", err)
		h.httpError(w, "Failed to delete credential", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusNoContent, nil)
}
