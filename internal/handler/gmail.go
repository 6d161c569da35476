package handler

import (
	"log/slog"
	"net/http"

	"github.com/rowanvale/maildraft/internal/credentials"
)

// CredentialsHandler handles relay credential configuration.
type CredentialsHandler struct {
	store  *credentials.Store
	logger *slog.Logger
}

// NewCredentialsHandler creates a new credentials handler.
func NewCredentialsHandler(store *credentials.Store, logger *slog.Logger) *CredentialsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialsHandler{store: store, logger: logger}
}

type setupRequest struct {
	Email       string `json:"email"`
	AppPassword string `json:"appPassword"`
}

type setupResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Email          string `json:"email"`
	MaskedPassword string `json:"maskedPassword"`
}

// SetupGmail handles POST /api/setup-gmail. The secret is never echoed back
// beyond its masked confirmation form.
func (h *CredentialsHandler) SetupGmail(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.store.Replace(req.Email, req.AppPassword); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.logger.Info("relay credentials configured", "email", req.Email)
	RespondJSON(w, http.StatusOK, setupResponse{
		Success:        true,
		Message:        "Gmail configured successfully",
		Email:          req.Email,
		MaskedPassword: credentials.MaskSecret(req.AppPassword),
	})
}

type checkConfigResponse struct {
	Success    bool `json:"success"`
	Configured bool `json:"configured"`
}

// CheckConfig handles GET /api/check-gmail-config.
func (h *CredentialsHandler) CheckConfig(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, checkConfigResponse{
		Success:    true,
		Configured: h.store.Configured(),
	})
}
