package handler

import (
	"context"
	"net/http"

	"github.com/AlexZinkM/friend-vault/internal/model"

	"go.uber.org/zap"
)

// IdentityDirectory registers and looks up platform identities.
type IdentityDirectory interface {
	Exists(ctx context.Context, identity string) (bool, error)
	Register(ctx context.Context, identity string) (normalized string, created bool, err error)
}

// IdentityHandler serves the /identities endpoints
type IdentityHandler struct {
	directory IdentityDirectory
	logger    *zap.Logger
}

// NewIdentityHandler creates a new IdentityHandler
func NewIdentityHandler(directory IdentityDirectory, logger *zap.Logger) *IdentityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityHandler{directory: directory, logger: logger}
}

// Register handles POST /identities
// @Summary      Register identity
// @Description  Adds an identity to the directory. Returns 201 when created, 200 when already known.
// @Tags         identities
// @Accept       json
// @Produce      json
// @Param        request  body      model.RegisterIdentityRequest  true  "Identity"
// @Success      201      {object}  model.Envelope{data=model.RegisterIdentityRequest}
// @Success      200      {object}  model.Envelope{data=model.RegisterIdentityRequest}
// @Failure      400      {object}  model.Envelope
// @Router       /identities [post]
func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterIdentityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	normalized, created, err := h.directory.Register(r.Context(), req.Identity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.logger.Info("identity registered", zap.String("identity", normalized))
	}
	writeJSON(w, status, model.RegisterIdentityRequest{Identity: normalized})
}

// Exists handles GET /identities/{identity}/exists
// @Summary      Identity exists
// @Description  Reports whether an identity is registered
// @Tags         identities
// @Produce      json
// @Param        identity  path      string  true  "Identity"
// @Success      200       {object}  model.Envelope{data=model.IdentityExistsResponse}
// @Router       /identities/{identity}/exists [get]
func (h *IdentityHandler) Exists(w http.ResponseWriter, r *http.Request) {
	ok, err := h.directory.Exists(r.Context(), r.PathValue("identity"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, model.IdentityExistsResponse{Exists: ok})
}
