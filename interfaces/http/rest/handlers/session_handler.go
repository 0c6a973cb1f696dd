package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/wilson12358/daybook/application/services"
	"github.com/wilson12358/daybook/infrastructure/cache"
	"github.com/wilson12358/daybook/pkg/common"
)

// SessionHandler handles session lifecycle requests
type SessionHandler struct {
	hub    *cache.Hub
	search *services.SearchService
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(hub *cache.Hub, search *services.SearchService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{hub: hub, search: search, logger: logger}
}

// SignOut handles POST /session/sign-out. Every cache is cleared outright so
// nothing cached for one account can leak into the next sign-in.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	h.hub.ClearAll()
	h.search.Reset(ownerID)
	h.logger.Info("session signed out", zap.String("ownerID", ownerID))

	w.WriteHeader(http.StatusNoContent)
}
