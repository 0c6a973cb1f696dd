package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/wilson12358/daybook/application/services"
	"github.com/wilson12358/daybook/domain/core/valueobjects"
	"github.com/wilson12358/daybook/pkg/common"
	pkgerrors "github.com/wilson12358/daybook/pkg/errors"
)

// SearchHandler handles search HTTP requests
type SearchHandler struct {
	search *services.SearchService
	logger *zap.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search *services.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: logger}
}

// Search handles GET /search?q=...&mood=...
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	queryText := r.URL.Query().Get("q")

	var mood *valueobjects.MoodRating
	if raw := r.URL.Query().Get("mood"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION", "mood must be a number")
			return
		}
		rating, err := valueobjects.NewMoodRating(value)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
			return
		}
		mood = &rating
	}

	results, err := h.search.Search(r.Context(), ownerID, queryText, mood)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"results": toEntryResponses(results),
		"count":   len(results),
	})
}

// Suggest handles GET /search/suggest?q=...
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	suggestions, err := h.search.Suggest(r.Context(), ownerID, r.URL.Query().Get("q"))
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func (h *SearchHandler) respondAppError(w http.ResponseWriter, err error) {
	switch {
	case pkgerrors.IsValidation(err):
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
	default:
		h.logger.Error("search request failed", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
