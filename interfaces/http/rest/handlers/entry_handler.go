package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wilson12358/daybook/application/services"
	"github.com/wilson12358/daybook/domain/core/entities"
	"github.com/wilson12358/daybook/domain/core/valueobjects"
	"github.com/wilson12358/daybook/pkg/common"
	pkgerrors "github.com/wilson12358/daybook/pkg/errors"
	"github.com/wilson12358/daybook/pkg/utils"
)

const maxBodyBytes = 1 << 20

// EntryHandler handles entry-related HTTP requests
type EntryHandler struct {
	entries *services.EntryService
	logger  *zap.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(entries *services.EntryService, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{entries: entries, logger: logger}
}

// CreateEntryRequest represents the request body for creating an entry
type CreateEntryRequest struct {
	Title          string           `json:"title,omitempty" validate:"omitempty,max=200"`
	Body           string           `json:"body,omitempty" validate:"omitempty,max=20000"`
	OccurredAt     time.Time        `json:"occurredAt" validate:"required"`
	Tags           []string         `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	Mood           int              `json:"mood" validate:"required,min=1,max=5"`
	AttachmentRefs []string         `json:"attachmentRefs,omitempty" validate:"omitempty,max=10"`
	Location       *LocationPayload `json:"location,omitempty"`
	Weather        *WeatherPayload  `json:"weather,omitempty"`
}

// UpdateEntryRequest represents the request body for updating an entry
type UpdateEntryRequest struct {
	Title          string           `json:"title,omitempty" validate:"omitempty,max=200"`
	Body           string           `json:"body,omitempty" validate:"omitempty,max=20000"`
	OccurredAt     time.Time        `json:"occurredAt" validate:"required"`
	CreatedAt      time.Time        `json:"createdAt" validate:"required"`
	Tags           []string         `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	Mood           int              `json:"mood" validate:"required,min=1,max=5"`
	AttachmentRefs []string         `json:"attachmentRefs,omitempty" validate:"omitempty,max=10"`
	Location       *LocationPayload `json:"location,omitempty"`
	Weather        *WeatherPayload  `json:"weather,omitempty"`
}

// LocationPayload is the wire form of an entry location
type LocationPayload struct {
	Place     string  `json:"place,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherPayload is the wire form of an entry weather snapshot
type WeatherPayload struct {
	Condition   string  `json:"condition"`
	Temperature float64 `json:"temperature"`
}

// BulkDeleteRequest represents the request body for deleting several entries
type BulkDeleteRequest struct {
	EntryIDs []string `json:"entryIds" validate:"required,min=1,max=100,dive,uuid"`
}

// EntryResponse is the wire form of an entry
type EntryResponse struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Body           string           `json:"body"`
	OccurredAt     time.Time        `json:"occurredAt"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	Tags           []string         `json:"tags"`
	Mood           int              `json:"mood"`
	AttachmentRefs []string         `json:"attachmentRefs,omitempty"`
	Location       *LocationPayload `json:"location,omitempty"`
	Weather        *WeatherPayload  `json:"weather,omitempty"`
}

// CreateEntry handles POST /entries
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	var req CreateEntryRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	mood, err := valueobjects.NewMoodRating(req.Mood)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	entry, err := h.entries.CreateEntry(r.Context(), ownerID, services.CreateEntryParams{
		Title:          req.Title,
		Body:           req.Body,
		OccurredAt:     req.OccurredAt,
		Tags:           req.Tags,
		Mood:           mood,
		AttachmentRefs: req.AttachmentRefs,
		Location:       toLocation(req.Location),
		Weather:        toWeather(req.Weather),
	})
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// UpdateEntry handles PUT /entries/{entryID}
func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	entryID := chi.URLParam(r, "entryID")
	id, err := valueobjects.NewEntryIDFromString(entryID)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid entry id")
		return
	}

	var req UpdateEntryRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	mood, err := valueobjects.NewMoodRating(req.Mood)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	entry := entities.ReconstructEntry(
		id,
		ownerID,
		req.Title,
		req.Body,
		req.OccurredAt,
		req.CreatedAt,
		time.Now(),
		req.Tags,
		mood,
		req.AttachmentRefs,
		toLocation(req.Location),
		toWeather(req.Weather),
	)

	if err := h.entries.UpdateEntry(r.Context(), entry); err != nil {
		h.respondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toEntryResponse(entry))
}

// DeleteEntry handles DELETE /entries/{entryID}
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	entryID := chi.URLParam(r, "entryID")
	if _, err := h.entries.DeleteEntry(r.Context(), ownerID, entryID); err != nil {
		h.respondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkDeleteEntries handles POST /entries/bulk-delete
func (h *EntryHandler) BulkDeleteEntries(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	var req BulkDeleteRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	deleted, failed, err := h.entries.DeleteEntries(r.Context(), ownerID, req.EntryIDs)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": deleted,
		"failed":  failed,
	})
}

// ListEntries handles GET /entries
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION", "limit must be between 1 and 200")
			return
		}
		limit = parsed
	}

	entries, err := h.entries.ListEntries(r.Context(), ownerID, limit)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toEntryResponses(entries))
}

// EntriesOnDay handles GET /entries/day/{date} with date formatted 2006-01-02
func (h *EntryHandler) EntriesOnDay(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	day, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "date must be formatted YYYY-MM-DD")
		return
	}

	entries, err := h.entries.EntriesOnDay(r.Context(), ownerID, day)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toEntryResponses(entries))
}

// EntriesInMonth handles GET /entries/month/{month} with month formatted 2006-01
func (h *EntryHandler) EntriesInMonth(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	month, err := time.Parse("2006-01", chi.URLParam(r, "month"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "month must be formatted YYYY-MM")
		return
	}

	entries, err := h.entries.EntriesInMonth(r.Context(), ownerID, month.Year(), month.Month())
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toEntryResponses(entries))
}

// RecentTags handles GET /entries/recent-tags
func (h *EntryHandler) RecentTags(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	tags, err := h.entries.RecentTags(r.Context(), ownerID, services.MaxRecentTags)
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}

// Count handles GET /entries/count
func (h *EntryHandler) Count(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.UserIDFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	count, err := h.entries.Count(r.Context(), ownerID)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"count": count})
}

func (h *EntryHandler) respondAppError(w http.ResponseWriter, err error) {
	switch {
	case pkgerrors.IsValidation(err):
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
	case pkgerrors.IsNotFound(err):
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		h.logger.Error("entry request failed", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

func toLocation(p *LocationPayload) *entities.Location {
	if p == nil {
		return nil
	}
	return &entities.Location{Place: p.Place, Latitude: p.Latitude, Longitude: p.Longitude}
}

func toWeather(p *WeatherPayload) *entities.Weather {
	if p == nil {
		return nil
	}
	return &entities.Weather{Condition: p.Condition, Temperature: p.Temperature}
}

func toEntryResponse(entry *entities.Entry) EntryResponse {
	resp := EntryResponse{
		ID:             entry.ID().String(),
		Title:          entry.Title(),
		Body:           entry.Body(),
		OccurredAt:     entry.OccurredAt(),
		CreatedAt:      entry.CreatedAt(),
		UpdatedAt:      entry.UpdatedAt(),
		Tags:           entry.Tags().ToSlice(),
		Mood:           entry.Mood().Value(),
		AttachmentRefs: entry.AttachmentRefs(),
	}
	if loc := entry.Location(); loc != nil {
		resp.Location = &LocationPayload{Place: loc.Place, Latitude: loc.Latitude, Longitude: loc.Longitude}
	}
	if w := entry.Weather(); w != nil {
		resp.Weather = &WeatherPayload{Condition: w.Condition, Temperature: w.Temperature}
	}
	return resp
}

func toEntryResponses(entries []*entities.Entry) []EntryResponse {
	responses := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toEntryResponse(entry))
	}
	return responses
}
