// internal/events/handlers.go

package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/gatherlyhq/gatherly-backend/internal/auth"
	"github.com/gatherlyhq/gatherly-backend/internal/common/utils"
)

type Handler struct {
	service         Service
	defaultPageSize int
	maxPageSize     int
}

func NewHandler(service Service, defaultPageSize, maxPageSize int) *Handler {
	return &Handler{
		service:         service,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// RegisterRoutes registers event routes. Browsing is public, mutations
// require authentication.
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/events", handler.ListEvents).Methods("GET")
	api.HandleFunc("/events/categories", handler.Categories).Methods("GET")
	api.HandleFunc("/events/{id:[0-9]+}", handler.GetEvent).Methods("GET")

	protected := router.PathPrefix("/api/v1").Subrouter()
	protected.Use(authMiddleware.Authenticate)

	protected.HandleFunc("/events", handler.CreateEvent).Methods("POST")
	protected.HandleFunc("/events/{id:[0-9]+}", handler.UpdateEvent).Methods("PUT")
	protected.HandleFunc("/events/{id:[0-9]+}", handler.DeleteEvent).Methods("DELETE")
	protected.HandleFunc("/events/{id:[0-9]+}/image", handler.UploadImage).Methods("POST")
	protected.HandleFunc("/events/mine", handler.ListMyEvents).Methods("GET")
}

// CreateEvent creates a new event owned by the authenticated user
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrPastDate) {
			utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		utils.ErrorResponse(w, "Failed to create event", http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, event, http.StatusCreated)
}

// GetEvent returns a single event with its attendee count
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	event, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			utils.ErrorResponse(w, "Event not found", http.StatusNotFound)
			return
		}
		utils.ErrorResponse(w, "Failed to get event", http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, event, http.StatusOK)
}

// ListEvents returns a filtered, paginated event listing
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := h.parseListParams(r)

	events, total, err := h.service.ListEvents(r.Context(), params)
	if err != nil {
		utils.ErrorResponse(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	if events == nil {
		events = []*Event{}
	}

	utils.SuccessResponse(w, map[string]interface{}{
		"events": events,
		"total":  total,
		"limit":  params.Limit,
		"offset": params.Offset,
	}, http.StatusOK)
}

// ListMyEvents returns events created by the authenticated user
func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := h.parseListParams(r)
	params.CreatedBy = userID

	events, total, err := h.service.ListEvents(r.Context(), params)
	if err != nil {
		utils.ErrorResponse(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	if events == nil {
		events = []*Event{}
	}

	utils.SuccessResponse(w, map[string]interface{}{
		"events": events,
		"total":  total,
		"limit":  params.Limit,
		"offset": params.Offset,
	}, http.StatusOK)
}

// UpdateEvent partially updates an event. Only the creator or an admin
// may update it.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := auth.GetRoleFromContext(r.Context())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), id, userID, role, &req)
	if err != nil {
		h.writeMutationError(w, err, "Failed to update event")
		return
	}

	utils.SuccessResponse(w, event, http.StatusOK)
}

// DeleteEvent deletes an event. Only the creator or an admin may delete it.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := auth.GetRoleFromContext(r.Context())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteEvent(r.Context(), id, userID, role); err != nil {
		h.writeMutationError(w, err, "Failed to delete event")
		return
	}

	utils.MessageResponse(w, "Event deleted", http.StatusOK)
}

// UploadImage attaches an image to an event
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := auth.GetRoleFromContext(r.Context())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.ErrorResponse(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.ErrorResponse(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	event, err := h.service.UploadImage(r.Context(), id, userID, role, file, header)
	if err != nil {
		h.writeMutationError(w, err, "Failed to upload image")
		return
	}

	utils.SuccessResponse(w, event, http.StatusOK)
}

// Categories returns the distinct categories in use
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		utils.ErrorResponse(w, "Failed to list categories", http.StatusInternalServerError)
		return
	}

	if categories == nil {
		categories = []string{}
	}

	utils.SuccessResponse(w, categories, http.StatusOK)
}

func (h *Handler) writeMutationError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		utils.ErrorResponse(w, "Event not found", http.StatusNotFound)
	case errors.Is(err, ErrUnauthorized):
		utils.ErrorResponse(w, "You do not have permission to modify this event", http.StatusForbidden)
	default:
		utils.ErrorResponse(w, fallback, http.StatusInternalServerError)
	}
}

func (h *Handler) parseListParams(r *http.Request) *ListParams {
	q := r.URL.Query()

	limit := h.defaultPageSize
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > h.maxPageSize {
		limit = h.maxPageSize
	}

	offset := 0
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}

	params := &ListParams{
		Category:     q.Get("category"),
		Search:       q.Get("search"),
		UpcomingOnly: q.Get("upcoming") == "true",
		Limit:        limit,
		Offset:       offset,
	}

	if v := q.Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			params.From = &t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			params.To = &t
		}
	}

	return params
}
