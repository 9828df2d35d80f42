// internal/registrations/handlers.go

package registrations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gatherlyhq/gatherly-backend/internal/auth"
	"github.com/gatherlyhq/gatherly-backend/internal/common/utils"
	"github.com/gatherlyhq/gatherly-backend/internal/events"
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

// RegisterRoutes registers registration and ticket routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/events/{id:[0-9]+}/register", handler.Register).Methods("POST")
	api.HandleFunc("/events/{id:[0-9]+}/register", handler.Cancel).Methods("DELETE")
	api.HandleFunc("/events/{id:[0-9]+}/ticket", handler.GetTicket).Methods("GET")
	api.HandleFunc("/events/{id:[0-9]+}/attendees", handler.ListForEvent).Methods("GET")
	api.HandleFunc("/registrations", handler.ListMine).Methods("GET")
	api.HandleFunc("/registrations/check-in", handler.CheckIn).Methods("POST")
}

// Register registers the authenticated user for an event
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	ticket, err := h.service.Register(r.Context(), userID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, events.ErrEventNotFound):
			utils.ErrorResponse(w, "Event not found", http.StatusNotFound)
		case errors.Is(err, ErrAlreadyRegistered):
			utils.ErrorResponse(w, "Already registered for this event", http.StatusConflict)
		case errors.Is(err, ErrEventFull):
			utils.ErrorResponse(w, "Event is at capacity", http.StatusConflict)
		case errors.Is(err, ErrEventInPast):
			utils.ErrorResponse(w, "Cannot register for a past event", http.StatusBadRequest)
		default:
			utils.ErrorResponse(w, "Failed to register", http.StatusInternalServerError)
		}
		return
	}

	utils.SuccessResponse(w, ticket, http.StatusCreated)
}

// Cancel cancels the authenticated user's registration for an event
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	reg, err := h.service.Cancel(r.Context(), userID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRegistrationNotFound):
			utils.ErrorResponse(w, "Registration not found", http.StatusNotFound)
		case errors.Is(err, ErrNotCancellable):
			utils.ErrorResponse(w, "Registration cannot be cancelled", http.StatusConflict)
		default:
			utils.ErrorResponse(w, "Failed to cancel registration", http.StatusInternalServerError)
		}
		return
	}

	utils.SuccessResponse(w, reg, http.StatusOK)
}

// GetTicket returns the user's ticket with a QR code for an event
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), userID, eventID)
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			utils.ErrorResponse(w, "Registration not found", http.StatusNotFound)
			return
		}
		utils.ErrorResponse(w, "Failed to get ticket", http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, ticket, http.StatusOK)
}

// CheckIn marks an attendee as checked in from a scanned ticket code
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := auth.GetRoleFromContext(r.Context())

	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	reg, err := h.service.CheckIn(r.Context(), actorID, role, req.TicketCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrRegistrationNotFound):
			utils.ErrorResponse(w, "Ticket not found", http.StatusNotFound)
		case errors.Is(err, ErrUnauthorized):
			utils.ErrorResponse(w, "Only the event creator or an admin can check attendees in", http.StatusForbidden)
		case errors.Is(err, ErrNotCheckable):
			utils.ErrorResponse(w, "Registration cannot be checked in", http.StatusConflict)
		default:
			utils.ErrorResponse(w, "Failed to check in", http.StatusInternalServerError)
		}
		return
	}

	utils.SuccessResponse(w, reg, http.StatusOK)
}

// ListMine lists the authenticated user's registrations
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := h.parseListParams(r)
	params.UserID = userID

	regs, err := h.service.ListMine(r.Context(), params)
	if err != nil {
		utils.ErrorResponse(w, "Failed to list registrations", http.StatusInternalServerError)
		return
	}

	if regs == nil {
		regs = []*Registration{}
	}

	utils.SuccessResponse(w, regs, http.StatusOK)
}

// ListForEvent lists an event's attendees for its creator or an admin
func (h *Handler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := auth.GetRoleFromContext(r.Context())

	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	params := h.parseListParams(r)
	params.EventID = eventID

	regs, err := h.service.ListForEvent(r.Context(), actorID, role, params)
	if err != nil {
		switch {
		case errors.Is(err, events.ErrEventNotFound):
			utils.ErrorResponse(w, "Event not found", http.StatusNotFound)
		case errors.Is(err, ErrUnauthorized):
			utils.ErrorResponse(w, "Only the event creator or an admin can view attendees", http.StatusForbidden)
		default:
			utils.ErrorResponse(w, "Failed to list attendees", http.StatusInternalServerError)
		}
		return
	}

	if regs == nil {
		regs = []*Registration{}
	}

	utils.SuccessResponse(w, regs, http.StatusOK)
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

	return &ListParams{
		Status: q.Get("status"),
		Limit:  limit,
		Offset: offset,
	}
}
