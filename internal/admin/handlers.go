// internal/admin/handlers.go

package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gatherlyhq/gatherly-backend/internal/auth"
	"github.com/gatherlyhq/gatherly-backend/internal/common/utils"
)

type Handler struct {
	service         *Service
	defaultPageSize int
	maxPageSize     int
}

func NewHandler(service *Service, defaultPageSize, maxPageSize int) *Handler {
	return &Handler{
		service:         service,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// RegisterRoutes registers admin-only routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/admin").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.Use(authMiddleware.RequireAdmin)

	api.HandleFunc("/stats", handler.GetStats).Methods("GET")
	api.HandleFunc("/users", handler.ListUsers).Methods("GET")
	api.HandleFunc("/users/{id:[0-9]+}/role", handler.UpdateRole).Methods("PUT")
	api.HandleFunc("/users/{id:[0-9]+}/status", handler.UpdateStatus).Methods("PUT")
}

// GetStats returns the platform-wide statistics snapshot
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetPlatformStats(r.Context())
	if err != nil {
		utils.ErrorResponse(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, stats, http.StatusOK)
}

// ListUsers returns a filtered, paginated user listing
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
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

	users, total, err := h.service.ListUsers(r.Context(), &ListUsersParams{
		Search: q.Get("search"),
		Role:   q.Get("role"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		utils.ErrorResponse(w, "Failed to list users", http.StatusInternalServerError)
		return
	}

	if users == nil {
		users = []*UserSummary{}
	}

	utils.SuccessResponse(w, map[string]interface{}{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}, http.StatusOK)
}

// UpdateRole changes a user's role
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateRole(r.Context(), actorID, userID, req.Role); err != nil {
		h.writeUserError(w, err, "Failed to update role")
		return
	}

	utils.MessageResponse(w, "Role updated", http.StatusOK)
}

// UpdateStatus activates or deactivates a user account
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), actorID, userID, req.IsActive); err != nil {
		h.writeUserError(w, err, "Failed to update status")
		return
	}

	utils.MessageResponse(w, "Status updated", http.StatusOK)
}

func (h *Handler) writeUserError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		utils.ErrorResponse(w, "User not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidRole):
		utils.ErrorResponse(w, "Invalid role", http.StatusBadRequest)
	case errors.Is(err, ErrSelfDemotion):
		utils.ErrorResponse(w, "Admins cannot change their own role or status", http.StatusConflict)
	default:
		utils.ErrorResponse(w, fallback, http.StatusInternalServerError)
	}
}
