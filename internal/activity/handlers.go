// internal/activity/handlers.go

package activity

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gatherlyhq/gatherly-backend/internal/auth"
	"github.com/gatherlyhq/gatherly-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the admin-only activity log routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/admin/activity").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.Use(authMiddleware.RequireAdmin)

	api.HandleFunc("", handler.List).Methods("GET")
}

// List returns a filtered page of activity log entries
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := &ListParams{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entity_type"),
		Limit:      50,
	}

	if actor := r.URL.Query().Get("actor_id"); actor != "" {
		if id, err := strconv.ParseInt(actor, 10, 64); err == nil {
			params.ActorID = id
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			params.Limit = l
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil {
			params.Offset = o
		}
	}

	entries, total, err := h.service.List(r.Context(), params)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list activity")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   total,
	})
}
