// internal/recommend/handlers.go

package recommend

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gatherlyhq/gatherly-backend/internal/auth"
	"github.com/gatherlyhq/gatherly-backend/internal/common/utils"
	"github.com/gatherlyhq/gatherly-backend/internal/events"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the recommendations route. Authentication is
// optional: anonymous callers get an empty list rather than a 401.
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.OptionalAuthenticate)

	api.HandleFunc("/recommendations", handler.GetRecommendations).Methods("GET")
}

// GetRecommendations returns the top recommended events for the caller
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.SuccessResponse(w, map[string]interface{}{"events": []*events.Event{}}, http.StatusOK)
		return
	}

	limit := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}

	recs := h.service.GetRecommendations(r.Context(), userID, limit)

	utils.SuccessResponse(w, map[string]interface{}{"events": recs}, http.StatusOK)
}
