// internal/auth/handlers.go

package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/gatherlyhq/gatherly-backend/internal/common/utils"
)

// Handler holds dependencies for auth endpoints
type Handler struct {
	service Service
}

// NewHandler creates a new auth handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers all auth routes with the router
func (h *Handler) RegisterRoutes(router *mux.Router, middleware *Middleware) {
	api := router.PathPrefix("/api/auth").Subrouter()

	// Public routes
	api.HandleFunc("/signup", h.Signup).Methods("POST")
	api.HandleFunc("/signin", h.Signin).Methods("POST")
	api.HandleFunc("/google", h.GoogleAuth).Methods("POST")
	api.HandleFunc("/refresh", h.RefreshToken).Methods("POST")

	// Protected routes
	protected := router.PathPrefix("/api/auth").Subrouter()
	protected.Use(middleware.Authenticate)
	protected.HandleFunc("/logout", h.Logout).Methods("POST")
	protected.HandleFunc("/logout-all", h.LogoutAllDevices).Methods("POST")
	protected.HandleFunc("/me", h.Me).Methods("GET")
}

// Signup handles user registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	response, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		switch err {
		case ErrEmailTaken:
			utils.ErrorResponse(w, "Email already registered", http.StatusConflict)
		case ErrUsernameTaken:
			utils.ErrorResponse(w, "Username already taken", http.StatusConflict)
		case ErrUserAlreadyExists:
			utils.ErrorResponse(w, "Account already exists", http.StatusConflict)
		default:
			utils.ErrorResponse(w, "Failed to create account", http.StatusInternalServerError)
		}
		return
	}

	utils.SuccessResponse(w, response, http.StatusCreated)
}

// Signin handles user login
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	response, err := h.service.Signin(r.Context(), &req)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			utils.ErrorResponse(w, "Invalid email/username or password", http.StatusUnauthorized)
		case ErrAccountDisabled:
			utils.ErrorResponse(w, "Account is disabled", http.StatusForbidden)
		default:
			utils.ErrorResponse(w, "Failed to sign in", http.StatusInternalServerError)
		}
		return
	}

	utils.SuccessResponse(w, response, http.StatusOK)
}

// GoogleAuth handles Google OAuth signin/signup
func (h *Handler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var req GoogleAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	response, err := h.service.GoogleAuth(r.Context(), &req)
	if err != nil {
		switch err {
		case ErrInvalidToken:
			utils.ErrorResponse(w, "Invalid Google token", http.StatusUnauthorized)
		case ErrAccountDisabled:
			utils.ErrorResponse(w, "Account is disabled", http.StatusForbidden)
		default:
			utils.ErrorResponse(w, "Failed to sign in with Google", http.StatusInternalServerError)
		}
		return
	}

	utils.SuccessResponse(w, response, http.StatusOK)
}

// RefreshToken exchanges a refresh token for a new token pair
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	response, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		utils.ErrorResponse(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		return
	}

	utils.SuccessResponse(w, response, http.StatusOK)
}

// Logout invalidates the current session
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")

	if err := h.service.Logout(r.Context(), token); err != nil {
		utils.ErrorResponse(w, "Failed to log out", http.StatusInternalServerError)
		return
	}

	utils.MessageResponse(w, "Logged out", http.StatusOK)
}

// LogoutAllDevices invalidates every session for the user
func (h *Handler) LogoutAllDevices(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.LogoutAllDevices(r.Context(), userID); err != nil {
		utils.ErrorResponse(w, "Failed to log out", http.StatusInternalServerError)
		return
	}

	utils.MessageResponse(w, "Logged out from all devices", http.StatusOK)
}

// Me returns the authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		utils.ErrorResponse(w, "User not found", http.StatusNotFound)
		return
	}

	utils.SuccessResponse(w, user, http.StatusOK)
}
