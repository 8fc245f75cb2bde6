// internal/auth/handlers.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finlove/finlove-backend/internal/common/utils"
	"github.com/gorilla/mux"
)

// RefreshRequest is the payload for exchanging a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrWrongTokenType) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to refresh session")
		return
	}

	utils.RespondWithData(w, http.StatusOK, pair)
}

// RegisterRoutes sets up the auth routes
func RegisterRoutes(router *mux.Router, handler *Handler) {
	api := router.PathPrefix("/api/v1/auth").Subrouter()
	api.HandleFunc("/refresh", handler.Refresh).Methods("POST")
}
