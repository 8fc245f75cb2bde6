// internal/admin/handlers.go

package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/finlove/finlove-backend/internal/common/utils"
	"github.com/finlove/finlove-backend/internal/profile"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetStats handles GET /admin/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	utils.RespondWithData(w, http.StatusOK, stats)
}

// ListUsers handles GET /admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.service.ListUsers(r.Context(), search, limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	utils.RespondWithData(w, http.StatusOK, users)
}

// UpdateUserFlags handles PUT /admin/users/{id}/flags
func (h *Handler) UpdateUserFlags(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req UpdateFlagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.UpdateUserFlags(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, profile.ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update user flags")
		return
	}

	utils.RespondWithData(w, http.StatusOK, user)
}

// WhitelistUsername handles POST /admin/whitelist
func (h *Handler) WhitelistUsername(w http.ResponseWriter, r *http.Request) {
	var req WhitelistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	affected, err := h.service.WhitelistUsername(r.Context(), req.Username)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to whitelist username")
		return
	}

	if affected == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "No user with that username")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "User whitelisted")
}

// Broadcast handles POST /admin/broadcast
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Broadcast(r.Context(), &req)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send broadcast")
		return
	}

	utils.RespondWithData(w, http.StatusOK, report)
}
