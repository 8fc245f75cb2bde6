// internal/matching/handlers.go

package matching

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finlove/finlove-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetNextCandidate handles GET /matching/next
func (h *Handler) GetNextCandidate(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := r.Context().Value("userID").(int64)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	candidate, err := h.service.SelectCandidate(r.Context(), viewerID)
	if err != nil {
		if errors.Is(err, ErrNotEligible) {
			utils.RespondWithError(w, http.StatusForbidden, "Complete your profile before browsing")
			return
		}
		if errors.Is(err, ErrViewerNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to select candidate")
		return
	}

	if candidate == nil {
		utils.RespondWithMessage(w, http.StatusOK, "No more candidates for now, check back later")
		return
	}

	utils.RespondWithData(w, http.StatusOK, candidate)
}

// PostReaction handles POST /matching/reactions
func (h *Handler) PostReaction(w http.ResponseWriter, r *http.Request) {
	likerID, ok := r.Context().Value("userID").(int64)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.service.React(r.Context(), likerID, req.TargetUserID, *req.IsLike)
	if err != nil {
		if errors.Is(err, ErrSelfReaction) {
			utils.RespondWithError(w, http.StatusBadRequest, "Cannot react to yourself")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record reaction")
		return
	}

	utils.RespondWithData(w, http.StatusOK, outcome)
}

// GetMatches handles GET /matching/matches
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	matches, err := h.service.GetMatches(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch matches")
		return
	}

	utils.RespondWithData(w, http.StatusOK, matches)
}

// GetLikeCount handles GET /matching/likes/count
func (h *Handler) GetLikeCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	count, err := h.service.CountLikesReceived(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to count likes")
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]int64{"count": count})
}
