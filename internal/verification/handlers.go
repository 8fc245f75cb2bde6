// internal/verification/handlers.go

package verification

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

// RequestCode handles POST /auth/code
func (h *Handler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.RequestCode(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrDomainNotAllowed):
			utils.RespondWithError(w, http.StatusForbidden, "Only university email addresses are accepted")
		case errors.Is(err, ErrRateLimited):
			utils.RespondWithError(w, http.StatusTooManyRequests, "Too many code requests, try again later")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send verification code")
		}
		return
	}

	utils.RespondWithData(w, http.StatusOK, resp)
}

// ConfirmCode handles POST /auth/verify
func (h *Handler) ConfirmCode(w http.ResponseWriter, r *http.Request) {
	var req ConfirmCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ConfirmCode(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrCodeInvalid):
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid verification code")
		case errors.Is(err, ErrCodeExpired):
			utils.RespondWithError(w, http.StatusUnauthorized, "Verification code has expired")
		case errors.Is(err, ErrCodeAlreadyUsed):
			utils.RespondWithError(w, http.StatusUnauthorized, "Verification code was already used")
		case errors.Is(err, ErrCodeMaxAttempts):
			utils.RespondWithError(w, http.StatusTooManyRequests, "Too many attempts, request a new code")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to verify code")
		}
		return
	}

	utils.RespondWithData(w, http.StatusOK, result)
}
