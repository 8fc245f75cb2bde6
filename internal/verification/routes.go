// internal/verification/routes.go

package verification

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all verification routes. These are the only
// unauthenticated endpoints besides token refresh.
func RegisterRoutes(router *mux.Router, handler *Handler) {
	api := router.PathPrefix("/api/v1/auth").Subrouter()

	api.HandleFunc("/code", handler.RequestCode).Methods("POST")
	api.HandleFunc("/verify", handler.ConfirmCode).Methods("POST")
}
