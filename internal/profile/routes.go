// internal/profile/routes.go

package profile

import (
	"github.com/gorilla/mux"

	"github.com/finlove/finlove-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Own profile
	api.HandleFunc("/profile", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("/profile", handler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/profile/photo", handler.UploadPhoto).Methods("POST")
	api.HandleFunc("/profile/photo", handler.DeletePhoto).Methods("DELETE")

	// Other users (public projection only)
	api.HandleFunc("/users/{id}/card", handler.GetUserCard).Methods("GET")
}
