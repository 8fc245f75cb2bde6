// internal/matching/routes.go

package matching

import (
	"github.com/gorilla/mux"

	"github.com/finlove/finlove-backend/internal/auth"
)

// RegisterRoutes sets up all matching routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.Use(authMiddleware.RequireVerified)

	api.HandleFunc("/next", handler.GetNextCandidate).Methods("GET")
	api.HandleFunc("/reactions", handler.PostReaction).Methods("POST")
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/likes/count", handler.GetLikeCount).Methods("GET")
}
