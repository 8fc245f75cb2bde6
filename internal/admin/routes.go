// internal/admin/routes.go

package admin

import (
	"github.com/gorilla/mux"

	"github.com/finlove/finlove-backend/internal/auth"
)

// RegisterRoutes sets up all admin routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/admin").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.Use(authMiddleware.RequireAdmin)

	api.HandleFunc("/stats", handler.GetStats).Methods("GET")
	api.HandleFunc("/users", handler.ListUsers).Methods("GET")
	api.HandleFunc("/users/{id}/flags", handler.UpdateUserFlags).Methods("PUT")
	api.HandleFunc("/whitelist", handler.WhitelistUsername).Methods("POST")
	api.HandleFunc("/broadcast", handler.Broadcast).Methods("POST")
}
