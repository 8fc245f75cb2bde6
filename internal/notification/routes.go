// internal/notification/routes.go

package notification

import (
	"github.com/gorilla/mux"

	"github.com/finlove/finlove-backend/internal/auth"
)

// RegisterRoutes sets up the realtime notification routes
func RegisterRoutes(router *mux.Router, hub *Hub, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/ws", hub.ServeWS).Methods("GET")
}
