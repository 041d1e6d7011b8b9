// Package routes wires the HTTP API onto the router
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"intern-pulse-bot/internal/handlers"
	"intern-pulse-bot/internal/repository"
)

// SetupRouter builds the API router. Every /api route requires a resolved
// profile; /api/admin additionally requires the admin role.
func SetupRouter(
	attendance *handlers.AttendanceHandler,
	analytics *handlers.AnalyticsHandler,
	profiles repository.ProfileRepository,
) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(handlers.RequireProfile(profiles))

	api.HandleFunc("/attendance/sign-in", attendance.HandleSignIn).Methods("POST")
	api.HandleFunc("/attendance/sign-out", attendance.HandleSignOut).Methods("POST")
	api.HandleFunc("/attendance/today", attendance.HandleToday).Methods("GET")
	api.HandleFunc("/attendance/history", attendance.HandleHistory).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(handlers.RequireAdmin)

	admin.HandleFunc("/pending", attendance.HandlePending).Methods("GET")
	admin.HandleFunc("/entries/{id}/approve", attendance.HandleApprove).Methods("POST")
	admin.HandleFunc("/entries/{id}/reject", attendance.HandleReject).Methods("POST")
	admin.HandleFunc("/snapshot", analytics.HandleSnapshot).Methods("GET")
	admin.HandleFunc("/analytics", analytics.HandleAnalytics).Methods("GET")

	return router
}
