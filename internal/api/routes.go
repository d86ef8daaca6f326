package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Financial data routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/financial_data", handler.GetFinancialData).Methods("GET")
	api.HandleFunc("/statistics", handler.GetStatistics).Methods("GET")

	return r
}
