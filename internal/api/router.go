package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRouter creates and configures the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	r.Use(h.RecoveryMiddleware)
	r.Use(CORSMiddleware)
	r.Use(h.LoggingMiddleware)

	// Public routes
	r.HandleFunc("/", h.ServerInfo).Methods("GET")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sessions", h.CreateSession).Methods("POST")

	// Operator routes
	if h.control != nil {
		admin := api.PathPrefix("/admin").Subrouter()
		admin.Use(h.OperatorMiddleware)
		admin.HandleFunc("/status", h.ControlStatus).Methods("GET")
		admin.HandleFunc("/games/{id}/disable", h.DisableGame).Methods("POST")
		admin.HandleFunc("/games/{id}/enable", h.EnableGame).Methods("POST")
	}

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(h.AuthMiddleware)

	protected.HandleFunc("/session", h.GetSession).Methods("GET")
	protected.HandleFunc("/session/wager", h.SetWager).Methods("PUT")

	protected.HandleFunc("/wallet/balance", h.GetBalance).Methods("GET")
	protected.HandleFunc("/wallet/transactions", h.GetTransactions).Methods("GET")

	protected.HandleFunc("/games", h.GetGames).Methods("GET")
	protected.HandleFunc("/games/{id}", h.GetGame).Methods("GET")
	protected.HandleFunc("/games/{id}/play", h.Play).Methods("POST")

	protected.HandleFunc("/rounds/current", h.GetCurrentRound).Methods("GET")
	protected.HandleFunc("/rounds/current", h.Act).Methods("POST")

	protected.HandleFunc("/history", h.GetHistory).Methods("GET")

	// WebSocket for live play
	r.Handle("/ws", h.AuthMiddleware(http.HandlerFunc(h.HandleWebSocket))).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(NotFoundHandler)
	return r
}

// NotFoundHandler handles 404 errors
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}
