// Package api provides the HTTP and WebSocket surface of the casino
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexbotov/casino/internal/audit"
	"github.com/alexbotov/casino/internal/auth"
	"github.com/alexbotov/casino/internal/control"
	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/game"
	"github.com/alexbotov/casino/internal/history"
	"github.com/alexbotov/casino/internal/metrics"
	"github.com/alexbotov/casino/internal/rng"
	"github.com/alexbotov/casino/internal/session"
	"github.com/alexbotov/casino/internal/wallet"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// healthCacheTTL bounds how often /health draws from the game RNG.
const healthCacheTTL = 30 * time.Second

// Services are the collaborators the handlers need. Audit, History, Metrics
// and Control may be nil.
type Services struct {
	Engine   *game.Engine
	Sessions *session.Store
	Auth     *auth.Service
	Audit    *audit.Service
	Control  *control.Service
	History  *history.Store
	Metrics  *metrics.Metrics
	RNG      rng.Source
	Logger   *zap.Logger
	Version  string
}

// Handler contains all HTTP handlers
type Handler struct {
	engine   *game.Engine
	sessions *session.Store
	auth     *auth.Service
	audit    *audit.Service
	control  *control.Service
	history  *history.Store
	metrics  *metrics.Metrics
	health   *rng.Monitor
	log      *zap.Logger
	version  string
	hub      *hub
}

// New creates a new API handler
func New(s Services) *Handler {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		engine:   s.Engine,
		sessions: s.Sessions,
		auth:     s.Auth,
		audit:    s.Audit,
		control:  s.Control,
		history:  s.History,
		metrics:  s.Metrics,
		health:   rng.NewMonitor(s.RNG, healthCacheTTL),
		log:      log,
		version:  s.Version,
		hub:      newHub(),
	}
}

// Response helpers

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// errorStatus maps a domain error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return http.StatusBadRequest, "INSUFFICIENT_FUNDS"
	case errors.Is(err, wallet.ErrInvalidAmount):
		return http.StatusBadRequest, "INVALID_AMOUNT"
	case errors.Is(err, session.ErrInvalidWager):
		return http.StatusBadRequest, "INVALID_WAGER"
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusUnauthorized, "SESSION_NOT_FOUND"
	case errors.Is(err, game.ErrInvalidBet):
		return http.StatusBadRequest, "INVALID_BET"
	case errors.Is(err, game.ErrInvalidDecision):
		return http.StatusBadRequest, "INVALID_DECISION"
	case errors.Is(err, game.ErrUnknownGame):
		return http.StatusNotFound, "GAME_NOT_FOUND"
	case errors.Is(err, game.ErrGameDisabled):
		return http.StatusForbidden, "GAME_DISABLED"
	case errors.Is(err, game.ErrRoundPending):
		return http.StatusConflict, "ROUND_PENDING"
	case errors.Is(err, game.ErrNoPendingRound):
		return http.StatusNotFound, "NO_PENDING_ROUND"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
		msg = "Internal server error"
	}
	respondError(w, status, code, msg)
}

// === Health & Info ===

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	rngHealth := h.health.Check()

	status := http.StatusOK
	state := "healthy"
	if !rngHealth.Healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	respondJSON(w, status, map[string]interface{}{
		"status":          state,
		"rng_status":      rngHealth,
		"active_sessions": h.sessions.Len(),
	})
}

// ServerInfo handles GET /
func (h *Handler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "Casino",
		"version":     h.version,
		"description": "Single-player casino: poker, craps, roulette and slots",
		"games":       len(domain.AllGames),
	})
}

// === Sessions ===

// CreateSession handles POST /api/v1/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName string `json:"player_name"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
	}

	sess := h.sessions.Create(strings.TrimSpace(req.PlayerName))
	token, expiresAt, err := h.auth.IssueToken(sess.ID, sess.PlayerName)
	if err != nil {
		h.sessions.Delete(sess.ID)
		h.respondErr(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ActiveSessions.Set(float64(h.sessions.Len()))
	}
	h.log.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("player", sess.PlayerName))
	if h.audit != nil {
		err := h.audit.Log(r.Context(), audit.EventSessionCreated, domain.SeverityInfo,
			"Session opened", map[string]interface{}{
				"player":  sess.PlayerName,
				"balance": sess.Wallet().Balance(),
			}, audit.WithSession(sess.ID))
		if err != nil {
			h.log.Warn("audit session created", zap.Error(err))
		}
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt,
		"session":    sess.State(),
	})
}

// GetSession handles GET /api/v1/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sessionFrom(r).State())
}

// SetWager handles PUT /api/v1/session/wager
func (h *Handler) SetWager(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req struct {
		Direction string        `json:"direction"`
		Amount    *domain.Money `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	switch {
	case req.Amount != nil:
		if err := sess.SetWager(*req.Amount); err != nil {
			h.respondErr(w, err)
			return
		}
	case req.Direction == "up":
		sess.StepUp()
	case req.Direction == "down":
		sess.StepDown()
	default:
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Expected direction up|down or an amount")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"wager":        sess.Wager(),
		"wager_levels": sess.WagerLevels(),
	})
}

// === Wallet ===

// GetBalance handles GET /api/v1/wallet/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"balance": sess.Balance(),
		"wager":   sess.Wager(),
	})
}

// GetTransactions handles GET /api/v1/wallet/transactions
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	respondJSON(w, http.StatusOK, sess.Wallet().Transactions(queryLimit(r, 50, 500)))
}

// === Games ===

// GetGames handles GET /api/v1/games
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Games())
}

// GetGame handles GET /api/v1/games/{id}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.engine.Game(domain.GameID(mux.Vars(r)["id"]))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// Play handles POST /api/v1/games/{id}/play
func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	id := domain.GameID(mux.Vars(r)["id"])

	var req game.PlayRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
	}

	res, err := h.engine.Play(r.Context(), sess, id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.hub.publish(sess.ID, res)
	respondJSON(w, http.StatusOK, res)
}

// GetCurrentRound handles GET /api/v1/rounds/current
func (h *Handler) GetCurrentRound(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.Current(sessionFrom(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Act handles POST /api/v1/rounds/current
func (h *Handler) Act(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var d game.Decision
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if d.Action == "" {
		d.Action = game.ActionDraw
	}

	res, err := h.engine.Act(r.Context(), sess, d)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.hub.publish(sess.ID, res)
	respondJSON(w, http.StatusOK, res)
}

// GetHistory handles GET /api/v1/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusNotImplemented, "HISTORY_DISABLED", "Round history is not recorded")
		return
	}
	sess := sessionFrom(r)

	rounds, err := h.history.Recent(r.Context(), sess.ID, queryLimit(r, 50, 200))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	totals, err := h.history.Totals(r.Context(), sess.ID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rounds": rounds,
		"totals": totals,
	})
}

// === Operator ===

// DisableGame handles POST /api/v1/admin/games/{id}/disable
func (h *Handler) DisableGame(w http.ResponseWriter, r *http.Request) {
	id := domain.GameID(mux.Vars(r)["id"])
	if _, err := h.engine.Game(id); err != nil {
		h.respondErr(w, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Reason == "" {
		req.Reason = "disabled by operator"
	}

	if err := h.control.DisableGame(r.Context(), id, req.Reason, "operator"); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.control.Status())
}

// EnableGame handles POST /api/v1/admin/games/{id}/enable
func (h *Handler) EnableGame(w http.ResponseWriter, r *http.Request) {
	id := domain.GameID(mux.Vars(r)["id"])
	if _, err := h.engine.Game(id); err != nil {
		h.respondErr(w, err)
		return
	}
	if err := h.control.EnableGame(r.Context(), id, "operator"); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.control.Status())
}

// ControlStatus handles GET /api/v1/admin/status
func (h *Handler) ControlStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.control.Status())
}

func queryLimit(r *http.Request, def, max int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= max {
			return n
		}
	}
	return def
}
