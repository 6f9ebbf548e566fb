package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexbotov/casino/internal/api"
	"github.com/alexbotov/casino/internal/audit"
	"github.com/alexbotov/casino/internal/auth"
	"github.com/alexbotov/casino/internal/config"
	"github.com/alexbotov/casino/internal/control"
	"github.com/alexbotov/casino/internal/database"
	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/game"
	"github.com/alexbotov/casino/internal/history"
	"github.com/alexbotov/casino/internal/metrics"
	"github.com/alexbotov/casino/internal/rng"
	"github.com/alexbotov/casino/internal/session"
	"github.com/gorilla/websocket"
)

const operatorKey = "test-operator-key"

// TestServer wraps all services needed for API testing
type TestServer struct {
	Server  *httptest.Server
	DB      *database.DB
	Audit   *audit.Service
	Control *control.Service
	History *history.Store
	Metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *TestServer {
	t.Helper()

	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	auditSvc := audit.New(db.DB)
	ctl := control.New(db.DB, auditSvc)
	hist := history.New(db.DB)
	m := metrics.New()
	engine := game.NewEngine(rng.NewStream("api-test"),
		game.WithControl(ctl),
		game.WithHistory(hist),
		game.WithAudit(auditSvc),
		game.WithMetrics(m))

	sessions := session.NewStore(session.Config{
		PlayerName:      "Player",
		StartingBalance: domain.NewMoney(200),
		WagerLevels:     []domain.Money{domain.NewMoney(0.2), domain.NewMoney(1), domain.NewMoney(2), domain.NewMoney(5)},
		Milestones:      []session.Milestone{{Threshold: domain.NewMoney(500), Bonus: domain.NewMoney(20)}},
		Goal:            domain.NewMoney(2000),
	})
	authSvc := auth.New(&config.AuthConfig{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		OperatorKey: operatorKey,
	})

	h := api.New(api.Services{
		Engine:   engine,
		Sessions: sessions,
		Auth:     authSvc,
		Audit:    auditSvc,
		Control:  ctl,
		History:  hist,
		Metrics:  m,
		RNG:      rng.NewStream("api-health"),
		Version:  "test",
	})
	server := httptest.NewServer(h.SetupRouter())
	t.Cleanup(func() {
		server.Close()
		db.Close()
	})

	return &TestServer{Server: server, DB: db, Audit: auditSvc, Control: ctl, History: hist, Metrics: m}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (ts *TestServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, *APIResponse) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return resp.StatusCode, &apiResp
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode(t *testing.T, data json.RawMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to unmarshal data: %v", err)
	}
}

// createSession opens a session and returns its token
func (ts *TestServer) createSession(t *testing.T) string {
	t.Helper()
	status, resp := ts.do(t, "POST", "/api/v1/sessions", map[string]string{"player_name": "Alice"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", status)
	}
	var data struct {
		Token   string        `json:"token"`
		Session session.State `json:"session"`
	}
	decode(t, resp.Data, &data)
	if data.Token == "" {
		t.Fatal("Expected a token")
	}
	if data.Session.PlayerName != "Alice" {
		t.Errorf("Expected player Alice, got %s", data.Session.PlayerName)
	}
	return data.Token
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, "GET", "/health", nil, nil)
	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	var data map[string]interface{}
	decode(t, resp.Data, &data)
	if data["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", data["status"])
	}
	first, ok := data["rng_status"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected rng_status in health response")
	}

	t.Run("Cached", func(t *testing.T) {
		_, resp := ts.do(t, "GET", "/health", nil, nil)
		var again map[string]interface{}
		decode(t, resp.Data, &again)
		second := again["rng_status"].(map[string]interface{})
		if first["timestamp"] != second["timestamp"] {
			t.Errorf("Expected cached check, got %v then %v", first["timestamp"], second["timestamp"])
		}
	})
}

func TestServerInfoEndpoint(t *testing.T) {
	ts := newTestServer(t)

	_, resp := ts.do(t, "GET", "/", nil, nil)
	var data map[string]interface{}
	decode(t, resp.Data, &data)
	if data["name"] != "Casino" {
		t.Errorf("Expected name 'Casino', got %v", data["name"])
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	t.Run("NoToken", func(t *testing.T) {
		status, resp := ts.do(t, "GET", "/api/v1/session", nil, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "NO_TOKEN" {
			t.Errorf("Expected NO_TOKEN, got %+v", resp.Error)
		}
	})

	t.Run("BadToken", func(t *testing.T) {
		status, _ := ts.do(t, "GET", "/api/v1/session", nil, bearer("not-a-token"))
		if status != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", status)
		}
	})
}

func TestSessionAndWager(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createSession(t)

	t.Run("State", func(t *testing.T) {
		status, resp := ts.do(t, "GET", "/api/v1/session", nil, bearer(token))
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		var state session.State
		decode(t, resp.Data, &state)
		if !state.Balance.Equal(domain.NewMoney(200)) {
			t.Errorf("Expected balance 200.00, got %s", state.Balance)
		}
		if !state.Wager.Equal(domain.NewMoney(0.2)) {
			t.Errorf("Expected wager 0.20, got %s", state.Wager)
		}
	})

	t.Run("StepUp", func(t *testing.T) {
		_, resp := ts.do(t, "PUT", "/api/v1/session/wager", map[string]string{"direction": "up"}, bearer(token))
		var data struct {
			Wager domain.Money `json:"wager"`
		}
		decode(t, resp.Data, &data)
		if !data.Wager.Equal(domain.NewMoney(1)) {
			t.Errorf("Expected wager 1.00, got %s", data.Wager)
		}
	})

	t.Run("SetAmount", func(t *testing.T) {
		status, _ := ts.do(t, "PUT", "/api/v1/session/wager", map[string]float64{"amount": 5}, bearer(token))
		if status != http.StatusOK {
			t.Errorf("Expected status 200, got %d", status)
		}
	})

	t.Run("AmountNotOffered", func(t *testing.T) {
		status, resp := ts.do(t, "PUT", "/api/v1/session/wager", map[string]float64{"amount": 3}, bearer(token))
		if status != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "INVALID_WAGER" {
			t.Errorf("Expected INVALID_WAGER, got %+v", resp.Error)
		}
	})

	t.Run("Audited", func(t *testing.T) {
		events, err := ts.Audit.GetEvents(context.Background(), &audit.EventFilter{Type: audit.EventSessionCreated})
		if err != nil {
			t.Fatalf("GetEvents failed: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("Expected 1 session event, got %d", len(events))
		}
		if events[0].SessionID == nil {
			t.Error("Expected session id on event")
		}
	})
}

func TestGames(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createSession(t)

	t.Run("List", func(t *testing.T) {
		_, resp := ts.do(t, "GET", "/api/v1/games", nil, bearer(token))
		var games []domain.Game
		decode(t, resp.Data, &games)
		if len(games) != len(domain.AllGames) {
			t.Errorf("Expected %d games, got %d", len(domain.AllGames), len(games))
		}
	})

	t.Run("Get", func(t *testing.T) {
		_, resp := ts.do(t, "GET", "/api/v1/games/roulette", nil, bearer(token))
		var g domain.Game
		decode(t, resp.Data, &g)
		if g.ID != domain.GameRoulette {
			t.Errorf("Expected roulette, got %s", g.ID)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		status, resp := ts.do(t, "GET", "/api/v1/games/keno", nil, bearer(token))
		if status != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "GAME_NOT_FOUND" {
			t.Errorf("Expected GAME_NOT_FOUND, got %+v", resp.Error)
		}
	})
}

func TestPlay(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createSession(t)

	t.Run("Roulette", func(t *testing.T) {
		status, resp := ts.do(t, "POST", "/api/v1/games/roulette/play",
			map[string]interface{}{"wager": 1, "bet": "black"}, bearer(token))
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d (%+v)", status, resp.Error)
		}
		var res game.PlayResult
		decode(t, resp.Data, &res)
		if res.Pending {
			t.Error("Roulette should settle immediately")
		}
		want := domain.NewMoney(199).Add(res.Result.WinAmount)
		if !res.Balance.Equal(want) {
			t.Errorf("Expected balance %s, got %s", want, res.Balance)
		}
	})

	t.Run("BadBet", func(t *testing.T) {
		status, resp := ts.do(t, "POST", "/api/v1/games/craps/play",
			map[string]interface{}{"bet": "field"}, bearer(token))
		if status != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "INVALID_BET" {
			t.Errorf("Expected INVALID_BET, got %+v", resp.Error)
		}
	})

	t.Run("TwoPhase", func(t *testing.T) {
		status, resp := ts.do(t, "POST", "/api/v1/games/video-poker/play", nil, bearer(token))
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d (%+v)", status, resp.Error)
		}
		var res game.PlayResult
		decode(t, resp.Data, &res)
		if !res.Pending {
			t.Fatal("Expected pending round")
		}

		status, _ = ts.do(t, "POST", "/api/v1/games/roulette/play", nil, bearer(token))
		if status != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", status)
		}

		status, _ = ts.do(t, "GET", "/api/v1/rounds/current", nil, bearer(token))
		if status != http.StatusOK {
			t.Errorf("Expected status 200, got %d", status)
		}

		status, resp = ts.do(t, "POST", "/api/v1/rounds/current",
			map[string]interface{}{"holds": []bool{true, true, false, false, false}}, bearer(token))
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d (%+v)", status, resp.Error)
		}
		decode(t, resp.Data, &res)
		if res.Pending || res.Result == nil {
			t.Error("Expected settled round")
		}

		status, resp = ts.do(t, "POST", "/api/v1/rounds/current",
			map[string]string{"action": "draw"}, bearer(token))
		if status != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "NO_PENDING_ROUND" {
			t.Errorf("Expected NO_PENDING_ROUND, got %+v", resp.Error)
		}
	})

	t.Run("History", func(t *testing.T) {
		_, resp := ts.do(t, "GET", "/api/v1/history?limit=10", nil, bearer(token))
		var data struct {
			Rounds []domain.GameRound   `json:"rounds"`
			Totals []history.GameTotals `json:"totals"`
		}
		decode(t, resp.Data, &data)
		if len(data.Rounds) != 2 {
			t.Errorf("Expected 2 rounds, got %d", len(data.Rounds))
		}
	})

	t.Run("Transactions", func(t *testing.T) {
		_, resp := ts.do(t, "GET", "/api/v1/wallet/transactions", nil, bearer(token))
		var txs []domain.Transaction
		decode(t, resp.Data, &txs)
		if len(txs) < 2 {
			t.Errorf("Expected at least 2 transactions, got %d", len(txs))
		}
	})
}

func TestOperatorEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createSession(t)
	key := map[string]string{"X-Operator-Key": operatorKey}

	t.Run("RequiresKey", func(t *testing.T) {
		status, _ := ts.do(t, "POST", "/api/v1/admin/games/craps/disable", nil, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", status)
		}
	})

	t.Run("DisableAndEnable", func(t *testing.T) {
		status, _ := ts.do(t, "POST", "/api/v1/admin/games/craps/disable",
			map[string]string{"reason": "Maintenance"}, key)
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}

		status, resp := ts.do(t, "POST", "/api/v1/games/craps/play", nil, bearer(token))
		if status != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "GAME_DISABLED" {
			t.Errorf("Expected GAME_DISABLED, got %+v", resp.Error)
		}

		ts.do(t, "POST", "/api/v1/admin/games/craps/enable", nil, key)
		status, _ = ts.do(t, "POST", "/api/v1/games/craps/play", nil, bearer(token))
		if status != http.StatusOK {
			t.Errorf("Expected status 200, got %d", status)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.createSession(t)

	resp, err := http.Get(ts.Server.URL + "/metrics")
	if err != nil {
		t.Fatalf("Failed to fetch metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "casino_http_requests_total") {
		t.Error("Expected casino_http_requests_total in metrics output")
	}
}

func TestWebSocket(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createSession(t)

	url := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	read := func() api.WSMessage {
		t.Helper()
		var msg api.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		return msg
	}

	if msg := read(); msg.Type != "connected" {
		t.Errorf("Expected connected, got %s", msg.Type)
	}

	conn.WriteJSON(map[string]string{"type": "ping"})
	if msg := read(); msg.Type != "pong" {
		t.Errorf("Expected pong, got %s", msg.Type)
	}

	conn.WriteJSON(map[string]interface{}{
		"type":    "play",
		"payload": map[string]interface{}{"game": "roulette", "bet": "red"},
	})
	if msg := read(); msg.Type != "round" {
		t.Errorf("Expected round, got %s", msg.Type)
	}
	if msg := read(); msg.Type != "balance" {
		t.Errorf("Expected balance, got %s", msg.Type)
	}

	conn.WriteJSON(map[string]string{"type": "dance"})
	if msg := read(); msg.Type != "error" {
		t.Errorf("Expected error, got %s", msg.Type)
	}
}
