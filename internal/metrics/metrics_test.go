package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexbotov/casino/internal/domain"
)

func TestObserveRound(t *testing.T) {
	m := New()
	m.ObserveRound(domain.RoundResult{Game: domain.GameRoulette, WagerAmount: domain.NewMoney(1), WinAmount: domain.NewMoney(2)})
	m.ObserveRound(domain.RoundResult{Game: domain.GameRoulette, WagerAmount: domain.NewMoney(1), WinAmount: domain.Zero})
	m.ObserveBonus(domain.NewMoney(20))

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	counts := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				counts[f.GetName()] += c.GetValue()
			}
		}
	}

	if counts["casino_rounds_total"] != 2 {
		t.Errorf("Expected 2 rounds, got %v", counts["casino_rounds_total"])
	}
	if counts["casino_wagered_total"] != 2 {
		t.Errorf("Expected 2 wagered, got %v", counts["casino_wagered_total"])
	}
	if counts["casino_won_total"] != 2 {
		t.Errorf("Expected 2 won, got %v", counts["casino_won_total"])
	}
	if counts["casino_milestone_bonus_total"] != 20 {
		t.Errorf("Expected 20 bonus, got %v", counts["casino_milestone_bonus_total"])
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRound(domain.RoundResult{Game: domain.GameCraps})
	m.ObserveBonus(domain.NewMoney(1))
}

func TestHandler(t *testing.T) {
	m := New()
	m.HTTPRequests.WithLabelValues("GET", "/health").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "casino_http_requests_total") {
		t.Error("Expected request counter in output")
	}
}
