// Package metrics exposes Prometheus counters for rounds, stakes and
// payouts.
package metrics

import (
	"net/http"

	"github.com/alexbotov/casino/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	Rounds         *prometheus.CounterVec
	Wagered        *prometheus.CounterVec
	Won            *prometheus.CounterVec
	Bonuses        prometheus.Counter
	ActiveSessions prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "endpoint"},
		),
		Rounds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_rounds_total",
				Help: "Settled rounds by game and result",
			},
			[]string{"game", "result"},
		),
		Wagered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_wagered_total",
				Help: "Total amount staked by game",
			},
			[]string{"game"},
		),
		Won: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_won_total",
				Help: "Total amount paid out by game",
			},
			[]string{"game"},
		),
		Bonuses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "casino_milestone_bonus_total",
				Help: "Total milestone bonus credited",
			},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "casino_active_sessions",
				Help: "Sessions currently held in memory",
			},
		),
	}
	m.registry.MustRegister(m.HTTPRequests, m.Rounds, m.Wagered, m.Won, m.Bonuses, m.ActiveSessions)
	return m
}

// ObserveRound counts one settled round.
func (m *Metrics) ObserveRound(r domain.RoundResult) {
	if m == nil {
		return
	}
	result := "lose"
	switch r.WinAmount.Cmp(r.WagerAmount) {
	case 1:
		result = "win"
	case 0:
		result = "push"
	}
	game := string(r.Game)
	m.Rounds.WithLabelValues(game, result).Inc()
	m.Wagered.WithLabelValues(game).Add(r.WagerAmount.Float64())
	m.Won.WithLabelValues(game).Add(r.WinAmount.Float64())
}

// ObserveBonus counts a milestone bonus.
func (m *Metrics) ObserveBonus(amount domain.Money) {
	if m == nil {
		return
	}
	m.Bonuses.Add(amount.Float64())
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
