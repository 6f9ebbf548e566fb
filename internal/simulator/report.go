package simulator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexbotov/casino/internal/domain"
)

// GameStats are one game's totals over a run.
type GameStats struct {
	Played       int          `json:"played"`
	Won          int          `json:"won"`
	Lost         int          `json:"lost"`
	TotalWagered domain.Money `json:"totalWagered"`
	TotalWon     domain.Money `json:"totalWon"`
}

// Net is what the game paid out minus what it took.
func (g GameStats) Net() domain.Money { return g.TotalWon.Sub(g.TotalWagered) }

type Summary struct {
	TotalRounds     int          `json:"totalRounds"`
	StartingBalance domain.Money `json:"startingBalance"`
	FinalBalance    domain.Money `json:"finalBalance"`
	NetChange       domain.Money `json:"netChange"`
	PeakBalance     domain.Money `json:"peakBalance"`
	LowestBalance   domain.Money `json:"lowestBalance"`
	BiggestWin      domain.Money `json:"biggestWin"`
	BiggestLoss     domain.Money `json:"biggestLoss"`
	GoalReached     bool         `json:"goalReached"`
}

// Report is the stable output of a run. Milestones maps each reported
// balance to the round it was first reached on, or null.
type Report struct {
	Timestamp      time.Time                    `json:"timestamp"`
	Config         Config                       `json:"config"`
	Outcome        Outcome                      `json:"outcome"`
	Duration       float64                      `json:"durationSeconds"`
	Summary        Summary                      `json:"summary"`
	Milestones     map[string]*int              `json:"milestones"`
	GameStats      map[domain.GameID]*GameStats `json:"gameStats"`
	BalanceHistory []domain.Money               `json:"balanceHistory"`
}

func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FileName is simulation-report-<timestamp>.json with the colons of the
// timestamp replaced so the name is valid everywhere.
func (r *Report) FileName() string {
	ts := strings.ReplaceAll(r.Timestamp.Format("2006-01-02T15:04:05"), ":", "-")
	return "simulation-report-" + ts + ".json"
}

// WriteFile saves the report in dir and returns the path written.
func (r *Report) WriteFile(dir string) (string, error) {
	data, err := r.JSON()
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, r.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
