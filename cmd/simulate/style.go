package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/simulator"
	"github.com/pterm/pterm"
)

var gameNames = map[domain.GameID]string{
	domain.GameVideoPoker:    "Video Poker",
	domain.GameTexasHoldem:   "Texas Hold'em",
	domain.GameCaribbeanStud: "Caribbean Stud",
	domain.GameCraps:         "Craps",
	domain.GameRoulette:      "Roulette",
	domain.GameLucky7:        "Lucky 7 Slots",
	domain.GameFortune:       "Fortune Slots",
}

func euro(m domain.Money) string { return "€" + m.String() }

func printHeader(cfg simulator.Config) {
	pterm.DefaultHeader.WithFullWidth().Println("🎰 Automated Casino Player")
	pterm.Info.Printfln("Starting Balance: %s", euro(cfg.StartingBalance))
	pterm.Info.Printfln("Goal: %s", euro(cfg.Goal))
	pterm.Info.Printfln("Max Rounds: %d", cfg.MaxRounds)
	if cfg.Seed != "" {
		pterm.Info.Printfln("Seed: %q", cfg.Seed)
	}
	pterm.Println()
}

func printProgress(goal domain.Money) func(int, domain.Money) {
	return func(round int, balance domain.Money) {
		pct := balance.Float64() / goal.Float64() * 100
		pterm.Printfln("Round %d: %s (%.1f%% of goal)", round, euro(balance), pct)
	}
}

func printReport(r *simulator.Report) {
	s := r.Summary
	pterm.Println()
	switch r.Outcome {
	case simulator.OutcomeGoal:
		pterm.Success.Printfln("GOAL REACHED at round %d", s.TotalRounds)
	case simulator.OutcomeBusted:
		pterm.Warning.Printfln("Busted after %d rounds", s.TotalRounds)
	case simulator.OutcomeStopped:
		pterm.Warning.Printfln("Stopped after %d rounds", s.TotalRounds)
	default:
		pterm.Info.Printfln("Reached maximum rounds (%d)", s.TotalRounds)
	}

	pterm.DefaultSection.Println("Simulation Report")
	pterm.DefaultTable.WithData(pterm.TableData{
		{"Total Rounds", strconv.Itoa(s.TotalRounds)},
		{"Duration", fmt.Sprintf("%.2fs", r.Duration)},
		{"Starting Balance", euro(s.StartingBalance)},
		{"Final Balance", euro(s.FinalBalance)},
		{"Net Change", euro(s.NetChange)},
		{"Peak Balance", euro(s.PeakBalance)},
		{"Lowest Balance", euro(s.LowestBalance)},
		{"Biggest Single Win", euro(s.BiggestWin)},
		{"Biggest Single Loss", euro(s.BiggestLoss)},
	}).Render()

	pterm.DefaultSection.Println("Milestones")
	keys := make([]string, 0, len(r.Milestones))
	for k := range r.Milestones {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})
	for _, k := range keys {
		if round := r.Milestones[k]; round != nil {
			pterm.Success.Printfln("€%s: reached at round %d", k, *round)
		} else {
			pterm.Println(pterm.Gray(fmt.Sprintf("€%s: not reached", k)))
		}
	}

	pterm.DefaultSection.Println("Game-by-Game Statistics")
	data := pterm.TableData{{"Game", "Rounds", "Won", "Lost", "Wagered", "Won", "Net", "ROI"}}
	for _, id := range domain.AllGames {
		gs := r.GameStats[id]
		if gs == nil || gs.Played == 0 {
			continue
		}
		roi := 0.0
		if w := gs.TotalWagered.Float64(); w > 0 {
			roi = gs.Net().Float64() / w * 100
		}
		winRate := float64(gs.Won) / float64(gs.Played) * 100
		data = append(data, []string{
			gameNames[id],
			strconv.Itoa(gs.Played),
			fmt.Sprintf("%d (%.1f%%)", gs.Won, winRate),
			strconv.Itoa(gs.Lost),
			euro(gs.TotalWagered),
			euro(gs.TotalWon),
			colorNet(gs.Net()),
			fmt.Sprintf("%.1f%%", roi),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printRTP(results []simulator.RTPResult) {
	pterm.DefaultSection.Println("Payout Rates")
	data := pterm.TableData{{"Game", "Rounds", "Wagered", "Won", "RTP"}}
	for _, r := range results {
		data = append(data, []string{
			gameNames[r.Game],
			strconv.Itoa(r.Rounds),
			euro(r.Wagered),
			euro(r.Won),
			fmt.Sprintf("%.2f%%", r.Rate()*100),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func colorNet(m domain.Money) string {
	switch {
	case m.IsPositive():
		return pterm.LightGreen(euro(m))
	case m.IsNegative():
		return pterm.LightRed(euro(m))
	}
	return euro(m)
}
