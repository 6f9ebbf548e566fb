// Command simulate plays the casino unattended and reports how the bankroll
// developed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexbotov/casino/internal/config"
	"github.com/alexbotov/casino/internal/database"
	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/history"
	"github.com/alexbotov/casino/internal/logger"
	"github.com/alexbotov/casino/internal/rng"
	"github.com/alexbotov/casino/internal/simulator"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var (
		rounds  = flag.Int("rounds", cfg.Simulation.MaxRounds, "maximum rounds to play")
		goal    = flag.Float64("goal", cfg.Game.Goal.Float64(), "stop once the balance reaches this")
		start   = flag.Float64("start", cfg.Game.StartingBalance.Float64(), "starting balance")
		seed    = flag.String("seed", "", "seed for a reproducible run")
		out     = flag.String("out", cfg.Simulation.OutputDir, "directory for the JSON report")
		dbPath  = flag.String("db", "", "record every round in this SQLite file")
		rtp     = flag.Int("rtp", 0, "measure each game's payout rate over N rounds instead")
		quiet   = flag.Bool("quiet", false, "only print the final summary")
		noBonus = flag.Bool("no-bonus", false, "play without milestone bonuses")
		verbose = flag.Bool("v", false, "log engine activity")
	)
	flag.Parse()

	log := zap.NewNop()
	if *verbose {
		log = logger.Must(cfg.Log.Level, "console")
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *rtp > 0 {
		return measureRTP(ctx, *rtp, *seed)
	}

	simCfg := simulator.Config{
		StartingBalance: domain.NewMoney(*start),
		Goal:            domain.NewMoney(*goal),
		MaxRounds:       *rounds,
		WagerLevels:     cfg.Game.WagerLevels,
		ReportInterval:  cfg.Simulation.ReportInterval,
		Seed:            *seed,
	}
	if !*noBonus {
		simCfg.Milestones = cfg.Game.Milestones
	}

	opts := []simulator.Option{simulator.WithLogger(log)}
	if !*quiet {
		opts = append(opts, simulator.WithProgress(printProgress(simCfg.Goal)))
	}
	if *dbPath != "" {
		db, err := database.New(database.DriverSQLite, "file:"+*dbPath)
		if err != nil {
			return fmt.Errorf("open run log: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrate run log: %w", err)
		}
		opts = append(opts, simulator.WithHistory(history.New(db.DB)))
	}

	sim, err := simulator.New(simCfg, opts...)
	if err != nil {
		return err
	}

	if !*quiet {
		printHeader(simCfg)
	}
	report, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	printReport(report)

	path, err := report.WriteFile(*out)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Detailed report saved to: %s", path)
	return nil
}

func measureRTP(ctx context.Context, rounds int, seed string) error {
	var src rng.Source = rng.New()
	if seed != "" {
		src = rng.NewStream(seed)
	}

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Playing %d rounds of every game", rounds))
	results, err := simulator.MeasureRTP(ctx, src, rounds)
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success("Done")

	printRTP(results)
	return nil
}
