package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
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
	"github.com/alexbotov/casino/internal/logger"
	"github.com/alexbotov/casino/internal/metrics"
	"github.com/alexbotov/casino/internal/rng"
	"github.com/alexbotov/casino/internal/session"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "casino: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Must(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	fmt.Println("🎰 Casino")

	db, err := database.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditSvc := audit.New(db.DB)
	ctl := control.New(db.DB, auditSvc, control.WithLogger(log.Named("control")))
	if err := ctl.LoadState(ctx); err != nil {
		return fmt.Errorf("load control state: %w", err)
	}
	hist := history.New(db.DB)
	m := metrics.New()
	rngSvc := rng.New()

	health := rng.HealthCheckRetry(rngSvc, rng.HealthAttempts)
	sev := domain.SeverityInfo
	switch {
	case !health.Healthy:
		sev = domain.SeverityCritical
	case health.Attempts > 1:
		sev = domain.SeverityWarning
		log.Warn("rng health check passed after retry",
			zap.Int("attempts", health.Attempts),
			zap.Float64("chi_square", health.ChiSquare))
	}
	if err := auditSvc.Log(ctx, audit.EventRNGHealthCheck, sev, "Startup RNG health check", health,
		audit.WithComponent("rng")); err != nil {
		log.Warn("audit rng health check", zap.Error(err))
	}
	if !health.Healthy {
		return fmt.Errorf("rng failed %d consecutive health checks (chi-square %.2f)", health.Attempts, health.ChiSquare)
	}

	engine := game.NewEngine(rngSvc,
		game.WithControl(ctl),
		game.WithHistory(hist),
		game.WithAudit(auditSvc),
		game.WithMetrics(m),
		game.WithLogger(log.Named("engine")),
		game.WithHoldemEvaluation(game.HoldemEvaluation(cfg.Game.HoldemEval)),
		game.WithLargeWin(cfg.Game.LargeWin))

	sessions := session.NewStore(cfg.SessionConfig())
	go sweepSessions(ctx, sessions, cfg.Server.SessionIdle, m, log)

	handler := api.New(api.Services{
		Engine:   engine,
		Sessions: sessions,
		Auth:     auth.New(&cfg.Auth),
		Audit:    auditSvc,
		Control:  ctl,
		History:  hist,
		Metrics:  m,
		RNG:      rngSvc,
		Logger:   log.Named("api"),
		Version:  version,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.SetupRouter(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("currency", cfg.Game.Currency),
			zap.String("starting_balance", cfg.Game.StartingBalance.String()),
			zap.String("goal", cfg.Game.Goal.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweepSessions drops idle sessions until ctx is cancelled.
func sweepSessions(ctx context.Context, sessions *session.Store, maxIdle time.Duration, m *metrics.Metrics, log *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(maxIdle); n > 0 {
				log.Info("idle sessions removed", zap.Int("count", n))
			}
			m.ActiveSessions.Set(float64(sessions.Len()))
		}
	}
}
