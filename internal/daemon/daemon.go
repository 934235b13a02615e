package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fitpet-app/fitpet/internal/api"
	"github.com/fitpet-app/fitpet/internal/app/game"
	"github.com/fitpet-app/fitpet/internal/health"
	"github.com/fitpet-app/fitpet/internal/infra/clock"
	"github.com/fitpet-app/fitpet/internal/infra/sqlite"
)

// Daemon is the core fitpet runtime. It wires together all services.
type Daemon struct {
	Config Config
	Logger *zap.Logger
	DB     *sqlite.DB
	Clock  clock.System
	Engine *game.Engine
	Server *api.Server
	Health *health.Checker
	cancel context.CancelFunc
}

// New creates and initializes a Daemon from the on-disk configuration.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, logger)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config, logger *zap.Logger) (*Daemon, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	// Open SQLite
	db, err := sqlite.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	clk := clock.NewSystem(loc)
	eng, err := game.NewEngine(db, clk, cfg.Rules, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init engine: %w", err)
	}

	checker := health.NewChecker(db, cfg.Storage.DataDir, logger)
	checker.SetInterval(parseDuration(cfg.Telemetry.HealthInterval, health.DefaultInterval))

	srv := api.NewServer(eng, logger)
	srv.SetHealth(checker)
	srv.SetTimeout(parseDuration(cfg.API.Timeout, 30*time.Second))
	if cfg.Telemetry.Metrics {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Clock:  clk,
		Engine: eng,
		Server: srv,
		Health: checker,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context, version string) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.Server.SetVersion(version)

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			d.Logger.Info("shutting down", zap.String("signal", sig.String()))
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	d.Logger.Info("serving",
		zap.String("addr", "http://"+addr),
		zap.String("data_dir", d.Config.Storage.DataDir),
		zap.String("timezone", d.Clock.Location().String()),
		zap.Bool("metrics", d.Config.Telemetry.Metrics))

	err := httpServer.ListenAndServe()
	d.Close()
	if err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
		d.DB = nil
	}
	_ = d.Logger.Sync()
}
