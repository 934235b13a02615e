package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitpet-app/fitpet/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Host to listen on (overrides api.host)")
	serveCmd.Flags().IntVar(&serveFlags.port, "port", 0, "Port to listen on (overrides api.port)")
	serveCmd.Flags().StringVar(&serveFlags.timezone, "timezone", "", "IANA zone for streak days (overrides timezone)")
	serveCmd.Flags().BoolVar(&serveFlags.noMetrics, "no-metrics", false, "Do not expose /metrics")
	rootCmd.AddCommand(serveCmd)
}

type serveOptions struct {
	host      string
	port      int
	timezone  string
	noMetrics bool
}

var serveFlags serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fitpet JSON API",
	Long: `Run the fitpet JSON API over the local game database.

Routes:
  GET    /health, /metrics, /api/version
  GET    /api/catalog, /api/treats, /api/milestones, /api/unlocks
  GET    /api/templates             POST /api/templates
  GET    /api/players               POST /api/players
  GET    /api/players/{id}          status with lazily decayed pet
  GET    /api/players/{id}/workouts, /ledger, /shop
  POST   /api/players/{id}/refresh, /workouts, /pet/feed, /pet/recover
  POST   /api/players/{id}/shop/{accessory}
  POST   /api/players/{id}/pet/accessories/{accessory}   equip
  DELETE /api/players/{id}/pet/accessories/{accessory}   unequip

Flags override config.toml for this run only.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// apply writes the flag overrides onto cfg and revalidates it.
func (o serveOptions) apply(cfg *daemon.Config) error {
	if o.host != "" {
		cfg.API.Host = o.host
	}
	if o.port != 0 {
		cfg.API.Port = o.port
	}
	if o.timezone != "" {
		cfg.Timezone = o.timezone
	}
	if o.noMetrics {
		cfg.Telemetry.Metrics = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("serve flags: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Overrides land before wiring so the engine sees the final timezone.
	if err := serveFlags.apply(&cfg); err != nil {
		return err
	}

	logger, err := daemon.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	d, err := daemon.NewWithConfig(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "fitpet API on http://%s:%d (data: %s)\n", cfg.API.Host, cfg.API.Port, cfg.Storage.DataDir)
	return d.Serve(context.Background(), rootCmd.Version)
}
