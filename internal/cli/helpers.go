package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/fitpet-app/fitpet/internal/app/game"
	"github.com/fitpet-app/fitpet/internal/daemon"
	"github.com/fitpet-app/fitpet/internal/domain"
)

// out is where command output goes. Tests swap it.
var out io.Writer = os.Stdout

// openDaemon wires the engine without serving. Engine logs are dropped
// unless --verbose is set.
func openDaemon() (*daemon.Daemon, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := zap.NewNop()
	if verbose {
		if logger, err = daemon.NewLogger(cfg.Logging); err != nil {
			return nil, err
		}
	}
	return daemon.NewWithConfig(cfg, logger)
}

// withEngine runs fn against a freshly opened daemon and closes it after.
func withEngine(fn func(ctx context.Context, eng *game.Engine) error) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(context.Background(), d.Engine)
}

// resolvePlayer accepts a player id or a display name. Names are
// compared by slug, so "robin b" matches "Robin B.".
func resolvePlayer(ctx context.Context, eng *game.Engine, ref string) (string, error) {
	if _, err := eng.Status(ctx, ref); err == nil {
		return ref, nil
	} else if !errors.Is(err, domain.ErrPlayerNotFound) {
		return "", err
	}

	players, err := eng.Players(ctx)
	if err != nil {
		return "", err
	}
	want := slug.Make(ref)
	var matches []string
	for _, p := range players {
		if slug.Make(p.DisplayName) == want || strings.HasPrefix(p.ID, ref) {
			matches = append(matches, p.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", domain.ErrPlayerNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d players, use the id", ref, len(matches))
	}
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func joinOrDash(keys []string) string {
	if len(keys) == 0 {
		return "-"
	}
	return strings.Join(keys, ", ")
}
