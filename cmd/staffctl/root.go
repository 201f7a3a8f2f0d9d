package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/cache"
	"github.com/spec-kit/staff-roster/internal/config"
	"github.com/spec-kit/staff-roster/internal/domain"
	"github.com/spec-kit/staff-roster/internal/endpoint"
	"github.com/spec-kit/staff-roster/internal/events"
	"github.com/spec-kit/staff-roster/internal/observability"
	"github.com/spec-kit/staff-roster/internal/persistence"
	"github.com/spec-kit/staff-roster/internal/remote"
	"github.com/spec-kit/staff-roster/internal/sanitize"
	"github.com/spec-kit/staff-roster/internal/syncstore"
)

const pinEnv = "STAFF_ADMIN_PIN"

// cli carries the state shared by every staffctl command. The store is
// opened in PersistentPreRunE and closed after the command finishes.
type cli struct {
	cfg    *config.Config
	logger *zap.Logger

	cachePath string
	local     bool
	pin       string

	slots    *persistence.Bolt
	resolver *endpoint.Resolver
	store    *syncstore.Store
	metrics  *observability.Metrics
}

func newRootCmd(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	c := &cli{cfg: cfg, logger: logger}

	root := &cobra.Command{
		Use:   "staffctl",
		Short: "Manage the staff roster",
		Long: `Manage the staff roster shown on the site.

Reads prefer the remote staff endpoint and fall back to the local cache.
Writes go to the remote endpoint first and are always kept locally, so an
edit made offline survives until the next successful sync.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.open() },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	root.PersistentFlags().StringVar(&c.cachePath, "cache", cfg.Client.CachePath, "Path to the local cache file")
	root.PersistentFlags().BoolVar(&c.local, "local", false, "Skip the remote endpoint and use only the local cache")
	root.PersistentFlags().StringVar(&c.pin, "pin", os.Getenv(pinEnv), "Admin PIN sent with writes (default $"+pinEnv+")")

	root.AddCommand(
		newListCmd(c),
		newAddCmd(c),
		newEditCmd(c),
		newRemoveCmd(c),
		newMoveCmd(c),
		newImportCmd(c),
		newExportCmd(c),
		newEndpointCmd(c),
		newResetCmd(c),
		newStatusCmd(c),
	)
	return root
}

func (c *cli) open() error {
	slots, err := persistence.OpenBolt(c.cachePath, c.logger)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	c.slots = slots

	clientCfg := c.cfg.Client
	sanitizer := sanitize.New(sanitize.WithLegacyAliases(clientCfg.LegacyAliases))
	c.resolver = endpoint.NewResolver(slots, endpoint.Config{
		Default:      clientCfg.DefaultEndpoint,
		Forced:       clientCfg.ForcedEndpoint,
		EmbeddedHost: endpoint.EnvDetector(clientCfg.EmbeddedHostEnv),
	}, c.logger)
	c.metrics = observability.NewMetrics()

	c.store = syncstore.New(syncstore.Dependencies{
		Cache: cache.New(slots, sanitizer, c.logger),
		Remote: remote.NewClient(remote.Config{
			ReadTimeout:  clientCfg.ReadTimeout,
			WriteTimeout: clientCfg.WriteTimeout,
		}, sanitizer, c.logger),
		Resolver:   c.resolver,
		Sanitizer:  sanitizer,
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    c.metrics,
	}, c.logger)

	c.store.Subscribe(func(_ context.Context, payload events.StaffChangedPayload) {
		c.logger.Info("staff changed",
			zap.Int("count", len(payload.Staff)),
			zap.String("state", string(payload.State)))
	})
	return nil
}

func (c *cli) close() error {
	if c.slots == nil {
		return nil
	}
	err := c.slots.Close()
	c.slots = nil
	return err
}

func (c *cli) preferRemote() bool {
	return !c.local
}

// save persists list and prints where it ended up.
func (c *cli) save(cmd *cobra.Command, list domain.StaffList) error {
	report, err := c.store.SaveReport(cmd.Context(), list, c.pin, c.preferRemote())
	return c.report(cmd, report, err)
}

// report prints a save outcome. A rejected PIN or a failed local write is
// returned as an error; a remote failure is only a warning since the list
// was kept locally.
func (c *cli) report(cmd *cobra.Command, report syncstore.Report, err error) error {
	status := syncstore.StatusOf(report, err)
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d staff)\n", status, len(report.Staff))
	switch status {
	case syncstore.StatusRejected, syncstore.StatusFailed:
		return err
	case syncstore.StatusLocalOnly:
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		}
	}
	return nil
}
