package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rcsarchive/internal/archive"
	"rcsarchive/internal/history"
	"rcsarchive/internal/logging"
	"rcsarchive/internal/preflight"
	"rcsarchive/internal/rsync"
	"rcsarchive/internal/services"
)

func runArchive(cmd *cobra.Command, cmdCtx *commandContext, dryRun bool) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "logging", "init", "", err)
	}

	lock, err := archive.AcquireLock(cfg.LockPath())
	if errors.Is(err, archive.ErrAlreadyRunning) {
		logger.Warn("another run holds the lock, exiting",
			logging.String("lock", cfg.LockPath()),
			logging.String(logging.FieldEventType, "run_lock_held"),
		)
		return nil
	}
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "archive", "lock", cfg.LockPath(), err)
	}
	logger.Debug("acquired run lock", logging.String("lock", lock.Path()))
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release run lock", logging.String("lock", lock.Path()), logging.Error(err))
		}
	}()

	for _, status := range preflight.CheckSystemDeps(cfg) {
		if !status.Available {
			logging.WarnWithContext(logger, "required binary unavailable",
				"dependency_missing",
				logging.String("dependency", status.Name),
				logging.String("detail", status.Detail),
				logging.String(logging.FieldImpact, "every session move will fail this run"),
				logging.String(logging.FieldErrorHint, "install rsync or set rsync.binary"),
			)
		}
	}

	client, err := rsync.New(cfg.Rsync.Binary, cfg.RsyncTimeout())
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "rsync", "init", "", err)
	}

	opts := []archive.Option{archive.WithDryRun(dryRun)}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "history", "open", cfg.HistoryPath(), err)
		}
		defer store.Close()
		opts = append(opts, archive.WithLedger(store))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary := archive.New(cfg, client, logger, opts...).Run(ctx)
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, shouldColorize(cmd.OutOrStdout())))
	return nil
}
