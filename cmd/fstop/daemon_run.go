package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fstop/internal/analysis"
	"fstop/internal/daemon"
	"fstop/internal/logging"
	"fstop/internal/processing"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the analysis daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(ctx, cmd)
		},
	}
}

func runDaemonProcess(ctx *commandContext, cmd *cobra.Command) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := analysis.Open(cfg)
	if err != nil {
		return fmt.Errorf("open analysis store: %w", err)
	}

	scorer, err := ctx.scorer()
	if err != nil {
		store.Close()
		return err
	}
	var procScorer processing.Scorer
	if scorer != nil {
		procScorer = scorer
	} else {
		logger.Warn("no llm api key configured, analyses will complete unscored")
	}

	proc, err := processing.New(cfg, store, logger, procScorer)
	if err != nil {
		store.Close()
		return err
	}
	d, err := daemon.New(cfg, store, logger, proc)
	if err != nil {
		store.Close()
		return err
	}
	defer d.Close()

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := d.Start(signalCtx); err != nil {
		return err
	}
	<-signalCtx.Done()
	d.Stop()
	return nil
}
