// Command fstopd runs the fstop analysis daemon: it accepts photo uploads
// over HTTP, extracts EXIF device identities, and scores forgery likelihood.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fstop/internal/analysis"
	"fstop/internal/config"
	"fstop/internal/daemon"
	"fstop/internal/logging"
	"fstop/internal/processing"
	"fstop/internal/services/llm"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := analysis.Open(cfg)
	if err != nil {
		logger.Error("open analysis store", logging.Error(err))
		os.Exit(1)
	}

	var scorer processing.Scorer
	if strings.TrimSpace(cfg.LLM.APIKey) != "" {
		scorer = llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
	} else {
		logger.Warn("no llm api key configured, analyses will complete unscored")
	}

	proc, err := processing.New(cfg, store, logger, scorer)
	if err != nil {
		logger.Error("create processor", logging.Error(err))
		store.Close()
		os.Exit(1)
	}

	d, err := daemon.New(cfg, store, logger, proc)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		store.Close()
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	d.Stop()
}
