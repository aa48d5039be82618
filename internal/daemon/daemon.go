package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"fstop/internal/analysis"
	"fstop/internal/config"
	"fstop/internal/logging"
	"fstop/internal/processing"
)

// Daemon coordinates the background processor and the HTTP API and enforces
// single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *analysis.Store
	processor *processing.Processor
	apiServer *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	StagingDir   string
	Health       analysis.HealthSummary
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *analysis.Store, logger *slog.Logger, proc *processing.Processor) (*Daemon, error) {
	if cfg == nil || store == nil || proc == nil {
		return nil, errors.New("daemon requires config, store, and processor")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "fstopd.lock")
	d := &Daemon{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		processor: proc,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}
	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.apiServer = srv
	return d, nil
}

// Start acquires the daemon lock and launches the processor and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another fstop daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.processor.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start processor: %w", err)
	}
	if d.apiServer != nil {
		if err := d.apiServer.start(runCtx); err != nil {
			d.processor.Stop()
			_ = d.lock.Unlock()
			cancel()
			return err
		}
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("fstop daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("pid", os.Getpid()))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.apiServer.stop()
	d.processor.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("fstop daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr reports the address the HTTP API is listening on, empty when the
// API is disabled or not started.
func (d *Daemon) APIAddr() string {
	if d.apiServer == nil {
		return ""
	}
	return d.apiServer.addr()
}

// Status returns current runtime information.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		StagingDir:   d.cfg.Paths.StagingDir,
	}
	if summary, err := d.store.Health(ctx); err == nil {
		status.Health = summary
	} else {
		d.logger.Warn("store health query failed", logging.Error(err))
	}
	return status
}
