package daemon_test

import (
	"context"
	"testing"

	"fstop/internal/daemon"
	"fstop/internal/logging"
	"fstop/internal/processing"
	"fstop/internal/testsupport"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	proc, err := processing.New(cfg, store, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("processing.New: %v", err)
	}
	d, err := daemon.New(cfg, store, logging.NewNop(), proc)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if d.APIAddr() == "" {
		t.Fatal("expected api server to be listening")
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	proc, err := processing.New(cfg, store, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("processing.New: %v", err)
	}
	first, err := daemon.New(cfg, store, logging.NewNop(), proc)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { first.Close() })

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer first.Stop()

	secondStore := testsupport.MustOpenStore(t, cfg)
	secondProc, err := processing.New(cfg, secondStore, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("processing.New: %v", err)
	}
	cfgCopy := *cfg
	cfgCopy.Paths.APIBind = "127.0.0.1:0"
	second, err := daemon.New(&cfgCopy, secondStore, logging.NewNop(), secondProc)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second instance to fail on lock")
	}
}
