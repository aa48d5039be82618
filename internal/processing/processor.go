package processing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"fstop/internal/analysis"
	"fstop/internal/config"
	"fstop/internal/exif"
	"fstop/internal/fileutil"
	"fstop/internal/logging"
	"fstop/internal/services/llm"
)

// Scorer obtains a forgery-likelihood assessment for extracted evidence.
type Scorer interface {
	ScoreAuthenticity(ctx context.Context, evidence llm.Evidence) (llm.Assessment, error)
}

// Processor drains pending analyses from the store.
type Processor struct {
	cfg    *config.Config
	store  *analysis.Store
	logger *slog.Logger
	scorer Scorer

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs a processor. scorer may be nil, in which case analyses
// complete with the device identity but no likelihood score.
func New(cfg *config.Config, store *analysis.Store, logger *slog.Logger, scorer Scorer) (*Processor, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("processor requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "processor"),
		scorer: scorer,
	}, nil
}

// Start resets stuck records and launches the polling loop.
func (p *Processor) Start(ctx context.Context) error {
	if p.running.Swap(true) {
		return errors.New("processor already running")
	}

	if reset, err := p.store.ResetStuckProcessing(ctx); err != nil {
		p.running.Store(false)
		return err
	} else if reset > 0 {
		p.logger.Info("reset stuck analyses", logging.Int64("count", reset))
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(runCtx)
	return nil
}

// Stop halts the polling loop and waits for in-flight work to finish.
func (p *Processor) Stop() {
	if !p.running.Load() {
		return
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.done != nil {
		<-p.done
		p.done = nil
	}
	p.running.Store(false)
}

// Running reports whether the polling loop is active.
func (p *Processor) Running() bool {
	return p.running.Load()
}

func (p *Processor) loop(ctx context.Context) {
	defer close(p.done)

	interval := time.Duration(p.cfg.Analysis.PollInterval) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	p.logger.Info("processor started", logging.Duration("poll_interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		// Drain the backlog before sleeping again.
		for {
			claimed, err := p.ProcessNext(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				p.logger.Error("process analysis", logging.Error(err))
				break
			}
			if !claimed {
				break
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessNext claims the oldest pending record and runs it through the
// pipeline. It reports whether a record was claimed.
func (p *Processor) ProcessNext(ctx context.Context) (bool, error) {
	rec, err := p.store.NextPending(ctx)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	return true, p.process(ctx, rec)
}

type extraction struct {
	found  bool
	device exif.Device
	err    error
}

func (p *Processor) process(ctx context.Context, rec *analysis.Record) error {
	log := p.logger.With(logging.Int64("analysis", rec.ID), logging.String("file", rec.Filename))
	log.Info("analysis started")

	rec.Status = analysis.StatusExtracting
	if err := p.store.Update(ctx, rec); err != nil {
		return err
	}

	// The parse itself has no cancellation path, so it runs off this
	// goroutine and the loop stays responsive to shutdown. A cancelled
	// claim is reset to pending on the next start.
	results := make(chan extraction, 1)
	go func() {
		results <- p.extract(rec)
	}()

	var ext extraction
	select {
	case <-ctx.Done():
		return ctx.Err()
	case ext = <-results:
	}
	if ext.err != nil {
		log.Error("read upload", logging.Error(ext.err))
		return p.fail(ctx, rec, "read upload: "+ext.err.Error())
	}

	rec.ExifFound = ext.found
	rec.DeviceMake = ext.device.Make
	rec.DeviceModel = ext.device.Model
	rec.DeviceDisplay = ext.device.Display()
	rec.Status = analysis.StatusScoring
	if err := p.store.Update(ctx, rec); err != nil {
		return err
	}

	if p.scorer == nil {
		rec.Scored = false
		rec.Status = analysis.StatusCompleted
		if err := p.store.Update(ctx, rec); err != nil {
			return err
		}
		log.Info("analysis completed", logging.Args(completionAttrs(rec)...)...)
		return nil
	}

	assessment, err := p.scorer.ScoreAuthenticity(ctx, llm.Evidence{
		Filename:      rec.Filename,
		MediaType:     rec.MediaType,
		SizeBytes:     rec.SizeBytes,
		ExifFound:     rec.ExifFound,
		DeviceDisplay: rec.DeviceDisplay,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("score analysis", logging.Error(err))
		return p.fail(ctx, rec, "score analysis: "+err.Error())
	}

	rec.Scored = true
	rec.Likelihood = assessment.Likelihood
	rec.Verdict = assessment.Verdict
	rec.Rationale = assessment.Reason
	rec.Status = analysis.StatusCompleted
	if err := p.store.Update(ctx, rec); err != nil {
		return err
	}
	log.Info("analysis completed", logging.Args(completionAttrs(rec)...)...)
	return nil
}

// completionAttrs assembles the completion log fields, which vary with what
// the pipeline actually produced.
func completionAttrs(rec *analysis.Record) []logging.Attr {
	attrs := []logging.Attr{logging.Bool("exif_found", rec.ExifFound)}
	if rec.DeviceDisplay != "" {
		attrs = append(attrs, logging.String("device", rec.DeviceDisplay))
	}
	if rec.Scored {
		attrs = append(attrs,
			logging.Float64("likelihood", rec.Likelihood),
			logging.String("verdict", rec.Verdict))
	}
	return attrs
}

// extract reads the bounded prefix and parses the device identity. Media
// types other than JPEG are never parsed and yield an unconditional absence.
func (p *Processor) extract(rec *analysis.Record) extraction {
	if !IsJPEGMediaType(rec.MediaType) {
		return extraction{}
	}

	sniff := p.cfg.Analysis.SniffBytes
	if sniff <= 0 || sniff > exif.MaxSniffBytes {
		sniff = exif.MaxSniffBytes
	}
	buf, err := fileutil.ReadPrefix(rec.SourcePath, sniff)
	if err != nil {
		return extraction{err: err}
	}

	tiffStart, ok := exif.FindTIFF(buf)
	if !ok {
		return extraction{}
	}
	device, ok := exif.ReadDevice(buf, tiffStart)
	if !ok {
		return extraction{}
	}
	return extraction{found: true, device: device}
}

func (p *Processor) fail(ctx context.Context, rec *analysis.Record, message string) error {
	rec.Status = analysis.StatusFailed
	rec.ErrorMessage = message
	return p.store.Update(ctx, rec)
}

// IsJPEGMediaType reports whether a declared media type is eligible for
// EXIF parsing.
func IsJPEGMediaType(mediaType string) bool {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "image/jpeg", "image/jpg":
		return true
	}
	return false
}
