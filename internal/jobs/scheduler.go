package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"

	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/platform/sendgrid"
)

// Build registers every enabled job from cfg, each with its own file log.
// The returned func flushes those logs. mailer may be nil.
func Build(cfg Config, client *Client, mailer sendgrid.Client) (*Registry, func(), error) {
	registry := NewRegistry()
	var sinks []*logger.Logger
	closeAll := func() {
		for _, l := range sinks {
			l.Sync()
		}
	}

	for _, name := range []string{JobHeartbeat, JobLowStock, JobReport, JobOrderReminders} {
		jc, ok := cfg.Jobs[name]
		if !ok || !jc.IsEnabled() {
			continue
		}
		out, err := logger.NewFile(jc.LogPath)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("job %s: %w", name, err)
		}
		sinks = append(sinks, out)

		var h Handler
		switch name {
		case JobHeartbeat:
			h = NewHeartbeat(client, out)
		case JobLowStock:
			h = NewLowStock(client, out)
		case JobReport:
			h = NewReport(client, out)
		case JobOrderReminders:
			h = NewOrderReminders(client, out, jc.Lookback).WithMailer(mailer)
		}
		if err := registry.Register(h); err != nil {
			closeAll()
			return nil, nil, err
		}
	}
	return registry, closeAll, nil
}

type Scheduler struct {
	log      *logger.Logger
	registry *Registry
	metrics  *observability.Metrics
	cron     *cron.Cron
}

func NewScheduler(log *logger.Logger, registry *Registry, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		log:      log.With("component", "JobScheduler"),
		registry: registry,
		metrics:  metrics,
		cron:     cron.New(),
	}
}

// RunOnce executes one registered job synchronously.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	h, ok := s.registry.Get(name)
	if !ok {
		return fmt.Errorf("unknown job %q (registered: %v)", name, s.registry.Types())
	}
	start := time.Now()
	err := h.Run(ctx)
	status := "succeeded"
	if err != nil {
		status = "failed"
		s.log.Warn("Job failed", "job", name, "duration_ms", time.Since(start).Milliseconds(), "error", err)
	} else {
		s.log.Info("Job finished", "job", name, "duration_ms", time.Since(start).Milliseconds())
	}
	s.metrics.ObserveJob(name, status, time.Since(start))
	return err
}

// Schedule runs every registered job on its cron spec from cfg until Stop.
func (s *Scheduler) Schedule(ctx context.Context, cfg Config) error {
	for _, name := range s.registry.Types() {
		name := name
		spec := cfg.Jobs[name].Schedule
		if err := s.cron.AddFunc(spec, func() {
			_ = s.RunOnce(ctx, name)
		}); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
		}
		s.log.Info("Job scheduled", "job", name, "schedule", spec)
	}
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

func (s *Scheduler) Stop() { s.cron.Stop() }
