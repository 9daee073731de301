package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/crm-backend/internal/config"
	"github.com/yungbote/crm-backend/internal/jobs"
	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/platform/sendgrid"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
)

func main() {
	runOnce := flag.String("run", "", "execute one job once and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *runOnce); err != nil {
		fmt.Fprintf(os.Stderr, "crmjobs: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, only string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	jobsCfg, err := jobs.LoadConfig(jobs.ConfigPath())
	if err != nil {
		return err
	}
	var mailer sendgrid.Client
	if mailCfg := sendgrid.ConfigFromEnv(); mailCfg.Enabled() {
		if mailer, err = sendgrid.New(log, mailCfg); err != nil {
			return fmt.Errorf("init sendgrid: %w", err)
		}
	}
	registry, closeSinks, err := jobs.Build(jobsCfg, jobs.NewClient(jobsCfg, log), mailer)
	if err != nil {
		return err
	}
	defer closeSinks()

	metrics := observability.Init(cfg.MetricsEnabled)
	scheduler := jobs.NewScheduler(log, registry, metrics)

	if only != "" {
		return scheduler.RunOnce(ctx, only)
	}

	if metrics != nil {
		metrics.StartServer(ctx, log, cfg.MetricsAddr)
	}
	if err := scheduler.Schedule(ctx, jobsCfg); err != nil {
		return err
	}
	stopEvents, err := startEventLog(ctx, cfg, jobsCfg.Events, log, metrics)
	if err != nil {
		return err
	}
	defer stopEvents()
	scheduler.Start()
	log.Info("Job scheduler started", "jobs", registry.Types(), "base_url", jobsCfg.BaseURL)

	<-ctx.Done()
	scheduler.Stop()
	log.Info("Job scheduler stopped")
	return nil
}

// startEventLog subscribes to the configured event bus and writes the
// selected events to their own file log. It is a no-op when no bus is set.
func startEventLog(ctx context.Context, cfg config.Config, ec jobs.EventsConfig, log *logger.Logger, metrics *observability.Metrics) (func(), error) {
	if !ec.IsEnabled() || cfg.EventBus == config.BusNone || cfg.EventBus == "" {
		return func() {}, nil
	}
	b, err := bus.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init event bus: %w", err)
	}
	out, err := logger.NewFile(ec.LogPath)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("event log: %w", err)
	}
	if err := jobs.NewEventLog(b, out, metrics, ec.Types).Start(ctx); err != nil {
		_ = b.Close()
		out.Sync()
		return nil, err
	}
	log.Info("Event log subscribed", "bus", cfg.EventBus, "types", ec.Types, "path", ec.LogPath)
	return func() {
		_ = b.Close()
		out.Sync()
	}, nil
}
