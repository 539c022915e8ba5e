package main

import (
	"context"
	"flag"
	"log/slog"

	"liseplanning/internal/components/chrono"
	"liseplanning/internal/components/telemetry"
	"liseplanning/internal/feedcache"
	"liseplanning/internal/server"
	"liseplanning/internal/service"
	"liseplanning/lib/configutil"
	"liseplanning/lib/serviceutil"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	configPath := flag.String("config", "config.json5", "path to the configuration file")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	t := initTelemetry(ctx, *verbose)
	defer t.Shutdown(context.Background())

	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	language, err := cfg.validate()
	if err != nil {
		serviceutil.Fatal("invalid config", err)
	}

	clock, err := chrono.NewStandardImpl()
	if err != nil {
		serviceutil.Fatal("failed to load timezone", err)
	}
	tel := telemetry.SlogAPI{}

	cache := feedcache.NewCache[service.FeedKey](clock, tel, feedcache.Options{})
	cron := chrono.NewStandardCron(clock.Location(), tel)
	defer cron.Stop()
	err = cron.Cron("@every 10m", func() {
		dropped := cache.Prune()
		slog.Debug("pruned feed cache", "dropped", dropped)
	})
	if err != nil {
		serviceutil.Fatal("failed to schedule cache pruning", err)
	}

	orchestrator := service.NewOrchestrator(cfg.sessionOptions(), language, clock, tel)
	feeds := service.NewFeedService(orchestrator, cache, tel)
	srv := server.NewServer(feeds, tel)

	err = serviceutil.StartHttpServer(ctx, cfg.Port, srv.Handler())
	if err != nil {
		serviceutil.Fatal("http server", err)
	}
}
