package main

import (
	"context"

	"liseplanning/lib/serviceutil"
	"liseplanning/lib/telemetry"
)

func initTelemetry(ctx context.Context, verbose bool) telemetry.Telemetry {
	telemetry.InitSlog(verbose)

	t, err := telemetry.SetupFromEnv(ctx, "lise-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	telemetry.InstrumentPerfStats(ctx)
	return t
}
