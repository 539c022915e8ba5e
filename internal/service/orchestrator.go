package service

import (
	"context"
	"fmt"

	"liseplanning/internal/components/assert"
	"liseplanning/internal/components/chrono"
	"liseplanning/internal/components/telemetry"
	"liseplanning/internal/planning"
	"liseplanning/internal/scrapers/lise"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("liseplanning/internal/service")

const (
	report_orchestrator_run = "orchestrator.run"
)

// Orchestrator runs a complete scrape of the planning of one student.
type Orchestrator struct {
	session  lise.SessionOptions
	language planning.Language
	clock    chrono.API

	// tel is handed to every session, reports is scoped to the orchestrator itself.
	tel     telemetry.API
	reports telemetry.API
}

func NewOrchestrator(session lise.SessionOptions, language planning.Language, clock chrono.API, tel telemetry.API) Orchestrator {
	assert.NotNil(clock, "clock")
	assert.NotNil(tel, "telemetry")
	return Orchestrator{
		session:  session,
		language: language,
		clock:    clock,
		tel:      tel,
		reports:  telemetry.NewScopedAPI("service", tel),
	}
}

// Events logs in as username and returns every entry of the planning, in the order the portal lists
// them. The first failure aborts the scrape.
func (o Orchestrator) Events(ctx context.Context, username, password string, formatDescription bool) ([]planning.Event, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.Events")
	defer span.End()

	events, err := o.events(ctx, username, password, formatDescription)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("events", len(events)))
	return events, nil
}

func (o Orchestrator) events(ctx context.Context, username, password string, formatDescription bool) ([]planning.Event, error) {
	// a fresh session per run, nothing is shared with concurrent scrapes
	session, err := lise.NewSession(o.session, o.tel)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	state, err := session.Authenticate(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	state, err = session.Navigate(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	state, stubs, err := session.FetchPlanning(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("fetch planning: %w", err)
	}
	o.reports.ReportDebug("fetched planning", "stubs", len(stubs))

	opts := planning.AssembleOptions{
		FormatDescription: formatDescription,
		Language:          o.language,
	}
	events := make([]planning.Event, 0, len(stubs))
	for _, stub := range stubs {
		var fragment lise.DetailFragment
		state, fragment, err = session.FetchDetail(ctx, state, stub.Id)
		if err != nil {
			return nil, fmt.Errorf("fetch detail of event %s: %w", stub.Id, err)
		}
		info, err := planning.Parse(string(fragment))
		if err != nil {
			o.reports.ReportBroken(report_orchestrator_run, err, stub.Id)
			return nil, fmt.Errorf("parse event %s: %w", stub.Id, err)
		}
		event, err := planning.Assemble(stub, info, opts)
		if err != nil {
			o.reports.ReportBroken(report_orchestrator_run, err, stub.Id)
			return nil, fmt.Errorf("assemble event %s: %w", stub.Id, err)
		}
		events = append(events, event)
	}

	return events, nil
}

// Run scrapes the planning of username and renders it as an iCalendar feed.
func (o Orchestrator) Run(ctx context.Context, username, password string, formatDescription bool) ([]byte, error) {
	events, err := o.Events(ctx, username, password, formatDescription)
	if err != nil {
		return nil, err
	}
	return planning.RenderFeed(events, o.clock.Now()), nil
}
