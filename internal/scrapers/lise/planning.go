package lise

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
)

// EventStub is the summary of a planning entry as returned by the planning component.
type EventStub struct {
	Id    string
	Title string
	// Start and End are kept as sent by the portal, ex. 2024-05-28T14:40:00+0200
	Start  string
	End    string
	AllDay bool
}

// DetailFragment is the markup of the detail modal of one planning entry.
type DetailFragment string

// FetchPlanning asks the planning component to render every entry it knows of and returns their
// stubs in the order the portal sent them.
func (s *Session) FetchPlanning(ctx context.Context, state SessionState) (SessionState, []EventStub, error) {
	const op = "fetch-planning"
	ctx, span := tracer.Start(ctx, "Session.FetchPlanning")
	defer span.End()

	err := s.checkCurrent(op, state)
	if err != nil {
		return SessionState{}, nil, s.fail(span, report_session_fetch_planning, err)
	}

	partial, err := s.postPartial(ctx, op, planningForm(state))
	if err != nil {
		return SessionState{}, nil, s.fail(span, report_session_fetch_planning, err)
	}
	body, ok := partial.fragment(planningComponent)
	if !ok {
		return SessionState{}, nil, s.fail(span, report_session_fetch_planning, &ProtocolError{
			Op:  op,
			Err: fmt.Errorf("response has no %s fragment", planningComponent),
		})
	}

	stubs, err := decodeStubs(body)
	if err != nil {
		return SessionState{}, nil, s.fail(span, report_session_fetch_planning, &ProtocolError{Op: op, Err: err})
	}
	span.SetAttributes(attribute.Int("lise.planning.count", len(stubs)))
	s.tel.ReportDebug("planning fetched", len(stubs))

	return s.rotate(state, partial), stubs, nil
}

// FetchDetail selects one planning entry and returns the markup of its detail modal.
//
// The state must be the one returned by the previous step, the portal only accepts the latest view
// token. Details can therefore only be fetched one after the other.
func (s *Session) FetchDetail(ctx context.Context, state SessionState, eventId string) (SessionState, DetailFragment, error) {
	const op = "fetch-detail"
	ctx, span := tracer.Start(ctx, "Session.FetchDetail")
	defer span.End()
	span.SetAttributes(attribute.String("lise.event.id", eventId))

	err := s.checkCurrent(op, state)
	if err != nil {
		return SessionState{}, "", s.fail(span, report_session_fetch_detail, err)
	}

	partial, err := s.postPartial(ctx, op, detailForm(state, eventId))
	if err != nil {
		return SessionState{}, "", s.fail(span, report_session_fetch_detail, err)
	}
	body, ok := partial.fragment(detailComponent)
	if !ok {
		return SessionState{}, "", s.fail(span, report_session_fetch_detail, &ProtocolError{
			Op:  op,
			Err: fmt.Errorf("response for event %s has no %s fragment", eventId, detailComponent),
		})
	}

	return s.rotate(state, partial), DetailFragment(body), nil
}

// rotate returns the state following a partial response, which may or may not carry a new view token.
func (s *Session) rotate(state SessionState, partial partialResponse) SessionState {
	viewToken := state.viewToken
	if rotated, ok := partial.viewState(); ok {
		viewToken = rotated
	}
	return s.advance(state.initToken, viewToken)
}

func decodeStubs(body string) ([]EventStub, error) {
	if !gjson.Valid(body) {
		return nil, errors.New("planning fragment is not valid json")
	}
	events := gjson.Get(body, "events")
	if !events.IsArray() {
		return nil, errors.New("planning fragment has no events list")
	}

	var stubs []EventStub
	var decodeErr error
	events.ForEach(func(_, value gjson.Result) bool {
		stub := EventStub{
			Id:     value.Get("id").String(),
			Title:  value.Get("title").String(),
			Start:  value.Get("start").String(),
			End:    value.Get("end").String(),
			AllDay: value.Get("allDay").Bool(),
		}
		if stub.Id == "" {
			decodeErr = fmt.Errorf("planning entry %d has no id", len(stubs))
			return false
		}
		stubs = append(stubs, stub)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return stubs, nil
}
