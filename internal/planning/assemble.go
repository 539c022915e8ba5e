package planning

import (
	"fmt"
	"strings"
	"time"

	"liseplanning/internal/scrapers/lise"
)

// the portal writes offsets without a colon, ex. 2024-05-28T14:40:00+0200
const portalTimeLayout = "2006-01-02T15:04:05-0700"

type AssembleOptions struct {
	// FormatDescription wraps the headings of the description in <b></b>.
	FormatDescription bool
	Language          Language
}

// Assemble merges the stub of a planning entry with the information parsed from its detail modal.
func Assemble(stub lise.EventStub, info EventInfo, opts AssembleOptions) (Event, error) {
	start, err := parsePortalTime(stub.Start)
	if err != nil {
		return Event{}, &ParseError{Section: "start", Err: err}
	}
	end, err := parsePortalTime(stub.End)
	if err != nil {
		return Event{}, &ParseError{Section: "end", Err: err}
	}

	name := joinStrings(info.Courses, ", ")
	if name == "" {
		// entries that are not courses (holidays, meetings) are only known by their title
		name = stub.Title
	}

	return Event{
		Id:          stub.Id,
		Name:        name,
		Start:       start,
		End:         end,
		AllDay:      stub.AllDay,
		Location:    joinStrings(info.Resources, ", "),
		Description: RenderDescription(info, opts),
	}, nil
}

func parsePortalTime(value string) (time.Time, error) {
	t, err := time.Parse(portalTimeLayout, value)
	if err == nil {
		return t, nil
	}
	t, rfcErr := time.Parse(time.RFC3339, value)
	if rfcErr == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
}

func joinStrings[T fmt.Stringer](values []T, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, sep)
}
