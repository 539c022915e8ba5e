package planning

import (
	"bytes"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/require"
)

func TestRenderFeed(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	stamp := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	events := []Event{
		{
			Id:          "42",
			Name:        "Algebra",
			Start:       time.Date(2024, 5, 28, 14, 40, 0, 0, paris),
			End:         time.Date(2024, 5, 28, 16, 10, 0, 0, paris),
			Location:    "Amphithéâtre A (AMPHI-A)",
			Description: "Type : Lecture\n",
		},
		{
			Id:     "7",
			Name:   "Férié",
			Start:  time.Date(2024, 5, 1, 0, 0, 0, 0, paris),
			End:    time.Date(2024, 5, 2, 0, 0, 0, 0, paris),
			AllDay: true,
		},
	}

	feed := RenderFeed(events, stamp)
	require.Contains(t, string(feed), "PRODID:-//liseplanning//EN")
	require.Contains(t, string(feed), "METHOD:PUBLISH")
	require.Contains(t, string(feed), "DTSTART;VALUE=DATE:20240501")

	cal, err := ical.ParseCalendar(bytes.NewReader(feed))
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 2)

	first := parsed[0]
	require.Equal(t, "42", first.Id())
	require.Equal(t, "Algebra", first.GetProperty(ical.ComponentPropertySummary).Value)
	require.Equal(t, "Amphithéâtre A (AMPHI-A)", first.GetProperty(ical.ComponentPropertyLocation).Value)
	start, err := first.GetStartAt()
	require.NoError(t, err)
	require.True(t, start.Equal(events[0].Start))
	end, err := first.GetEndAt()
	require.NoError(t, err)
	require.True(t, end.Equal(events[0].End))

	require.Nil(t, parsed[1].GetProperty(ical.ComponentPropertyLocation))
}

func TestRenderFeedDeterministic(t *testing.T) {
	stamp := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	events := []Event{{
		Id:    "1",
		Name:  "Cours",
		Start: time.Date(2024, 5, 28, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 5, 28, 13, 0, 0, 0, time.UTC),
	}}
	require.Equal(t, RenderFeed(events, stamp), RenderFeed(events, stamp))
}
