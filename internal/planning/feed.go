package planning

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

const productId = "-//liseplanning//EN"

// RenderFeed writes the events as an iCalendar document, stamp is used as the DTSTAMP of every
// event.
func RenderFeed(events []Event, stamp time.Time) []byte {
	cal := ical.NewCalendar()
	cal.SetProductId(productId)
	cal.SetMethod(ical.MethodPublish)
	cal.SetName("Planning Lise")

	for _, e := range events {
		vevent := cal.AddEvent(e.Id)
		vevent.SetDtStampTime(stamp)
		if e.AllDay {
			vevent.SetAllDayStartAt(e.Start)
			vevent.SetAllDayEndAt(e.End)
		} else {
			vevent.SetStartAt(e.Start)
			vevent.SetEndAt(e.End)
		}
		vevent.SetSummary(e.Name)
		if e.Location != "" {
			vevent.SetLocation(e.Location)
		}
		vevent.SetDescription(e.Description)
	}

	return []byte(cal.Serialize())
}
