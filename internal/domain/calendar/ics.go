// Package calendar serializes generated events into an iCalendar file.
package calendar

import (
	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/campuskit/timetable-api/internal/domain/timetable"
)

const productID = "-//campuskit//timetable-api//EN"

// BuildICS renders one VEVENT per event, keeping input order. Each VEVENT
// gets a fresh random UID.
func BuildICS(events []timetable.Event) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		ve := cal.AddEvent(uuid.NewString())
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		ve.SetSummary(ev.Title)
		ve.SetStatus(ics.ObjectStatusConfirmed)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
	}
	return cal.Serialize()
}
