// Package timetable defines the shared entities produced by the extraction
// engine and consumed by the event generator and the export layers.
package timetable

import "time"

// Day is a full English weekday name.
type Day string

const (
	Sunday    Day = "Sunday"
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
)

// Days lists all weekdays in Sunday-first order, matching time.Weekday.
var Days = []Day{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Weekday maps a Day onto the standard library's weekday numbering
// (Sunday = 0). The second return value is false for unknown day names.
func (d Day) Weekday() (time.Weekday, bool) {
	for i, day := range Days {
		if day == d {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// Entry is one detected timetable cell: a course occupying a weekly slot.
// Entries are built once per extraction call and are immutable afterwards;
// they live in memory for the duration of the request and are never persisted.
type Entry struct {
	CourseCode string `json:"course_code" csv:"course_code"`
	Day        Day    `json:"day" csv:"day"`
	StartTime  string `json:"start_time" csv:"start_time"` // "HH:MM", 24-hour, zero-padded
	EndTime    string `json:"end_time" csv:"end_time"`     // "HH:MM", 24-hour, zero-padded
	Location   string `json:"location" csv:"location"`     // may be empty
	Lecturer   string `json:"lecturer,omitempty" csv:"lecturer"`
}

// Event is a single dated occurrence of an Entry, ready for calendar output.
type Event struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
}
