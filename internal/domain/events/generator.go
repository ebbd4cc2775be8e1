// Package events expands timetable entries into dated weekly occurrences.
package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/campuskit/timetable-api/internal/domain/timetable"
)

// DefaultEndDate bounds expansion when the caller gives no term end.
const DefaultEndDate = "2026-03-31"

var (
	ErrInvalidDayName    = errors.New("invalid day name")
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidDateRange  = errors.New("end date must be after start date")
)

// Generator expands entries between a term start and end date.
type Generator struct {
	defaultEnd time.Time
}

// NewGenerator parses the configured default term end ("YYYY-MM-DD").
func NewGenerator(defaultEnd string) (*Generator, error) {
	if defaultEnd == "" {
		defaultEnd = DefaultEndDate
	}
	end, err := time.Parse("2006-01-02", defaultEnd)
	if err != nil {
		return nil, fmt.Errorf("parse default term end: %w", err)
	}
	return &Generator{defaultEnd: end}, nil
}

// GenerateAll expands every entry. A zero start means today; a zero end means
// the configured default term end.
func (g *Generator) GenerateAll(entries []timetable.Entry, start, end time.Time) ([]timetable.Event, error) {
	var events []timetable.Event
	for _, entry := range entries {
		expanded, err := g.Generate(entry, start, end)
		if err != nil {
			return nil, err
		}
		events = append(events, expanded...)
	}
	return events, nil
}

// Generate returns every weekly occurrence of one entry, in date order.
func (g *Generator) Generate(entry timetable.Entry, start, end time.Time) ([]timetable.Event, error) {
	weekday, ok := entry.Day.Weekday()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDayName, entry.Day)
	}

	startH, startM, err := parseClock(entry.StartTime)
	if err != nil {
		return nil, err
	}
	endH, endM, err := parseClock(entry.EndTime)
	if err != nil {
		return nil, err
	}

	if start.IsZero() {
		now := time.Now()
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	}
	if end.IsZero() {
		end = g.defaultEnd
	}
	if !end.After(start) {
		return nil, ErrInvalidDateRange
	}

	var events []timetable.Event
	for current := nextWeekday(start, weekday); !current.After(end); current = current.AddDate(0, 0, 7) {
		events = append(events, timetable.Event{
			Title:       entry.CourseCode,
			Start:       at(current, startH, startM),
			End:         at(current, endH, endM),
			Location:    entry.Location,
			Description: entry.Lecturer,
		})
	}
	return events, nil
}

// nextWeekday returns the first occurrence of the target weekday on or after
// the given date.
func nextWeekday(from time.Time, target time.Weekday) time.Time {
	diff := (int(target) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, diff)
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return t.Hour(), t.Minute(), nil
}
