package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/timetable-api/internal/domain/timetable"
)

func TestParseLines(t *testing.T) {
	t.Run("parses a complete schedule line", func(t *testing.T) {
		entries := ParseLines("Monday MATH2201 09:00-10:00 Room A12")

		require.Len(t, entries, 1)
		assert.Equal(t, timetable.Entry{
			CourseCode: "MATH2201",
			Day:        timetable.Monday,
			StartTime:  "09:00",
			EndTime:    "10:00",
			Location:   "Room A12",
		}, entries[0])
	})

	t.Run("normalizes dot-separated times", func(t *testing.T) {
		entries := ParseLines("Tuesday | CS101 | 9.00 - 10.30 | Lab 4")

		require.Len(t, entries, 1)
		assert.Equal(t, "09:00", entries[0].StartTime)
		assert.Equal(t, "10:30", entries[0].EndTime)
		assert.Equal(t, "Lab 4", entries[0].Location)
	})

	t.Run("defaults missing course code to Unknown", func(t *testing.T) {
		entries := ParseLines("Friday 14:00-16:00, Main Hall")

		require.Len(t, entries, 1)
		assert.Equal(t, "Unknown", entries[0].CourseCode)
		assert.Equal(t, "Main Hall", entries[0].Location)
	})

	t.Run("skips lines without a day", func(t *testing.T) {
		entries := ParseLines("MATH2201 09:00-10:00 Room A12")
		assert.Empty(t, entries)
	})

	t.Run("skips lines without a time range", func(t *testing.T) {
		entries := ParseLines("Monday MATH2201 Room A12")
		assert.Empty(t, entries)
	})

	t.Run("absorbs headers and footers around schedule lines", func(t *testing.T) {
		text := `Spring Term Timetable

Monday MATH2201 09:00-10:00 Room A12
Wednesday PHYS1001 11:00-13:00 Lecture Theatre 2

Page 1 of 1`
		entries := ParseLines(text)

		require.Len(t, entries, 2)
		assert.Equal(t, "MATH2201", entries[0].CourseCode)
		assert.Equal(t, "PHYS1001", entries[1].CourseCode)
		assert.Equal(t, timetable.Wednesday, entries[1].Day)
	})

	t.Run("keeps line order", func(t *testing.T) {
		text := "Tuesday CS101 09:00-10:00 Lab 4\nMonday MATH2201 10:00-11:00 Room A12"
		entries := ParseLines(text)

		require.Len(t, entries, 2)
		assert.Equal(t, "CS101", entries[0].CourseCode)
		assert.Equal(t, "MATH2201", entries[1].CourseCode)
	})

	t.Run("omits entries with out-of-range times", func(t *testing.T) {
		entries := ParseLines("Monday MATH2201 25:00-26:00 Room A12")
		assert.Empty(t, entries)
	})

	t.Run("empty input yields no entries", func(t *testing.T) {
		assert.Empty(t, ParseLines(""))
	})
}
