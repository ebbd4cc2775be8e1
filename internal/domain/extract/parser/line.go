package parser

import (
	"strings"

	"github.com/campuskit/timetable-api/internal/domain/timetable"
)

// Location fragments outside this length window are headers, codes, or noise.
const (
	minLocationLen = 1
	maxLocationLen = 60
)

// ParseLines scans plain text line-by-line for entries of the loose form
// "<Day> <CODE> HH:MM-HH:MM <Location>". A line must carry both a time range
// and a recognizable day; anything else (headers, footers, page furniture) is
// skipped silently so one malformed row never aborts the rest of the
// document. Entries come back in line order.
func ParseLines(text string) []timetable.Entry {
	var entries []timetable.Entry
	for _, line := range splitLines(text) {
		timeMatch := timeRangeRe.FindStringSubmatch(line)
		if timeMatch == nil {
			continue
		}

		day, dayLiteral, ok := detectDay(line)
		if !ok {
			continue
		}

		start, end, ok := normalizeRange(timeMatch)
		if !ok {
			continue
		}

		courseMatch := courseCodeRe.FindString(line)
		courseCode := strings.TrimSpace(courseMatch)
		if courseCode == "" {
			courseCode = "Unknown"
		}

		entries = append(entries, timetable.Entry{
			CourseCode: courseCode,
			Day:        day,
			StartTime:  start,
			EndTime:    end,
			Location:   guessLocationByElimination(line, timeMatch[0], courseMatch, dayLiteral),
		})
	}
	return entries
}

// guessLocationByElimination removes the matched time, course code, and day
// literal from the line, splits the rest on common separators, and keeps the
// last fragment of plausible length. Returns "" when nothing survives.
func guessLocationByElimination(line, timeLit, courseLit, dayLit string) string {
	rest := strings.Replace(line, timeLit, "", 1)
	if courseLit != "" {
		rest = strings.Replace(rest, courseLit, "", 1)
	}
	rest = strings.Replace(rest, dayLit, "", 1)

	location := ""
	for _, part := range strings.FieldsFunc(rest, func(r rune) bool {
		return r == '|' || r == ',' || r == ';'
	}) {
		part = strings.TrimSpace(part)
		if len(part) > minLocationLen && len(part) < maxLocationLen {
			location = part
		}
	}
	return location
}
