// Package parser implements the timetable extraction cascade: three
// independent heuristic parsers that recover ordered timetable entries from
// raw PDF text or positioned tokens. Each parser is a pure function that
// returns an empty result rather than an error when it cannot recognize the
// document; escalation between parsers is the orchestrator's job.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/campuskit/timetable-api/internal/domain/timetable"
)

// VendorSignature identifies the fixed-layout grid export the two grid
// parsers understand. It appears as a literal string in the document text.
const VendorSignature = "Untis"

var (
	// timeRangeRe matches "HH:MM-HH:MM" with '.' as an alternate separator
	// and an optional en-dash between the two times.
	timeRangeRe = regexp.MustCompile(`(\d{1,2}[:.]\d{2})\s*[-–]\s*(\d{1,2}[:.]\d{2})`)

	// courseCodeRe is the lenient form used on free text lines; the vendor
	// sometimes renders a space between letters and digits.
	courseCodeRe = regexp.MustCompile(`[A-Z]{2,5}\s?\d{3,4}[A-Z]?`)

	// strictCourseRe matches a complete course code token with no internal
	// whitespace, as emitted by the grid exports.
	strictCourseRe = regexp.MustCompile(`^[A-Z]{2,5}\d{3,4}[A-Z]?$`)

	// partialCodeRe matches the letter-heavy half of a course code that the
	// PDF split into two fragments.
	partialCodeRe = regexp.MustCompile(`^[A-Z]{2,5}\d{0,2}$`)

	digitFragmentRe = regexp.MustCompile(`^\d{1,4}$`)

	// roomRe captures a letter prefix followed by a 2-4 digit room number.
	roomRe = regexp.MustCompile(`^([A-Z][A-Za-z]*)(\d{2,4})$`)

	bareRoomRe = regexp.MustCompile(`^\d{2,4}$`)
)

// dayLiterals holds, per weekday, the literals recognized in document text.
// Detection iterates in Sunday-to-Saturday order and the first hit wins.
var dayLiterals = []struct {
	day     timetable.Day
	name    string
	abbrev3 string
}{
	{timetable.Sunday, "Sunday", "Sun"},
	{timetable.Monday, "Monday", "Mon"},
	{timetable.Tuesday, "Tuesday", "Tue"},
	{timetable.Wednesday, "Wednesday", "Wed"},
	{timetable.Thursday, "Thursday", "Thu"},
	{timetable.Friday, "Friday", "Fri"},
	{timetable.Saturday, "Saturday", "Sat"},
}

// dayAbbrev2 maps the vendor's two-letter day headers.
var dayAbbrev2 = map[string]timetable.Day{
	"Su": timetable.Sunday,
	"Mo": timetable.Monday,
	"Tu": timetable.Tuesday,
	"We": timetable.Wednesday,
	"Th": timetable.Thursday,
	"Fr": timetable.Friday,
	"Sa": timetable.Saturday,
}

// NormalizeTime converts "9.00" or "09:00" into zero-padded "HH:MM".
// It reports false for anything without a fixed two-digit minute or with an
// out-of-range hour or minute, so callers can omit the entry instead of
// emitting a syntactically invalid time.
func NormalizeTime(raw string) (string, bool) {
	cleaned := strings.Replace(strings.TrimSpace(raw), ".", ":", 1)
	parts := strings.Split(cleaned, ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return "", false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", false
	}
	if h > 23 || m > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}

// normalizeRange normalizes both halves of a time-range regex match.
func normalizeRange(m []string) (start, end string, ok bool) {
	start, ok = NormalizeTime(m[1])
	if !ok {
		return "", "", false
	}
	end, ok = NormalizeTime(m[2])
	if !ok {
		return "", "", false
	}
	return start, end, true
}

// detectDay finds the first weekday whose full name or 3-letter abbreviation
// appears literally in the text. It also returns the matched literal so the
// caller can strip it when deriving a location by elimination.
func detectDay(text string) (timetable.Day, string, bool) {
	for _, d := range dayLiterals {
		if strings.Contains(text, d.name) {
			return d.day, d.name, true
		}
		if strings.Contains(text, d.abbrev3) {
			return d.day, d.abbrev3, true
		}
	}
	return "", "", false
}

// isRoom reports whether a token looks like a room designator: a letter
// prefix plus a 2-4 digit number, where the prefix either contains a
// lowercase letter ("Rm", "Lab") or is at most two characters ("A", "AB").
// Longer all-uppercase prefixes are course codes, not rooms.
func isRoom(text string) bool {
	m := roomRe.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	prefix := m[1]
	return hasLower(prefix) || len(prefix) <= 2
}

func hasUpper(s string) bool {
	return strings.ContainsFunc(s, unicode.IsUpper)
}

func hasLower(s string) bool {
	return strings.ContainsFunc(s, unicode.IsLower)
}

// splitLines returns the non-empty trimmed lines of a text block.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
