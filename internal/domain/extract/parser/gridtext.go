package parser

import (
	"strings"

	"github.com/campuskit/timetable-api/internal/domain/timetable"
)

// ParseTextGrid handles the vendor grid export when only linear text is
// available. The export lists the course cells first, then the day header
// row, then the time-slot column; with D day headers and S slots the i-th
// course block lands at day i mod D, slot i/D.
//
// The row-major assumption is a best-effort fallback: nothing in the PDF
// text stream guarantees reading order, so cells can land in the wrong
// day/slot on documents whose stream deviates from strict row-major order.
// The coordinate parser exists for exactly those documents.
func ParseTextGrid(text string) []timetable.Entry {
	if !strings.Contains(text, VendorSignature) {
		return nil
	}

	lines := splitLines(text)

	type courseBlock struct {
		code     string
		location string
	}

	var (
		days   []timetable.Day
		slots  [][2]string
		blocks []courseBlock
	)

	for i, line := range lines {
		if day, ok := dayAbbrev2[line]; ok {
			days = append(days, day)
			continue
		}

		// Slot rows only count once the day header row has begun; time
		// ranges above it belong to page furniture.
		if m := timeRangeRe.FindStringSubmatch(line); m != nil && len(days) > 0 {
			if start, end, ok := normalizeRange(m); ok {
				slots = append(slots, [2]string{start, end})
			}
			continue
		}

		if len(days) == 0 && strictCourseRe.MatchString(line) {
			block := courseBlock{code: line}
			if i+1 < len(lines) {
				block.location = guessCellLocation(lines[i+1])
			}
			blocks = append(blocks, block)
		}
	}

	if len(days) == 0 || len(slots) == 0 {
		return nil
	}

	var entries []timetable.Entry
	for i, block := range blocks {
		if i >= len(days)*len(slots) {
			break
		}
		slot := slots[i/len(days)]
		entries = append(entries, timetable.Entry{
			CourseCode: block.code,
			Day:        days[i%len(days)],
			StartTime:  slot[0],
			EndTime:    slot[1],
			Location:   block.location,
		})
	}
	return entries
}

// guessCellLocation reads a room guess from the line following a course cell:
// either a trailing room-like token or a bare 2-4 digit room number.
func guessCellLocation(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	if isRoom(last) || bareRoomRe.MatchString(last) {
		return last
	}
	return ""
}
