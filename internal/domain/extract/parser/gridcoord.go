package parser

import (
	"math"
	"sort"
	"strings"

	"github.com/campuskit/timetable-api/internal/domain/extract/pdfsource"
	"github.com/campuskit/timetable-api/internal/domain/timetable"
)

// Distance thresholds, in PDF user-space units, governing grid reconstruction.
const (
	// columnMergeThreshold merges adjacent slot columns whose x differs by
	// less than this; the vendor stacks two time-format variants with
	// sub-pixel horizontal jitter.
	columnMergeThreshold = 40.0

	// A digit fragment completes a partial course code only within this box.
	fragmentMaxDX = 40.0
	fragmentMaxDY = 30.0

	// A room or lecturer token attaches to a course code only within this box.
	detailMaxDX = 140.0
	detailMaxDY = 50.0

	// columnSnapMax is the farthest a course token may sit from the nearest
	// column center and still belong to it.
	columnSnapMax = 60.0
)

// Column is one reconstructed schedule period with its horizontal position.
type Column struct {
	XCenter   float64
	StartTime string
	EndTime   string
}

// DayBand is the vertical strip of the page belonging to one weekday.
// Bands partition the page: the topmost extends to +Inf, the bottommost to
// -Inf, and neighbours meet at the midpoint between their header tokens.
type DayBand struct {
	Day    timetable.Day
	YUpper float64
	YLower float64
}

// contains places a token exactly on a boundary into the band below it.
func (b DayBand) contains(y float64) bool {
	return y > b.YLower && y <= b.YUpper
}

// gridToken is an arena slot: a non-structural token with a stable id.
// Merging never removes tokens mid-iteration; consumed ids are tracked in a
// separate set.
type gridToken struct {
	id   int
	text string
	x, y float64
	kind tokenKind
}

// courseCell is a full course-code token accumulating its associated details.
type courseCell struct {
	text     string
	x, y     float64
	room     string
	lecturer string
}

// ParseCoordinateGrid reconstructs the vendor grid geometrically from
// positioned tokens. It is the fallback of last resort, used when the text
// stream's reading order is unreliable: slot labels become columns by
// x-clustering, day headers become horizontal bands by y-midpoints, and every
// full course-code token is placed by nearest-column match and band
// containment. Room and lecturer tokens attach to their nearest course code.
func ParseCoordinateGrid(tokens []pdfsource.Token) []timetable.Entry {
	if !hasVendorSignature(tokens) {
		return nil
	}

	var slotToks, dayToks []pdfsource.Token
	var arena []gridToken
	for _, t := range tokens {
		switch classifyToken(t.Text) {
		case kindSlot:
			slotToks = append(slotToks, t)
		case kindDay:
			dayToks = append(dayToks, t)
		default:
			arena = append(arena, gridToken{
				id:   len(arena),
				text: t.Text,
				x:    t.X,
				y:    t.Y,
				kind: classifyDetail(t.Text),
			})
		}
	}
	if len(slotToks) == 0 || len(dayToks) == 0 {
		return nil
	}

	columns := buildColumns(slotToks)
	bands := buildDayBands(dayToks)
	if len(columns) == 0 {
		return nil
	}

	consumed := make(map[int]bool)
	courses := collectCourses(arena)
	courses = append(courses, mergePartialCodes(arena, consumed)...)
	associateDetails(arena, consumed, courses)

	var entries []timetable.Entry
	for _, c := range courses {
		col, ok := nearestColumn(columns, c.x)
		if !ok {
			continue
		}
		day, ok := bandFor(bands, c.y)
		if !ok {
			continue
		}
		entries = append(entries, timetable.Entry{
			CourseCode: c.text,
			Day:        day,
			StartTime:  col.StartTime,
			EndTime:    col.EndTime,
			Location:   c.room,
			Lecturer:   c.lecturer,
		})
	}
	return entries
}

func hasVendorSignature(tokens []pdfsource.Token) bool {
	for _, t := range tokens {
		if strings.Contains(t.Text, VendorSignature) {
			return true
		}
	}
	return false
}

// buildColumns clusters slot tokens into schedule periods. Tokens sharing an
// exact x are collapsed to the topmost one first (the vendor renders two
// stacked time labels per column); then adjacent x-values closer than the
// merge threshold join one column, again represented by the topmost token.
func buildColumns(slots []pdfsource.Token) []Column {
	byX := make(map[float64]pdfsource.Token)
	for _, t := range slots {
		if cur, ok := byX[t.X]; !ok || t.Y > cur.Y {
			byX[t.X] = t
		}
	}

	xs := make([]float64, 0, len(byX))
	for x := range byX {
		xs = append(xs, x)
	}
	sort.Float64s(xs)

	var columns []Column
	flush := func(cluster []pdfsource.Token) {
		if len(cluster) == 0 {
			return
		}
		rep := cluster[0]
		for _, t := range cluster[1:] {
			if t.Y > rep.Y {
				rep = t
			}
		}
		m := timeRangeRe.FindStringSubmatch(rep.Text)
		if m == nil {
			return
		}
		if start, end, ok := normalizeRange(m); ok {
			columns = append(columns, Column{XCenter: rep.X, StartTime: start, EndTime: end})
		}
	}

	var cluster []pdfsource.Token
	for i, x := range xs {
		if i > 0 && x-xs[i-1] < columnMergeThreshold {
			cluster = append(cluster, byX[x])
			continue
		}
		flush(cluster)
		cluster = []pdfsource.Token{byX[x]}
	}
	flush(cluster)
	return columns
}

// buildDayBands turns day-header tokens into a full-height partition of the
// page, top of page first (PDF y grows upward).
func buildDayBands(days []pdfsource.Token) []DayBand {
	sorted := append([]pdfsource.Token(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	bands := make([]DayBand, len(sorted))
	for i, t := range sorted {
		upper := math.Inf(1)
		if i > 0 {
			upper = (sorted[i-1].Y + t.Y) / 2
		}
		lower := math.Inf(-1)
		if i < len(sorted)-1 {
			lower = (t.Y + sorted[i+1].Y) / 2
		}
		bands[i] = DayBand{Day: dayAbbrev2[t.Text], YUpper: upper, YLower: lower}
	}
	return bands
}

func collectCourses(arena []gridToken) []*courseCell {
	var courses []*courseCell
	for _, t := range arena {
		if t.kind == kindCourse {
			courses = append(courses, &courseCell{text: t.text, x: t.x, y: t.y})
		}
	}
	return courses
}

// mergePartialCodes pairs each partial code with its nearest unused digit
// fragment and synthesizes the full code at the partial's position. Both
// source tokens are marked consumed so detail association skips them.
func mergePartialCodes(arena []gridToken, consumed map[int]bool) []*courseCell {
	var synthesized []*courseCell
	for _, p := range arena {
		if p.kind != kindPartial || consumed[p.id] {
			continue
		}

		best := -1
		bestDist := math.Inf(1)
		for _, f := range arena {
			if f.kind != kindFragment || consumed[f.id] {
				continue
			}
			if math.Abs(f.x-p.x) >= fragmentMaxDX || math.Abs(f.y-p.y) >= fragmentMaxDY {
				continue
			}
			if d := math.Hypot(f.x-p.x, f.y-p.y); d < bestDist {
				bestDist = d
				best = f.id
			}
		}
		if best < 0 {
			continue
		}

		consumed[p.id] = true
		consumed[best] = true
		synthesized = append(synthesized, &courseCell{
			text: p.text + arena[best].text,
			x:    p.x,
			y:    p.y,
		})
	}
	return synthesized
}

// associateDetails assigns each surviving room and lecturer token to the
// nearest course cell within the detail thresholds. A cell keeps at most one
// room and one lecturer; later candidates for an occupied slot are dropped,
// as are details with no course in range and boilerplate page furniture.
func associateDetails(arena []gridToken, consumed map[int]bool, courses []*courseCell) {
	for _, d := range arena {
		if consumed[d.id] || (d.kind != kindRoom && d.kind != kindLecturer) {
			continue
		}
		if isBoilerplate(d.text) {
			continue
		}

		var best *courseCell
		bestDist := math.Inf(1)
		for _, c := range courses {
			if math.Abs(c.x-d.x) >= detailMaxDX || math.Abs(c.y-d.y) >= detailMaxDY {
				continue
			}
			if dist := math.Hypot(c.x-d.x, c.y-d.y); dist < bestDist {
				bestDist = dist
				best = c
			}
		}
		if best == nil {
			continue
		}

		switch d.kind {
		case kindRoom:
			if best.room == "" {
				best.room = d.text
			}
		case kindLecturer:
			if best.lecturer == "" {
				best.lecturer = d.text
			}
		}
	}
}

// nearestColumn snaps a course token to the closest column center, rejecting
// tokens farther than columnSnapMax from every column.
func nearestColumn(columns []Column, x float64) (Column, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, col := range columns {
		if d := math.Abs(col.XCenter - x); d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 || bestDist > columnSnapMax {
		return Column{}, false
	}
	return columns[best], true
}

func bandFor(bands []DayBand, y float64) (timetable.Day, bool) {
	for _, b := range bands {
		if b.contains(y) {
			return b.Day, true
		}
	}
	return "", false
}
