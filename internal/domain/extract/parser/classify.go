package parser

import (
	"github.com/cloudflare/ahocorasick"
)

// tokenKind is the single category assigned to a positioned token. The
// classifier is a tagged-variant function rather than independent boolean
// checks so the precedence stays exhaustive and auditable.
type tokenKind int

const (
	kindDiscard tokenKind = iota
	kindSlot              // time-range label of a schedule period
	kindDay               // two-letter day header
	kindRoom
	kindCourse   // complete course code
	kindPartial  // course code split before its digits
	kindFragment // pure 1-4 digit token, the other half of a split code
	kindLecturer
)

// boilerplateMarkers are substrings that identify page furniture emitted by
// the vendor export: the signature phrase itself plus institution headers.
// Room and lecturer candidates containing any of them are discarded before
// detail association.
var boilerplateMarkers = []string{
	VendorSignature,
	"University",
	"Faculty",
	"Timetable",
	"Semester",
}

// boilerplateMatcher matches all markers in a single pass.
var boilerplateMatcher = ahocorasick.NewStringMatcher(boilerplateMarkers)

func isBoilerplate(text string) bool {
	return len(boilerplateMatcher.Match([]byte(text))) > 0
}

// classifyToken is the first-pass classifier: time-range labels and day
// headers are structural, everything else is deferred to classifyDetail.
func classifyToken(text string) tokenKind {
	if timeRangeRe.MatchString(text) {
		return kindSlot
	}
	if _, ok := dayAbbrev2[text]; ok {
		return kindDay
	}
	return kindDiscard
}

// classifyDetail assigns exactly one category to a non-structural token.
// Precedence: room > course code > partial code > digit fragment > lecturer.
func classifyDetail(text string) tokenKind {
	switch {
	case isRoom(text):
		return kindRoom
	case strictCourseRe.MatchString(text):
		return kindCourse
	case partialCodeRe.MatchString(text) && len(text) >= 3:
		return kindPartial
	case digitFragmentRe.MatchString(text):
		return kindFragment
	case hasUpper(text) && hasLower(text):
		return kindLecturer
	}
	return kindDiscard
}
