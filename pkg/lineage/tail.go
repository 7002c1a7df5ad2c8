// ABOUTME: Date-tail classification for document identifiers
// ABOUTME: Table of accepted edition date shapes and the stripping rules built on it

package lineage

import (
	"regexp"
	"strings"
)

// TailShape names an accepted trailing date form.
type TailShape string

const (
	TailNone         TailShape = ""
	TailCompact      TailShape = "YYYYMMDD"
	TailYear         TailShape = "YYYY"
	TailYearMonth    TailShape = "YYYY-MM"
	TailYearMonthDay TailShape = "YYYY-MM-DD"
)

const (
	yearPat  = `(?:19|20)\d{2}`
	monthPat = `(?:0[1-9]|1[0-2])`
	dayPat   = `(?:0[1-9]|[12]\d|3[01])`
)

// tailShapes is checked in order; longer shapes come first so "2020-09-01" is never
// read as a bare year.
var tailShapes = []struct {
	shape TailShape
	re    *regexp.Regexp
}{
	{TailYearMonthDay, regexp.MustCompile(`[.:]` + yearPat + `-` + monthPat + `-` + dayPat + `$`)},
	{TailYearMonth, regexp.MustCompile(`[.:]` + yearPat + `-` + monthPat + `$`)},
	{TailCompact, regexp.MustCompile(`[.:]` + yearPat + monthPat + dayPat + `$`)},
	{TailYear, regexp.MustCompile(`[.:]` + yearPat + `$`)},
}

// editionTailRE matches from the first dated segment to the end, including an
// amendment suffix and any later dated segments ("…2020Am1.2021").
var editionTailRE = regexp.MustCompile(
	`\.(?:` + yearPat + monthPat + dayPat + `|` + yearPat + `(?:-` + monthPat + `(?:-` + dayPat + `)?)?)` +
		`(?:[A-Za-z][A-Za-z0-9]*)?(?:\..*)?$`)

var amendmentRE = regexp.MustCompile(`(?i)\.` + yearPat + `[0-9-]*am\d+`)

var (
	bareYearSegRE = regexp.MustCompile(`^\.` + yearPat + `(?:\.|$)`)
	lettersRE     = regexp.MustCompile(`^[A-Za-z]+$`)
)

// yearIsNumber reports whether a year-shaped segment is the document number itself,
// as in "IETF.RFC.2046" or "ITU.R.BT.2020": the segment before it is a bare suite
// token and withSeg parses as a lineage key.
func yearIsNumber(prefix, withSeg string) bool {
	last := prefix[strings.LastIndexByte(prefix, '.')+1:]
	if !lettersRE.MatchString(last) {
		return false
	}
	_, ok := parseBase(withSeg)
	return ok
}

// ClassifyTail reports which date shape, if any, ends id, and the id with that
// tail (and its separator) removed.
func ClassifyTail(id string) (TailShape, string) {
	for _, ts := range tailShapes {
		if loc := ts.re.FindStringIndex(id); loc != nil && loc[0] > 0 {
			if ts.shape == TailYear && id[loc[0]] == '.' && yearIsNumber(id[:loc[0]], id) {
				return TailNone, id
			}
			return ts.shape, id[:loc[0]]
		}
	}
	return TailNone, id
}

// StripDatedTail removes one trailing date from a reference id. dated is false when
// no tail was present, in which case base == id.
func StripDatedTail(id string) (base string, dated bool) {
	shape, base := ClassifyTail(id)
	return base, shape != TailNone
}

// IsUndated reports whether id names no particular edition: it has no date tail and
// no dated amendment segment such as ".2016Am1".
func IsUndated(id string) bool {
	_, dated := StripDatedTail(id)
	return !dated && EditionBase(id) == id
}

// EditionBase strips everything from the first dated segment onward, so every
// edition and amendment of a document maps to the same base token.
func EditionBase(id string) string {
	from := 0
	for {
		loc := editionTailRE.FindStringIndex(id[from:])
		if loc == nil {
			return id
		}
		start := from + loc[0]
		if start == 0 {
			return id
		}
		if bareYearSegRE.MatchString(id[start:]) && yearIsNumber(id[:start], id[:start+5]) {
			from = start + 5
			continue
		}
		return id[:start]
	}
}

// IsAmendment reports whether id names an amendment rather than a base edition.
func IsAmendment(id string) bool {
	return amendmentRE.MatchString(id)
}
