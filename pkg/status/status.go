// ABOUTME: Current-status strings derived from structured status flags
// ABOUTME: Ordered primary states with their modifier tables, plus docType abbreviations

package status

import (
	"strings"

	"github.com/nainya/refgraph/pkg/document"
)

type flag func(s document.Status) bool

type modifier struct {
	label string
	set   flag
}

// A modifier group contributes at most one label: the first whose flag is set.
type modifierGroup []modifier

type primaryState struct {
	label     string
	set       flag
	modifiers []modifierGroup
}

var primaryStates = []primaryState{
	{
		label: "Active",
		set:   func(s document.Status) bool { return s.Active },
		modifiers: []modifierGroup{
			{{"Versionless", func(s document.Status) bool { return s.Versionless }}},
			{{"Amended", func(s document.Status) bool { return s.Amended }}},
			{
				{"Stabilized", func(s document.Status) bool { return s.Stabilized }},
				{"Reaffirmed", func(s document.Status) bool { return s.Reaffirmed }},
			},
		},
	},
	{
		label: "Draft",
		set:   func(s document.Status) bool { return s.Draft },
		modifiers: []modifierGroup{
			{{"Public CD", func(s document.Status) bool { return s.PublicCD }}},
		},
	},
	{label: "Withdrawn", set: func(s document.Status) bool { return s.Withdrawn }},
	{label: "Superseded", set: func(s document.Status) bool { return s.Superseded }},
	{label: "Unknown", set: func(s document.Status) bool { return s.Unknown }},
}

// Unknown is reported when no primary state flag is set.
const Unknown = "Unknown"

// NotInRegistry is reported for ids the registry does not contain.
const NotInRegistry = "NOT IN REGISTRY"

// CurrentStatus renders the human status, e.g. "Active, Amended" or "Draft, Public CD".
// A trailing "*" marks a status note.
func CurrentStatus(s document.Status) string {
	parts := []string{Unknown}
	for _, ps := range primaryStates {
		if !ps.set(s) {
			continue
		}
		parts = []string{ps.label}
		for _, group := range ps.modifiers {
			for _, m := range group {
				if m.set(s) {
					parts = append(parts, m.label)
					break
				}
			}
		}
		break
	}

	out := strings.Join(parts, ", ")
	if s.StatusNote != "" {
		out += "*"
	}
	return out
}

// docTypeAbbreviations maps publisher -> docType -> abbreviation.
var docTypeAbbreviations = map[string]map[string]string{
	"SMPTE": {
		"Administrative Guideline":       "AG",
		"Advisory Note":                  "AN",
		"Engineering Guideline":          "EG",
		"Engineering Report":             "ER",
		"Operations Manual":              "OM",
		"Overview Document":              "EG",
		"Recommended Practice":           "RP",
		"Registered Disclosure Document": "RDD",
		"Specification":                  "TSP",
		"Standard":                       "ST",
		"Study Group Report":             "SGR",
	},
}

// DocTypeAbbreviation returns the publisher's short docType form. ok is false when
// the publisher has no table; a known publisher with an unlisted docType yields "".
func DocTypeAbbreviation(publisher, docType string) (abbr string, ok bool) {
	table, ok := docTypeAbbreviations[publisher]
	if !ok {
		return "", false
	}
	return table[docType], true
}
