// ABOUTME: Display label lookups for renderers
// ABOUTME: Labels, titles and statuses by docId, falling back to the id itself

package status

import (
	"regexp"
	"strings"

	"github.com/nainya/refgraph/pkg/document"
)

// DefaultTitleLabelDocTypes are docTypes displayed by title rather than label.
var DefaultTitleLabelDocTypes = []string{"Journal Article", "White Paper", "Book", "Guideline", "Registry"}

var labelDateRE = regexp.MustCompile(`:\s?\d{4}(?:-\d{2}){0,2}.*$`)

// StripLabelDate removes a trailing ":YYYY[-MM[-DD]]" and anything after it.
func StripLabelDate(label string) string {
	return labelDateRE.ReplaceAllString(label, "")
}

// Labels answers display lookups for one run. Lookups never fail: unknown ids fall
// back to the id.
type Labels struct {
	labels   map[string]string
	titles   map[string]string
	statuses map[string]string
}

// NewLabels indexes docs. Documents whose docType is in titleLabelDocTypes (compared
// case-insensitively) are labelled by docTitle.
func NewLabels(docs []*document.Document, titleLabelDocTypes []string) *Labels {
	titleTypes := make(map[string]bool, len(titleLabelDocTypes))
	for _, t := range titleLabelDocTypes {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			titleTypes[t] = true
		}
	}

	l := &Labels{
		labels:   make(map[string]string, len(docs)),
		titles:   make(map[string]string, len(docs)),
		statuses: make(map[string]string, len(docs)),
	}
	for _, d := range docs {
		if titleTypes[strings.ToLower(d.DocType)] {
			l.labels[d.DocID] = firstNonEmpty(d.DocTitle, d.DocLabel, d.DocID)
		} else {
			l.labels[d.DocID] = firstNonEmpty(d.DocLabel, d.DocTitle, d.DocID)
		}
		l.titles[d.DocID] = d.DocTitle
		l.statuses[d.DocID] = firstNonEmpty(d.CurrentStatus, CurrentStatus(d.StatusOrZero()))
	}
	return l
}

// Label returns the display label for docID, or docID when unknown.
func (l *Labels) Label(docID string) string {
	if label, ok := l.labels[docID]; ok {
		return label
	}
	return docID
}

// UndatedLabel returns Label without its trailing date.
func (l *Labels) UndatedLabel(docID string) string {
	return StripLabelDate(l.Label(docID))
}

// Title returns the docTitle, or "" when unknown
func (l *Labels) Title(docID string) string {
	return l.titles[docID]
}

// Status returns the current status, or NotInRegistry.
func (l *Labels) Status(docID string) string {
	if s, ok := l.statuses[docID]; ok {
		return s
	}
	return NotInRegistry
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
