// ABOUTME: Lineage keys grouping every edition of one document series
// ABOUTME: publisher|suite|number|part derived from a base token or a registry record

package lineage

import (
	"regexp"
	"strings"

	"github.com/nainya/refgraph/pkg/document"
)

// Key identifies a document series independent of edition date or amendment.
type Key struct {
	Publisher string
	Suite     string
	Number    string
	Part      string
}

var (
	publisherRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9&-]*$`)
	suiteRE     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)
	// [suite letters][number][number suffix][-part]
	numberRE = regexp.MustCompile(`^([A-Za-z]*)(\d+)([A-Za-z]?)(?:-([A-Za-z0-9]+(?:-[A-Za-z0-9]+)*))?$`)
)

// String renders the key in its join form, e.g. "SMPTE|ST|2067|2".
func (k Key) String() string {
	return k.Publisher + "|" + k.Suite + "|" + k.Number + "|" + k.Part
}

// Label renders a human form, e.g. "ISO 15444-1".
func (k Key) Label() string {
	return LabelFromKey(k.String())
}

// ParseKey splits a key string. Missing segments are left empty.
func ParseKey(s string) Key {
	parts := strings.SplitN(s, "|", 4)
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	return Key{Publisher: parts[0], Suite: parts[1], Number: parts[2], Part: parts[3]}
}

// LabelFromKey renders a key string for display: "ISO||15444|1" -> "ISO 15444-1".
func LabelFromKey(key string) string {
	if key == "" {
		return ""
	}
	k := ParseKey(key)
	var b strings.Builder
	b.WriteString(k.Publisher)
	if k.Suite != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k.Suite)
	}
	if k.Number != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k.Number)
		if k.Part != "" {
			b.WriteString("-" + k.Part)
		}
	}
	return strings.TrimSpace(b.String())
}

// KeyFromDocID derives the lineage key of an identifier. Dated tails and a trailing
// separator are ignored. ok is false when the id does not follow the
// publisher.[suite.]number[-part] convention; callers treat that as "cannot be
// upgraded", not as an error.
func KeyFromDocID(id string) (Key, bool) {
	base := strings.TrimRight(EditionBase(strings.TrimSpace(id)), ".:")
	return parseBase(base)
}

// KeyFromDoc derives the lineage key of a record, falling back to its publisher and
// docNumber/docPart fields when the docId is unparsable.
func KeyFromDoc(d *document.Document) (Key, bool) {
	if d == nil {
		return Key{}, false
	}
	if k, ok := KeyFromDocID(d.DocID); ok {
		return k, true
	}
	if d.Publisher == "" || d.DocNumber == "" {
		return Key{}, false
	}
	num := normalizeNumber(d.DocNumber)
	if num == "" {
		return Key{}, false
	}
	return Key{
		Publisher: strings.ToUpper(strings.TrimSpace(d.Publisher)),
		Number:    num,
		Part:      strings.ToUpper(strings.TrimSpace(d.DocPart)),
	}, true
}

func parseBase(base string) (Key, bool) {
	segs := strings.Split(base, ".")
	if len(segs) < 2 {
		return Key{}, false
	}
	if !publisherRE.MatchString(segs[0]) {
		return Key{}, false
	}

	m := numberRE.FindStringSubmatch(segs[len(segs)-1])
	if m == nil {
		return Key{}, false
	}

	suite := make([]string, 0, len(segs)-1)
	for _, s := range segs[1 : len(segs)-1] {
		if !suiteRE.MatchString(s) {
			return Key{}, false
		}
		suite = append(suite, s)
	}
	if m[1] != "" {
		suite = append(suite, m[1])
	}

	return Key{
		Publisher: strings.ToUpper(segs[0]),
		Suite:     strings.ToUpper(strings.Join(suite, ".")),
		Number:    normalizeNumber(m[2] + m[3]),
		Part:      strings.ToUpper(m[4]),
	}, true
}

// normalizeNumber drops leading zeros so "0429" and "429" share a lineage.
func normalizeNumber(n string) string {
	n = strings.ToUpper(strings.TrimSpace(n))
	trimmed := strings.TrimLeft(n, "0")
	if trimmed == "" || (trimmed[0] < '0' || trimmed[0] > '9') {
		if n != "" && n[0] == '0' {
			return "0" + trimmed
		}
	}
	return trimmed
}
