// ABOUTME: Registry document data model
// ABOUTME: Raw author-declared fields plus the derived fields attached during a build

package document

// Document is one registry record. Fields the build does not interpret are kept in
// Extra and written back out unchanged.
type Document struct {
	DocID           string      `json:"docId"`
	DocType         string      `json:"docType,omitempty"`
	DocLabel        string      `json:"docLabel,omitempty"`
	DocTitle        string      `json:"docTitle,omitempty"`
	Publisher       string      `json:"publisher,omitempty"`
	PublicationDate string      `json:"publicationDate,omitempty"`
	Href            string      `json:"href,omitempty"`
	DocNumber       string      `json:"docNumber,omitempty"`
	DocPart         string      `json:"docPart,omitempty"`
	Status          *Status     `json:"status,omitempty"`
	References      *References `json:"references,omitempty"`

	// Derived during a build, never read back from the registry.
	ReferencesResolved *ResolvedReferences `json:"referencesResolved,omitempty"`
	ReferencedBy       []string            `json:"referencedBy,omitempty"`
	ReferenceTree      []string            `json:"referenceTree,omitempty"`
	DocDependancy      bool                `json:"docDependancy"`
	CurrentStatus      string              `json:"currentStatus,omitempty"`
	DocTypeAbr         string              `json:"docTypeAbr,omitempty"`

	// Lineage annotations, present only when the MSI knows the document's lineage.
	MsiLatestAny  string       `json:"msiLatestAny,omitempty"`
	MsiLatestBase string       `json:"msiLatestBase,omitempty"`
	IsLatestAny   *bool        `json:"isLatestAny,omitempty"`
	IsLatestBase  *bool        `json:"isLatestBase,omitempty"`
	DocBase       string       `json:"docBase,omitempty"`
	DocBaseLabel  string       `json:"docBaseLabel,omitempty"`
	DocSuite      []SuiteEntry `json:"docSuite,omitempty"`

	Extra map[string]RawField `json:"-"`
}

// Status holds the structured status flags. Exactly one of Active, Draft, Withdrawn,
// Superseded or Unknown is the primary state; the rest are modifiers.
type Status struct {
	Active      bool   `json:"active,omitempty"`
	Draft       bool   `json:"draft,omitempty"`
	Withdrawn   bool   `json:"withdrawn,omitempty"`
	Superseded  bool   `json:"superseded,omitempty"`
	Unknown     bool   `json:"unknown,omitempty"`
	Versionless bool   `json:"versionless,omitempty"`
	Amended     bool   `json:"amended,omitempty"`
	Stabilized  bool   `json:"stabilized,omitempty"`
	Reaffirmed  bool   `json:"reaffirmed,omitempty"`
	PublicCD    bool   `json:"publicCd,omitempty"`
	StatusNote  string `json:"statusNote,omitempty"`

	// LatestVersion is derived from the MSI.
	LatestVersion *bool `json:"latestVersion,omitempty"`

	Extra map[string]RawField `json:"-"`
}

// References are the author-declared reference identifiers. They are never modified
// by a build.
type References struct {
	Normative     []string `json:"normative,omitempty"`
	Bibliographic []string `json:"bibliographic,omitempty"`

	Extra map[string]RawField `json:"-"`
}

// ResolvedRef is a reference after undated upgrade.
type ResolvedRef struct {
	ID      string `json:"id"`
	Undated bool   `json:"undated,omitempty"`
}

// ResolvedReferences parallels References with resolved targets.
type ResolvedReferences struct {
	Normative     []ResolvedRef `json:"normative,omitempty"`
	Bibliographic []ResolvedRef `json:"bibliographic,omitempty"`
}

// IDs returns the resolved ids, normative first.
func (r *ResolvedReferences) IDs() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Normative)+len(r.Bibliographic))
	for _, ref := range r.Normative {
		out = append(out, ref.ID)
	}
	for _, ref := range r.Bibliographic {
		out = append(out, ref.ID)
	}
	return out
}

// SuiteEntry is a compact view of one edition in a document's lineage.
type SuiteEntry struct {
	DocID           string `json:"docId"`
	DocLabel        string `json:"docLabel,omitempty"`
	Href            string `json:"href,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty"`
	Status          Status `json:"status"`
	IsLatestBase    bool   `json:"isLatestBase"`
	IsNewestInBase  bool   `json:"isNewestInBase"`
}

// RefCount returns the number of declared references of both kinds.
func (d *Document) RefCount() int {
	if d.References == nil {
		return 0
	}
	return len(d.References.Normative) + len(d.References.Bibliographic)
}

// StatusOrZero returns the status flags, or a zero Status when none are set.
func (d *Document) StatusOrZero() Status {
	if d.Status == nil {
		return Status{}
	}
	return *d.Status
}
