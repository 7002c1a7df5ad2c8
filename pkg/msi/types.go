// ABOUTME: Master Suite Index data model
// ABOUTME: Lineage entries with their latest base and latest overall editions

package msi

// File is the on-disk Master Suite Index.
type File struct {
	GeneratedAt string    `json:"generatedAt,omitempty"`
	Lineages    []Lineage `json:"lineages"`
}

// Lineage lists every known edition of one document series.
type Lineage struct {
	Key          string    `json:"key"`
	LatestBaseID string    `json:"latestBaseId,omitempty"`
	LatestAnyID  string    `json:"latestAnyId,omitempty"`
	Docs         []Edition `json:"docs"`
}

// Edition is one member of a lineage.
type Edition struct {
	DocID           string `json:"docId"`
	PublicationDate string `json:"publicationDate,omitempty"`
	Amendment       bool   `json:"amendment,omitempty"`
}

// Latest is the upgrade target for a lineage.
type Latest struct {
	LineageKey   string
	LatestBaseID string
	LatestAnyID  string
}

// Target returns the preferred upgrade id: the latest base edition, else the latest
// edition of any kind. Empty when the lineage names neither.
func (l Latest) Target() string {
	if l.LatestBaseID != "" {
		return l.LatestBaseID
	}
	return l.LatestAnyID
}
