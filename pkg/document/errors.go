// ABOUTME: Structural registry errors
// ABOUTME: Any of these aborts a build before resolution starts

package document

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed indicates the registry file is not a JSON array of records
	ErrMalformed = errors.New("document: malformed registry")

	// ErrMissingID indicates a record without a docId
	ErrMissingID = errors.New("document: missing docId")

	// ErrDuplicateID indicates two records share a docId
	ErrDuplicateID = errors.New("document: duplicate docId")

	// ErrNotSorted indicates the registry is not strictly ascending by docId
	ErrNotSorted = errors.New("document: registry not sorted")
)

// ValidationError reports the record that broke a registry invariant.
type ValidationError struct {
	Registry string
	DocID    string
	PrevID   string
	Index    int
	Err      error
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNotSorted):
		return fmt.Sprintf("%s registry sort order: %q must sort before %q (record %d)", e.Registry, e.DocID, e.PrevID, e.Index)
	case errors.Is(e.Err, ErrDuplicateID):
		return fmt.Sprintf("%s registry key %q is duplicated (record %d)", e.Registry, e.DocID, e.Index)
	default:
		return fmt.Sprintf("%s registry record %d: %v", e.Registry, e.Index, e.Err)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
