// ABOUTME: Provenance check for registry fields
// ABOUTME: Every field is expected to carry a sibling "<field>$meta" member

package document

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MetaSuffix marks a provenance member, e.g. "docTitle$meta".
const MetaSuffix = "$meta"

// containerFields hold grouped fields; at the top level their members are checked
// but the container itself needs no $meta.
var containerFields = map[string]bool{
	"status":     true,
	"references": true,
	"workInfo":   true,
}

// MissingMeta names a field without provenance
type MissingMeta struct {
	DocID string
	Path  string
}

// CheckMeta reports every field of the raw registry that has no sibling $meta
// member. Nested objects are walked; arrays are not. Results follow registry order,
// then field path.
func CheckMeta(data []byte) ([]MissingMeta, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var out []MissingMeta
	for _, rec := range records {
		docID, _ := rec["docId"].(string)
		if docID == "" {
			docID = "(unknown)"
		}
		out = checkMeta(out, rec, "", docID)
	}
	return out, nil
}

func checkMeta(out []MissingMeta, obj map[string]any, path, docID string) []MissingMeta {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if strings.HasSuffix(key, MetaSuffix) {
			continue
		}
		nested, isObj := obj[key].(map[string]any)

		if path == "" && containerFields[key] {
			if isObj {
				out = checkMeta(out, nested, key+".", docID)
			}
			continue
		}

		if _, ok := obj[key+MetaSuffix]; !ok {
			out = append(out, MissingMeta{DocID: docID, Path: path + key})
		}
		if isObj {
			out = checkMeta(out, nested, path+key+".", docID)
		}
	}
	return out
}
