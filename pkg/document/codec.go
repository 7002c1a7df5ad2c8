// ABOUTME: JSON codec that keeps unknown registry fields
// ABOUTME: Known fields decode into structs; everything else round-trips through Extra

package document

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// RawField is an undecoded JSON value carried through a build.
type RawField = json.RawMessage

var knownFieldCache sync.Map // reflect.Type -> map[string]bool

// knownFields returns the JSON names declared by the struct tags of t.
func knownFields(t reflect.Type) map[string]bool {
	if cached, ok := knownFieldCache.Load(t); ok {
		return cached.(map[string]bool)
	}
	names := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		names[name] = true
	}
	knownFieldCache.Store(t, names)
	return names
}

// decodeExtra returns the members of data whose names are not declared on t.
func decodeExtra(data []byte, t reflect.Type) (map[string]RawField, error) {
	var all map[string]RawField
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	known := knownFields(t)
	var extra map[string]RawField
	for k, v := range all {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]RawField)
		}
		extra[k] = v
	}
	return extra, nil
}

// encodeWithExtra marshals v and merges extra members that v does not already set.
func encodeWithExtra(v any, extra map[string]RawField) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var merged map[string]RawField
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = raw
		}
	}
	return json.Marshal(merged)
}

type documentAlias Document
type statusAlias Status
type referencesAlias References

// UnmarshalJSON decodes a registry record.
func (d *Document) UnmarshalJSON(data []byte) error {
	var a documentAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := decodeExtra(data, reflect.TypeOf(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	*d = Document(a)
	return nil
}

// MarshalJSON encodes a record with its derived fields and untouched extras.
func (d Document) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(documentAlias(d), d.Extra)
}

// UnmarshalJSON decodes status flags.
func (s *Status) UnmarshalJSON(data []byte) error {
	var a statusAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := decodeExtra(data, reflect.TypeOf(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	*s = Status(a)
	return nil
}

// MarshalJSON encodes status flags.
func (s Status) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(statusAlias(s), s.Extra)
}

// UnmarshalJSON decodes declared references.
func (r *References) UnmarshalJSON(data []byte) error {
	var a referencesAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := decodeExtra(data, reflect.TypeOf(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	*r = References(a)
	return nil
}

// MarshalJSON encodes declared references.
func (r References) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(referencesAlias(r), r.Extra)
}
