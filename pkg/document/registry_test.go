package document

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docs(ids ...string) []*Document {
	out := make([]*Document, len(ids))
	for i, id := range ids {
		out[i] = &Document{DocID: id}
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		wantErr error
	}{
		{"empty", nil, nil},
		{"sorted", []string{"AES.1", "IEC.2", "SMPTE.ST1"}, nil},
		{"case-insensitive order", []string{"abc", "ABD", "b"}, nil},
		{"unsorted", []string{"B", "A"}, ErrNotSorted},
		{"equal under case folding", []string{"Abc", "aBc"}, ErrNotSorted},
		{"duplicate", []string{"A", "B", "A"}, ErrDuplicateID},
		{"missing id", []string{"A", ""}, ErrMissingID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(docs(tt.ids...), "documents")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "documents", ve.Registry)
		})
	}
}

func TestValidateSortErrorNamesBothKeys(t *testing.T) {
	err := Validate(docs("SMPTE.ST1", "SMPTE.ST2", "SMPTE.ST10"), "documents")
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "SMPTE.ST2", ve.PrevID)
	assert.Equal(t, "SMPTE.ST10", ve.DocID)
	assert.Equal(t, 2, ve.Index)
	assert.Contains(t, err.Error(), `"SMPTE.ST10" must sort before "SMPTE.ST2"`)
}

func TestParse(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		got, err := Parse([]byte(`[{"docId":"A"},{"docId":"B","references":{"normative":["A"]}}]`))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, []string{"A"}, got[1].References.Normative)
		assert.Equal(t, 1, got[1].RefCount())
		assert.Equal(t, 0, got[0].RefCount())
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := Parse([]byte(`{"docId":"A"}`))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("null record", func(t *testing.T) {
		_, err := Parse([]byte(`[{"docId":"A"},null]`))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := Parse([]byte(`[{"docId":`))
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "documents.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"docId":"X.1"}]`), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "X.1", got[0].DocID)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestRegistryLookups(t *testing.T) {
	list := []*Document{
		{DocID: "ISO.15444-1.2019", DocLabel: "ISO 15444-1:2019", DocTitle: "JPEG 2000 core coding system"},
		{DocID: "SMPTE.ST2067-2.2020", DocLabel: "SMPTE ST 2067-2:2020", DocTitle: "Interoperable Master Format Core Constraints"},
		{DocID: "SMPTE.ST2067-3.2020", DocLabel: "SMPTE ST 2067-3:2020", DocTitle: "Interoperable Master Format Composition Playlist"},
	}
	reg, err := NewRegistry("documents", list)
	require.NoError(t, err)

	assert.Equal(t, "documents", reg.Name())
	assert.Equal(t, 3, reg.Len())
	assert.True(t, reg.Has("ISO.15444-1.2019"))
	assert.False(t, reg.Has("iso.15444-1.2019"))

	d, ok := reg.Get("SMPTE.ST2067-3.2020")
	require.True(t, ok)
	assert.Same(t, list[2], d)

	assert.Equal(t, []string{"ISO.15444-1.2019", "SMPTE.ST2067-2.2020", "SMPTE.ST2067-3.2020"}, reg.IDs())

	found := reg.Find("master format", 0)
	assert.Len(t, found, 2)
	assert.Len(t, reg.Find("master format", 1), 1)
	assert.Len(t, reg.Find("playlist st2067", 0), 1)
	assert.Empty(t, reg.Find("   ", 0))
}

func TestNewRegistryRejectsInvalid(t *testing.T) {
	_, err := NewRegistry("documents", docs("B", "A"))
	assert.ErrorIs(t, err, ErrNotSorted)
}

func TestExtraFieldsRoundTrip(t *testing.T) {
	in := `{"docId":"A.1","docType":"Standard","keywords":["x","y"],` +
		`"status":{"active":true,"reviewPeriod":"5y"},` +
		`"references":{"normative":["B"],"informative":["C"]}}`

	var d Document
	require.NoError(t, json.Unmarshal([]byte(in), &d))
	require.Contains(t, d.Extra, "keywords")
	require.Contains(t, d.Status.Extra, "reviewPeriod")
	require.Contains(t, d.References.Extra, "informative")

	out, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, []interface{}{"x", "y"}, got["keywords"])
	assert.Equal(t, "5y", got["status"].(map[string]interface{})["reviewPeriod"])
	assert.Equal(t, []interface{}{"C"}, got["references"].(map[string]interface{})["informative"])
	assert.Equal(t, false, got["docDependancy"])
}

func TestExtraDoesNotOverrideKnownFields(t *testing.T) {
	d := Document{
		DocID: "A.1",
		Extra: map[string]RawField{"docId": RawField(`"shadow"`), "note": RawField(`1`)},
	}
	out, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "A.1", got["docId"])
	assert.Equal(t, float64(1), got["note"])
}

func TestClearDerived(t *testing.T) {
	yes := true
	d := &Document{
		DocID:              "A",
		Status:             &Status{Active: true, LatestVersion: &yes},
		ReferencesResolved: &ResolvedReferences{Normative: []ResolvedRef{{ID: "B"}}},
		ReferencedBy:       []string{"C"},
		ReferenceTree:      []string{"B"},
		DocDependancy:      true,
		CurrentStatus:      "Active",
		IsLatestAny:        &yes,
		DocSuite:           []SuiteEntry{{DocID: "A"}},
	}
	d.ClearDerived()

	assert.Nil(t, d.ReferencesResolved)
	assert.Nil(t, d.ReferencedBy)
	assert.Nil(t, d.ReferenceTree)
	assert.False(t, d.DocDependancy)
	assert.Empty(t, d.CurrentStatus)
	assert.Nil(t, d.IsLatestAny)
	assert.Nil(t, d.DocSuite)
	assert.Nil(t, d.Status.LatestVersion)
	assert.True(t, d.Status.Active)
}

func TestResolvedIDs(t *testing.T) {
	var nilRefs *ResolvedReferences
	assert.Nil(t, nilRefs.IDs())

	r := &ResolvedReferences{
		Normative:     []ResolvedRef{{ID: "N1"}, {ID: "N2", Undated: true}},
		Bibliographic: []ResolvedRef{{ID: "B1"}},
	}
	assert.Equal(t, []string{"N1", "N2", "B1"}, r.IDs())
}

func TestSortedCopy(t *testing.T) {
	in := []string{"c", "a", "b"}
	assert.Equal(t, []string{"a", "b", "c"}, SortedCopy(in))
	assert.Equal(t, []string{"c", "a", "b"}, in)
	assert.Nil(t, SortedCopy(nil))
}
