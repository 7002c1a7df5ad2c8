package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckMeta(t *testing.T) {
	raw := `[
	  {"docId":"A","docId$meta":{"source":"manual"},"docTitle":"Alpha",
	   "status":{"active":true,"active$meta":{},"amended":false},
	   "references":{"normative":["B"]},
	   "workInfo":null,
	   "extra":{"inner":1,"inner$meta":{}}},
	  {"docId":"B"}
	]`

	missing, err := CheckMeta([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []MissingMeta{
		{DocID: "A", Path: "docTitle"},
		{DocID: "A", Path: "extra"},
		{DocID: "A", Path: "references.normative"},
		{DocID: "A", Path: "status.amended"},
		{DocID: "B", Path: "docId"},
	}, missing)
}

func TestCheckMetaComplete(t *testing.T) {
	missing, err := CheckMeta([]byte(`[{"docId":"A","docId$meta":{},"status":{}}]`))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestCheckMetaUnknownDocID(t *testing.T) {
	missing, err := CheckMeta([]byte(`[{"docTitle":"x"}]`))
	require.NoError(t, err)
	assert.Equal(t, []MissingMeta{{DocID: "(unknown)", Path: "docTitle"}}, missing)
}

func TestCheckMetaMalformed(t *testing.T) {
	_, err := CheckMeta([]byte(`{"docId":"A"}`))
	assert.True(t, errors.Is(err, ErrMalformed))
}
