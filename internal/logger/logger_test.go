package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogMissingLineage(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "info", Output: &buf})

	refs := l.RefLogger("DOC.1")
	refs.LogMissingLineage("W3C.REC-xml", "normative")
	refs.LogRefSummary(1)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "refs", lines[0]["component"])
	assert.Equal(t, "DOC.1", lines[0]["doc_id"])
	assert.Equal(t, "DOC.1", lines[1]["doc_id"])
	assert.Equal(t, "W3C.REC-xml", lines[0]["ref"])
	assert.Equal(t, "refgraph", lines[0]["service"])
	assert.Equal(t, float64(1), lines[1]["missing"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "warn", Output: &buf})

	l.LogStage("resolve", time.Millisecond, 3, nil)
	l.RefLogger("DOC.1").LogRefSummary(2)
	assert.Empty(t, buf.String())

	l.LogStage("load", time.Millisecond, 0, errors.New("boom"))
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "boom", lines[0]["error"])
}

func TestComponentLoggers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "debug", Output: &buf})

	l.StageLogger("tree").Info().Msg("x")
	l.RefLogger("DOC.2").WithFields(map[string]interface{}{"n": 1}).Info().Msg("y")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "tree", lines[0]["stage"])
	assert.Equal(t, "DOC.2", lines[1]["doc_id"])
	assert.Equal(t, float64(1), lines[1]["n"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel("debug").String())
	assert.Equal(t, "info", ParseLevel("bogus").String())
}

func TestNop(t *testing.T) {
	Nop().Error().Msg("discarded")
}
