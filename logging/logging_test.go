package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogsComponentField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)
	logger.Info().Str(FieldDigest, "abc123").Msg("compiled")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "regcore", line["component"])
	require.Equal(t, "abc123", line[FieldDigest])
	require.Equal(t, "compiled", line["message"])
}
