package logutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_writes_to_file(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "toastq.log")

	logger, closer, err := New("warn", file)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("cmp", "test").Msg("shown")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"cmp":"test"`)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"pid":`)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNew_appends(t *testing.T) {
	file := filepath.Join(t.TempDir(), "toastq.log")

	for _, msg := range []string{"first", "second"} {
		logger, closer, err := New("info", file)
		require.NoError(t, err)
		logger.Info().Msg(msg)
		closer()
	}

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestNew_invalid_level(t *testing.T) {
	_, closer, err := New("loud", "")
	require.Error(t, err)
	assert.NotPanics(t, closer)
}
