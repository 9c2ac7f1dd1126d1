package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	log := For("tracker")
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"tracker"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestSetupWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Setup("debug", path))
	defer Close()

	log := For("test")
	log.Debug().Msg("written to file")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestSetupLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Setup("warn", path))

	log := For("test")
	log.Info().Msg("dropped")
	log.Warn().Msg("kept")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestSetupBadPath(t *testing.T) {
	err := Setup("info", filepath.Join(t.TempDir(), "missing", "dir", "app.log"))
	assert.Error(t, err)
}
