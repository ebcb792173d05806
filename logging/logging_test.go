package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/elC0mpa/cost-doctor/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cost-doctor.log")

	logger, err := logging.New(logging.Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Debug("query submitted")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"query submitted"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cost-doctor.log")

	logger, err := logging.New(logging.Config{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_BadOutput(t *testing.T) {
	_, err := logging.New(logging.Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "log")})
	assert.Error(t, err)
}

func TestInitialize(t *testing.T) {
	require.NoError(t, logging.Initialize(logging.DefaultConfig()))
	assert.NotNil(t, logging.Logger)
	assert.NotNil(t, logging.Named("session"))
}
