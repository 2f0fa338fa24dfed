package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigTimeoutTable(t *testing.T) {
	cfg := DefaultConfig()

	tt := cfg.TimeoutFor(FamilyMoveRenameExtract)
	assert.Equal(t, 30*time.Second, tt.Default)
	assert.Equal(t, 120*time.Second, tt.Max)

	tt = cfg.TimeoutFor(FamilyOrganizeAll)
	assert.Equal(t, 60*time.Second, tt.Default)
	assert.Equal(t, 300*time.Second, tt.Max)
}

func TestTimeoutForUnknownFamilyFallsBackToDefault(t *testing.T) {
	cfg := &Config{}
	tt := cfg.TimeoutFor(FamilyDiagnose)
	assert.Equal(t, 10*time.Second, tt.Default)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxConcurrentQueries)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CSREF_MAX_CONCURRENT_QUERIES", "16")
	t.Setenv("CSREF_LOG_LEVEL", "debug")
	t.Setenv("CSREF_DISPOSE_TIMEOUT", "5s")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, 16, cfg.MaxConcurrentQueries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.DisposeTimeout)
}

func TestEnvOverrideIgnoresInvalidInt(t *testing.T) {
	t.Setenv("CSREF_MAX_CONCURRENT_QUERIES", "not-a-number")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, 8, cfg.MaxConcurrentQueries)
}
