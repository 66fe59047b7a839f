package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalstride/stride/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "db_path: /tmp/custom.db\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, 8, cfg.MaxSteps)
	assert.Equal(t, "friendly", cfg.StreakMode)
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
db_path: /data/stride.db
model: claude-sonnet-4-5-20250929
max_steps: 5
planning_horizon_days: 21
streak_mode: strict
ai_timeout: 90s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxSteps)
	assert.Equal(t, 21, cfg.PlanningHorizonDays)
	assert.True(t, cfg.Strict())

	d, err := cfg.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"garbage yaml", "db_path: [unterminated\n"},
		{"zero max_steps", "max_steps: 0\n"},
		{"negative horizon", "planning_horizon_days: -3\n"},
		{"unknown streak mode", "streak_mode: lenient\n"},
		{"bad timeout", "ai_timeout: soon\n"},
		{"empty db path", "db_path: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestTimeoutDefault(t *testing.T) {
	d, err := Default().Timeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
}
