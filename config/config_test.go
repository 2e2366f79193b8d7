package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SCRUBBER_DIRTY", "SCRUBBER_CLEAN", "SCRUBBER_PROFILE", "SCRUBBER_PROFILE_FILE",
		"SCRUBBER_WORKERS", "SCRUBBER_SENTINEL", "SCRUBBER_SAMPLE_SIZE",
		"SCRUBBER_REPORT", "SCRUBBER_REPORT_FORMAT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRUBBER_DIRTY", "/data/in")
	t.Setenv("SCRUBBER_CLEAN", "/data/out")
	t.Setenv("SCRUBBER_PROFILE", "shapefile")
	t.Setenv("SCRUBBER_WORKERS", "4")
	t.Setenv("SCRUBBER_SAMPLE_SIZE", "4096")
	t.Setenv("SCRUBBER_REPORT", "run.json")
	t.Setenv("SCRUBBER_REPORT_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/in", cfg.Dirty)
	assert.Equal(t, "/data/out", cfg.Clean)
	assert.Equal(t, "shapefile", cfg.Profile)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 4096, cfg.SampleSize)
	assert.Equal(t, "run.json", cfg.Report)
	assert.Equal(t, "json", cfg.ReportFormat)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero workers", "SCRUBBER_WORKERS", "0"},
		{"non numeric workers", "SCRUBBER_WORKERS", "many"},
		{"negative sample", "SCRUBBER_SAMPLE_SIZE", "-1"},
		{"unknown report format", "SCRUBBER_REPORT_FORMAT", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Clean = ""
	assert.Error(t, cfg.Validate())
}

func TestParseSkipsValidation(t *testing.T) {
	t.Setenv("SCRUBBER_WORKERS", "0")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Workers)
	assert.Error(t, cfg.Validate())

	cfg.Workers = 2
	assert.NoError(t, cfg.Validate())
}
