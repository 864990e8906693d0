package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FILTERCHAIN_INSTANCES", "3")
	t.Setenv("FILTERCHAIN_FILTERS", "2")
	t.Setenv("FILTERCHAIN_WORK", "50ms")
	t.Setenv("FILTERCHAIN_TIMEOUT", "10ms")
	t.Setenv("FILTERCHAIN_COUNTDOWN", "true")
	t.Setenv("FILTERCHAIN_LOG_LEVEL", "debug")
	t.Setenv("FILTERCHAIN_DOT_FILE", "out.dot")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Run.Instances)
	assert.Equal(t, 2, cfg.Run.Filters)
	assert.Equal(t, 50*time.Millisecond, cfg.Run.Work)
	assert.Equal(t, 10*time.Millisecond, cfg.Run.Timeout)
	assert.True(t, cfg.Run.Countdown)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "out.dot", cfg.Output.DOTFile)
}

func TestLoadInvalid(t *testing.T) {
	tcs := map[string]struct {
		key, value string
	}{
		"zero instances":   {key: "FILTERCHAIN_INSTANCES", value: "0"},
		"zero filters":     {key: "FILTERCHAIN_FILTERS", value: "0"},
		"negative work":    {key: "FILTERCHAIN_WORK", value: "-1s"},
		"bad duration":     {key: "FILTERCHAIN_TIMEOUT", value: "soon"},
		"bad poll":         {key: "FILTERCHAIN_POLL", value: "0s"},
		"bad bool":         {key: "FILTERCHAIN_COUNTDOWN", value: "maybe"},
		"bad instance int": {key: "FILTERCHAIN_INSTANCES", value: "many"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
