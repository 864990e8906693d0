package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cfg   Config
		level zapcore.Level
	}{
		"default":     {cfg: DefaultConfig(), level: zapcore.InfoLevel},
		"development": {cfg: Config{Level: "debug", Development: true}, level: zapcore.DebugLevel},
		"warn":        {cfg: Config{Level: "warn"}, level: zapcore.WarnLevel},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			logger, err := New(tc.cfg)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.level))
			assert.False(t, logger.Core().Enabled(tc.level-1))
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Level: "verbose"})
	assert.Error(t, err)
}
