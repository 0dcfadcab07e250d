package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"local", "dev", "development", "production", "staging", ""} {
		logger, err := New(env)
		require.NoError(t, err, "env %q", env)
		assert.NotNil(t, logger, "env %q", env)
	}
}

func TestNewDevelopmentEnablesDebug(t *testing.T) {
	logger, err := New("local")
	require.NoError(t, err)
	assert.NotNil(t, logger.Check(zapcore.DebugLevel, "debug message"))

	logger, err = New("production")
	require.NoError(t, err)
	assert.Nil(t, logger.Check(zapcore.DebugLevel, "debug message"))
}
