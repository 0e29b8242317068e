package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewProduction(t *testing.T) {
	logger, err := New("debug", false)
	require.NoError(t, err)
	defer logger.Sync()

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	logger, err := New("chatty", false)
	require.NoError(t, err)
	defer logger.Sync()

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewDevelopment(t *testing.T) {
	logger, err := New("info", true)
	require.NoError(t, err)
	defer logger.Sync()

	assert.NotNil(t, logger)
}
