package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l, err := New("chatty", "json")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_Console(t *testing.T) {
	l, err := New("debug", "console")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestGet_InitializesOnce(t *testing.T) {
	first := Get()
	require.NotNil(t, first)
	assert.NoError(t, Init("error", "json"))
	assert.Same(t, first, Get())
}
