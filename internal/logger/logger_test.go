package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zap.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zap.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zap.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zap.InfoLevel, ParseLevel("bogus"))
}

func TestNew(t *testing.T) {
	dev, err := New("development", "debug")
	require.NoError(t, err)
	assert.True(t, dev.Desugar().Core().Enabled(zap.DebugLevel))

	prod, err := New("production", "warn")
	require.NoError(t, err)
	assert.False(t, prod.Desugar().Core().Enabled(zap.InfoLevel))
	assert.True(t, prod.Desugar().Core().Enabled(zap.WarnLevel))
}
