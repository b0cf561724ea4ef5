package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, false)
	log.Debug("hidden")
	log.Info("stage accepted", zap.String("stage", "critique"), zap.Int("attempt", 2))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "stage accepted")
	assert.Contains(t, out, `"stage": "critique"`)

	buf.Reset()
	verbose := NewWriter(&buf, true)
	verbose.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew(t *testing.T) {
	log, err := New(true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	log, err = New(false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
}
