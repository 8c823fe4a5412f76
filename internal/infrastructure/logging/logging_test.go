package logging

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewZapLoggerLevels(t *testing.T) {
	debug, err := NewZapLogger(true)
	require.NoError(t, err)
	assert.True(t, debug.Core().Enabled(zap.DebugLevel))

	quiet, err := NewZapLogger(false)
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zap.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zap.WarnLevel))
}

func TestStatusLines(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	s := NewStatus(&buf)
	s.Printf("Center %s:", "Impfzentrum Tegel")
	s.Partf("– %s...", "Halle 1")
	s.Fail("no availabilities")
	s.Error("City %s not found.", "atlantis")

	assert.Equal(t, "Center Impfzentrum Tegel:\n– Halle 1... no availabilities\n\nError: City atlantis not found.\n", buf.String())
}
