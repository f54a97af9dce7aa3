package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestPrinterPlainOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)

	p.Banner("Ollama Analysis:")
	p.Token("a")
	p.Token("b")
	p.Println()
	p.Warnf("Could not analyze with Ollama: %s", "down")
	p.Tipf("Make sure Ollama is running. Start it with: ollama serve")

	rule := strings.Repeat("=", 80)
	assert.Equal(t, rule+"\nOllama Analysis:\n"+rule+"\nab\n", out.String())
	assert.Equal(t, "Warning: Could not analyze with Ollama: down\nTip: Make sure Ollama is running. Start it with: ollama serve\n", errOut.String())
}

func TestPrinterErrorLine(t *testing.T) {
	var out, errOut bytes.Buffer
	NewPrinter(&out, &errOut).Errorf("%v", "Domain cannot be empty.")

	assert.Empty(t, out.String())
	assert.Equal(t, "error: Domain cannot be empty.\n", errOut.String())
}

func TestBuffersAreNotTerminals(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		level   string
		verbose bool
		want    zapcore.Level
	}{
		{level: "", want: zapcore.WarnLevel},
		{level: "info", want: zapcore.InfoLevel},
		{level: "bogus", want: zapcore.WarnLevel},
		{level: "error", verbose: true, want: zapcore.DebugLevel},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			logger, err := NewLogger(tc.level, tc.verbose)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.want))
			if tc.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tc.want-1))
			}
		})
	}
}
