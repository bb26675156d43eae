package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name        string
		level       string
		format      string
		expectError bool
	}{
		{name: "Console debug", level: "debug", format: "console"},
		{name: "JSON info", level: "info", format: "json"},
		{name: "Unknown level", level: "loud", format: "json", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := NewLogger(tc.level, tc.format)
			if tc.expectError {
				assert.Error(t, err)
				assert.Nil(t, log)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, log)

			expected, _ := zapcore.ParseLevel(tc.level)
			assert.True(t, log.Core().Enabled(expected))
		})
	}
}
