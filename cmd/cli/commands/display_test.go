package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status   string
		expected string
	}{
		{"confirmed", colorGreen},
		{"accepted", colorGreen},
		{"tentative", colorYellow},
		{"notified", colorYellow},
		{"vacant", colorRed},
		{"cancelled", colorDim},
		{"unknown", colorReset},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusColor(tt.status))
		})
	}
}

func TestParseDecision(t *testing.T) {
	for _, arg := range []string{"accept", "Accept", "yes", "y"} {
		accepted, err := parseDecision(arg)
		require.NoError(t, err, arg)
		assert.True(t, accepted, arg)
	}
	for _, arg := range []string{"reject", "DECLINE", "no"} {
		accepted, err := parseDecision(arg)
		require.NoError(t, err, arg)
		assert.False(t, accepted, arg)
	}

	_, err := parseDecision("maybe")
	assert.Error(t, err)
}

func TestColored(t *testing.T) {
	assert.Equal(t, colorGreen+"ok"+colorReset, colored(colorGreen, "ok"))
}
