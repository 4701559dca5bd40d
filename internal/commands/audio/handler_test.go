package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         string
		wantDuration int
		wantPrompt   string
	}{
		{
			name:         "leading duration",
			args:         "30 cheerful acoustic music",
			wantDuration: 30,
			wantPrompt:   "cheerful acoustic music",
		},
		{
			name:         "no duration keeps whole prompt",
			args:         "cheerful acoustic music",
			wantDuration: DefaultDuration,
			wantPrompt:   "cheerful acoustic music",
		},
		{
			name:         "non-numeric first token stays in prompt",
			args:         "3x heavy drums",
			wantDuration: DefaultDuration,
			wantPrompt:   "3x heavy drums",
		},
		{
			name:         "duration only",
			args:         "30",
			wantDuration: 30,
			wantPrompt:   "",
		},
		{
			name:         "empty",
			args:         "",
			wantDuration: DefaultDuration,
			wantPrompt:   "",
		},
		{
			name:         "surrounding whitespace",
			args:         "  15   soft piano  ",
			wantDuration: 15,
			wantPrompt:   "soft piano",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			duration, prompt := parseArgs(tt.args)
			assert.Equal(t, tt.wantDuration, duration)
			assert.Equal(t, tt.wantPrompt, prompt)
		})
	}
}
