package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentFilename(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "title becomes slug",
			html:     "<html><head><title>My Travel Plan</title></head><body></body></html>",
			expected: "my-travel-plan.html",
		},
		{
			name:     "special characters stripped",
			html:     "<html><head><title>Q&A: What's new?!</title></head><body></body></html>",
			expected: "q-a-what-s-new.html",
		},
		{
			name:     "no title falls back",
			html:     "<html><body><p>hi</p></body></html>",
			expected: "response.html",
		},
		{
			name:     "empty document falls back",
			html:     "",
			expected: "response.html",
		},
		{
			name:     "whitespace-only title falls back",
			html:     "<html><head><title>   </title></head></html>",
			expected: "response.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DocumentFilename(tt.html))
		})
	}
}

func TestDocumentFilenameCapsLength(t *testing.T) {
	html := "<html><head><title>aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa</title></head></html>"
	name := DocumentFilename(html)
	assert.LessOrEqual(t, len(name), 54)
}

func TestLocalizer(t *testing.T) {
	l, err := NewLocalizer("en")
	assert.NoError(t, err)

	assert.Contains(t, l.Localize("welcome", nil), "/imagine")
	assert.Equal(t, "unknown_id", l.Localize("unknown_id", nil), "missing ids fall back to the id")

	msg := l.Localize("audio_caption", map[string]any{"Duration": 30})
	assert.Contains(t, msg, "30s")
}
