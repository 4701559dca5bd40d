package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetisyanz/dreambot/internal/logger"
	"github.com/avetisyanz/dreambot/internal/provider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, "gemini-2.0-flash", logger.NewTestLogger())
}

func candidateBody(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(body)
}

func TestAsk(t *testing.T) {
	var gotPath, gotKey string
	var gotRequest generateRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotRequest)
		io.WriteString(w, candidateBody("```html\n<html><body>hi</body></html>\n```"))
	})

	text, err := c.Ask(context.Background(), "make me a page", "k-123")
	require.NoError(t, err)

	assert.Equal(t, "<html><body>hi</body></html>", text)
	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "k-123", gotKey)
	require.Len(t, gotRequest.Contents, 1)
	assert.Contains(t, gotRequest.Contents[0].Parts[0].Text, "make me a page")
	assert.Contains(t, gotRequest.Contents[0].Parts[0].Text, "standalone HTML document")
}

func TestAskInvalidKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Ask(context.Background(), "hello", "bad")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestAskProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"quota exceeded"}}`)
	})

	_, err := c.Ask(context.Background(), "hello", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestAskEmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[]}`)
	})

	_, err := c.Ask(context.Background(), "hello", "k")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected provider.Validation
	}{
		{"accepted", http.StatusOK, provider.ValidationValid},
		{"rejected", http.StatusUnauthorized, provider.ValidationInvalid},
		{"forbidden", http.StatusForbidden, provider.ValidationInvalid},
		{"server error", http.StatusInternalServerError, provider.ValidationIndeterminate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.status == http.StatusOK {
					io.WriteString(w, candidateBody("pong"))
				}
			})

			assert.Equal(t, tt.expected, c.Validate(context.Background(), "k"))
		})
	}
}

func TestValidateUnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := srv.Client()
	url := srv.URL
	srv.Close()

	c := NewClient(client, url, "gemini-2.0-flash", logger.NewTestLogger())
	assert.Equal(t, provider.ValidationIndeterminate, c.Validate(context.Background(), "k"))
}

func TestCleanFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"html fence", "```html\n<p>x</p>\n```", "<p>x</p>"},
		{"bare fence", "```\n<p>x</p>\n```", "<p>x</p>"},
		{"no fence", "<p>x</p>", "<p>x</p>"},
		{"surrounding whitespace", "  \n```html\n<p>x</p>\n```\n ", "<p>x</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanFences(tt.input))
		})
	}
}
