package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/avetisyanz/dreambot/internal/logger"
	"github.com/avetisyanz/dreambot/internal/provider"
)

// ErrInvalidKey marks an explicit authentication rejection; the caller is
// expected to evict the stored key and ask the user to re-add one.
var ErrInvalidKey = errors.New("gemini: invalid api key")

// systemInstruction is prepended to every chat prompt. The response is
// delivered to the user as a file attachment, so the model is asked for a
// complete document rather than a plain-text answer.
const systemInstruction = "Answer the following request as a single complete standalone HTML document. " +
	"Inline all CSS and JavaScript, include a light/dark theme toggle, and keep the layout responsive " +
	"on mobile screens. Return only the HTML document.\n\n"

type Client struct {
	http   *provider.HTTPClient
	model  string
	logger logger.Logger
}

func NewClient(httpClient *http.Client, baseURL, model string, log logger.Logger) *Client {
	return &Client{
		http:   provider.NewHTTPClient(httpClient, baseURL, log),
		model:  model,
		logger: log.WithField("provider", "gemini"),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Ask issues a single generateContent request. No retry: the user sees
// whatever the provider answered.
func (c *Client) Ask(ctx context.Context, prompt, key string) (string, error) {
	resp, err := c.generate(ctx, systemInstruction+prompt, key)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrInvalidKey
	default:
		return "", fmt.Errorf("gemini: %s", errorMessage(body, resp.StatusCode))
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("gemini response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: no candidates in response")
	}

	return CleanFences(result.Candidates[0].Content.Parts[0].Text), nil
}

// Validate probes the key with a minimal request. Only a definite accept or
// reject changes the key's fate; everything else is indeterminate.
func (c *Client) Validate(ctx context.Context, key string) provider.Validation {
	resp, err := c.generate(ctx, "ping", key)
	if err != nil {
		c.logger.WithError(err).Debug("Key validation inconclusive")
		return provider.ValidationIndeterminate
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return provider.ValidationValid
	case http.StatusUnauthorized, http.StatusForbidden:
		return provider.ValidationInvalid
	default:
		return provider.ValidationIndeterminate
	}
}

func (c *Client) generate(ctx context.Context, text, key string) (*http.Response, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/models/%s:generateContent?key=%s", c.model, url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	// The key travels as a query parameter, not a bearer header.
	return c.http.Do(req, "")
}

func errorMessage(body []byte, status int) string {
	var result generateResponse
	if err := json.Unmarshal(body, &result); err == nil && result.Error != nil && result.Error.Message != "" {
		return result.Error.Message
	}
	return fmt.Sprintf("unexpected status %d", status)
}

// CleanFences strips a surrounding ```html fence the model often wraps
// documents in.
func CleanFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```html")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
