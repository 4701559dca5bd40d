package provider

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/avetisyanz/dreambot/internal/logger"
)

// Validation is the outcome of probing a user-supplied API key.
// Indeterminate means the provider could not be reached or answered with
// something other than a clear accept/reject; such keys are kept so a
// transient failure never strands a user without a usable key.
type Validation int

const (
	ValidationValid Validation = iota
	ValidationInvalid
	ValidationIndeterminate
)

func (v Validation) String() string {
	switch v {
	case ValidationValid:
		return "valid"
	case ValidationInvalid:
		return "invalid"
	default:
		return "indeterminate"
	}
}

// HTTPClient resolves relative endpoints against a provider base URL and
// attaches the per-call bearer credential. Keys are threaded explicitly
// through every call chain; the client itself holds none.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

func NewHTTPClient(client *http.Client, baseURL string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		client:  client,
		baseURL: baseURL,
		logger:  log,
	}
}

func (c *HTTPClient) Do(req *http.Request, bearer string) (*http.Response, error) {
	if c.baseURL != "" && !strings.HasPrefix(req.URL.String(), "http") {
		req.URL, _ = url.Parse(fmt.Sprintf(
			"%s/%s",
			strings.TrimSuffix(c.baseURL, "/"),
			strings.TrimPrefix(req.URL.String(), "/"),
		))
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	c.logger.WithFields(logger.Fields{
		"method": req.Method,
		"url":    redactURL(req.URL),
	}).Debug("HTTP request")

	return c.client.Do(req)
}

// redactURL hides credential query parameters before logging.
func redactURL(u *url.URL) string {
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "xxxxx")
		clone := *u
		clone.RawQuery = q.Encode()
		return clone.Redacted()
	}
	return u.Redacted()
}
