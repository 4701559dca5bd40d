package stability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/avetisyanz/dreambot/internal/logger"
	"github.com/avetisyanz/dreambot/internal/media"
	"github.com/avetisyanz/dreambot/internal/provider"
)

var (
	// ErrGenerationFailed covers any non-200 answer from a generation
	// endpoint; the user sees a generic failure message.
	ErrGenerationFailed = errors.New("stability: generation failed")
	// ErrJobFailed is a terminal poll status other than 200/202.
	ErrJobFailed = errors.New("stability: video job failed")
	// ErrJobTimeout means the poll budget ran out while the job still
	// reported processing.
	ErrJobTimeout = errors.New("stability: video job still processing after poll budget")
)

// Fixed image-to-video parameters, matching what the generation model
// expects for a neutral motion profile.
const (
	videoSeed           = "0"
	videoCfgScale       = "1.8"
	videoMotionBucketID = "127"
	audioSteps          = "30"
)

type Client struct {
	http   *provider.HTTPClient
	store  *media.Storage
	logger logger.Logger

	// sleep is swapped out in tests so the poll loop runs instantly.
	sleep func(time.Duration)
}

func NewClient(httpClient *http.Client, baseURL string, store *media.Storage, log logger.Logger) *Client {
	return &Client{
		http:   provider.NewHTTPClient(httpClient, baseURL, log),
		store:  store,
		logger: log.WithField("provider", "stability"),
		sleep:  time.Sleep,
	}
}

// GenerateImage renders prompt to a webp image and writes it to a
// chat-scoped temporary path. Single attempt, no retry.
func (c *Client) GenerateImage(ctx context.Context, chatID int64, prompt, key string) (string, error) {
	fields := map[string]string{
		"prompt":        prompt,
		"output_format": "webp",
	}
	payload, err := c.postForm(ctx, "/v2beta/stable-image/generate/ultra", fields, nil, "image/*", key)
	if err != nil {
		return "", err
	}
	return c.store.Write(chatID, "generated_image.webp", payload)
}

// GenerateAudio renders prompt to an mp3 of the requested duration.
func (c *Client) GenerateAudio(ctx context.Context, chatID int64, prompt string, durationSeconds int, key string) (string, error) {
	fields := map[string]string{
		"prompt":        prompt,
		"output_format": "mp3",
		"duration":      strconv.Itoa(durationSeconds),
		"steps":         audioSteps,
	}
	payload, err := c.postForm(ctx, "/v2beta/audio/stable-audio-2/text-to-audio", fields, nil, "audio/*", key)
	if err != nil {
		return "", err
	}
	return c.store.Write(chatID, "generated_audio.mp3", payload)
}

// SubmitImageToVideo uploads a source image and returns the provider's job
// id for polling.
func (c *Client) SubmitImageToVideo(ctx context.Context, imagePath, key string) (string, error) {
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read source image: %w", err)
	}

	fields := map[string]string{
		"seed":             videoSeed,
		"cfg_scale":        videoCfgScale,
		"motion_bucket_id": videoMotionBucketID,
	}
	file := &formFile{field: "image", name: filepath.Base(imagePath), data: image}

	payload, err := c.postForm(ctx, "/v2beta/image-to-video", fields, file, "application/json", key)
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return "", fmt.Errorf("stability submit response: %w", err)
	}
	if result.ID == "" {
		return "", errors.New("stability: submit response carried no job id")
	}
	return result.ID, nil
}

// PollVideo drives the bounded polling loop for a submitted job. Each
// "still processing" answer triggers onProgress (used to update the status
// message the user is watching) followed by a fixed wait. The loop is
// terminal on success, on any unexpected status, and on attempt budget
// exhaustion.
func (c *Client) PollVideo(ctx context.Context, chatID int64, jobID, key string, onProgress func()) (string, error) {
	endpoint := "/v2beta/image-to-video/result/" + jobID

	for attempt := 1; attempt <= MaxPollAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Accept", "video/*")

		resp, err := c.http.Do(req, key)
		if err != nil {
			return "", fmt.Errorf("stability poll: %w", err)
		}

		switch Advance(attempt, resp.StatusCode) {
		case StateSucceeded:
			payload, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return "", fmt.Errorf("stability poll response: %w", err)
			}
			return c.store.Write(chatID, "output_video.mp4", payload)

		case StatePolling:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.logger.WithFields(logger.Fields{
				"job_id":  jobID,
				"attempt": attempt,
			}).Debug("Video still processing")
			if onProgress != nil {
				onProgress()
			}
			c.sleep(PollInterval)

		case StateFailed:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusAccepted {
				return "", ErrJobTimeout
			}
			c.logger.WithFields(logger.Fields{
				"job_id": jobID,
				"status": resp.StatusCode,
			}).Warn("Video job aborted")
			return "", ErrJobFailed
		}
	}

	return "", ErrJobTimeout
}

// CheckBalance returns the credit balance available to a key.
func (c *Client) CheckBalance(ctx context.Context, key string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/v1/user/balance", nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req, key)
	if err != nil {
		return 0, fmt.Errorf("stability balance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("stability balance: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Credits float64 `json:"credits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("stability balance response: %w", err)
	}
	return result.Credits, nil
}

// Validate probes a key against the balance endpoint.
func (c *Client) Validate(ctx context.Context, key string) provider.Validation {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/v1/user/balance", nil)
	if err != nil {
		return provider.ValidationIndeterminate
	}

	resp, err := c.http.Do(req, key)
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

type formFile struct {
	field string
	name  string
	data  []byte
}

// postForm sends a multipart form and returns the raw body of a 200
// answer; every other outcome folds into ErrGenerationFailed.
func (c *Client) postForm(ctx context.Context, endpoint string, fields map[string]string, file *formFile, accept, key string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			return nil, err
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile(file.field, file.name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(file.data); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.WithFields(logger.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
			"body":     string(body),
		}).Warn("Generation request rejected")
		return nil, fmt.Errorf("%w: status %d", ErrGenerationFailed, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
