package stability

import (
	"net/http"
	"time"
)

const (
	// MaxPollAttempts bounds the image-to-video result loop; combined with
	// PollInterval the worst case blocks for about a minute.
	MaxPollAttempts = 10
	PollInterval    = 6 * time.Second
)

// State of the video polling loop.
type State int

const (
	StatePolling State = iota
	StateSucceeded
	StateFailed
)

// Advance maps one poll attempt's HTTP status to the next loop state.
// attempt is 1-based. 202 means the job is still processing and the loop
// may continue while budget remains; 200 is terminal success; anything
// else is a terminal failure.
func Advance(attempt, status int) State {
	switch status {
	case http.StatusOK:
		return StateSucceeded
	case http.StatusAccepted:
		if attempt >= MaxPollAttempts {
			return StateFailed
		}
		return StatePolling
	default:
		return StateFailed
	}
}
