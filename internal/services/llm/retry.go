package llm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RetryConfig defines retry behavior for provider calls.
// Narration is optional, so the defaults give up quickly instead of waiting
// out a full quota window.
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration // Base wait for rate limit errors
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

const (
	DefaultMaxRetries        = 2
	DefaultInitialBackoff    = 5 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 1.5
)

// NewDefaultRetryConfig returns the default retry policy.
func NewDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
	}
}

// IsRateLimitError matches 429 status codes, RESOURCE_EXHAUSTED and quota errors.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "quota")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs"
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the provider-suggested retry delay from an error.
// Returns 0 when the message carries none.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}
	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}
	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// Backoff returns the wait before retry number attempt (0-based).
// Rate limit errors back off exponentially from InitialBackoff, or from the
// provider-suggested delay plus one second; other errors wait linearly.
// The result is capped at MaxBackoff.
func (c *RetryConfig) Backoff(attempt int, err error) time.Duration {
	var backoff time.Duration
	if IsRateLimitError(err) {
		base := c.InitialBackoff
		if delay := ExtractRetryDelay(err); delay > 0 {
			base = delay + time.Second
		}
		multiplier := 1.0
		for i := 0; i < attempt; i++ {
			multiplier *= c.BackoffMultiplier
		}
		backoff = time.Duration(float64(base) * multiplier)
	} else {
		backoff = time.Duration(attempt+1) * time.Second
	}

	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}
	return backoff
}
