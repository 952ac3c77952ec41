package notify

import (
	"math"
	"math/rand"
	"net/http"
	"time"
)

// backoff returns the delay before the given retry attempt: exponential from
// the initial delay, capped at the maximum, with ±10% jitter.
func backoff(attempt int, cfg *Config) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	jitter := delay * 0.1
	delay += (rand.Float64()*2 - 1) * jitter

	return time.Duration(delay)
}

// retryable reports whether an HTTP status is worth retrying.
func retryable(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
