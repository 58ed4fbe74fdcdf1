package provider

import (
	"time"

	"golang.org/x/time/rate"
)

// NewLimiter spaces requests evenly at requestsPerMinute with a burst of one.
// A non-positive rate disables limiting.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}
