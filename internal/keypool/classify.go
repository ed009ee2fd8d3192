package keypool

import (
	"errors"
	"strings"
)

// isRateLimit reports whether err looks like an HTTP 429 / rate-limit
// condition. The textual test matches "429", "too many requests", or the
// co-occurrence of "rate" and "limit" (which also covers "rate_limit" and
// "ratelimit"), case-insensitively, and is applied to every error in the
// Unwrap chain so a wrapped provider error is still detected.
func isRateLimit(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		s := strings.ToLower(e.Error())
		if strings.Contains(s, "429") {
			return true
		}
		if strings.Contains(s, "too many requests") {
			return true
		}
		if strings.Contains(s, "rate") && strings.Contains(s, "limit") {
			return true
		}
	}
	return false
}
