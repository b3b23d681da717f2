// Package expiry maps a duration selector onto an absolute expiry
// instant. Unrecognized selectors deliberately fall back to "never";
// the policy raises no errors.
package expiry

import (
	"time"

	"github.com/foliolink/folio_service/internal/domain/entities"
)

// ExpiresAt returns the absolute expiry for the given duration selector,
// or nil when the portfolio never expires ("Forever" and any
// unrecognized value).
func ExpiresAt(duration string, now time.Time) *time.Time {
	ttl, ok := ttlFor(duration)
	if !ok {
		return nil
	}
	at := now.Add(ttl)
	return &at
}

// TTL returns the native-expiration hint passed to storage backends.
// Zero means no hint.
func TTL(duration string) time.Duration {
	ttl, ok := ttlFor(duration)
	if !ok {
		return 0
	}
	return ttl
}

func ttlFor(duration string) (time.Duration, bool) {
	switch duration {
	case entities.Duration1Day:
		return 24 * time.Hour, true
	case entities.Duration1Week:
		return 7 * 24 * time.Hour, true
	case entities.Duration1Month:
		return 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}
