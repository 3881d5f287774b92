package revocation

import (
	"errors"
	"time"
)

var errNonPositiveTTL = errors.New("revocation ttl must be positive")

// validateTTL rejects entries that would never be stored or never expire.
func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return errNonPositiveTTL
	}
	return nil
}
