package models

import (
	"time"

	er "github.com/customeros/fresh/internal/errors"
)

// RetryPolicy bounds how long the inbox is polled for a confirmation email.
type RetryPolicy struct {
	Tries    int
	Interval time.Duration
}

// NoRetry searches exactly once.
func NoRetry() RetryPolicy {
	return RetryPolicy{Tries: 1}
}

func (p RetryPolicy) Validate() error {
	if p.Tries < 1 {
		return er.ErrInvalidRetryPolicy
	}
	return nil
}

// Budget is the longest time a full polling run can spend sleeping.
func (p RetryPolicy) Budget() time.Duration {
	if p.Tries <= 1 {
		return 0
	}
	return time.Duration(p.Tries-1) * p.Interval
}
