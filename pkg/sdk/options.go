package sdk

import "time"

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxAttempts  = 3
	defaultInitialDelay = 500 * time.Millisecond
)

type options struct {
	timeout      time.Duration
	maxAttempts  int
	initialDelay time.Duration
}

// Option configures a Client.
type Option func(*options)

// WithTimeout bounds each tool call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetry sets how often a failed transport call is attempted and the
// first backoff delay. Attempts below one are treated as one.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(o *options) {
		if maxAttempts < 1 {
			maxAttempts = 1
		}
		o.maxAttempts = maxAttempts
		o.initialDelay = initialDelay
	}
}
