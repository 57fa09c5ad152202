// Package payauth confirms payment and setup intents and drives any
// required customer authentication (3-D Secure) to a single terminal
// outcome delivered to the caller.
package payauth

import (
	"fmt"
	"time"
)

const (
	// DefaultRequestCode demultiplexes results returned through the
	// host's result dispatch.
	DefaultRequestCode = 50000

	// DefaultChallengeTimeout is the challenge timeout in minutes.
	DefaultChallengeTimeout = 5
	minChallengeTimeout     = 5
	maxChallengeTimeout     = 99

	// DefaultChallengeDelay is how long the orchestrator waits before
	// invoking the challenge UI, letting any interstitial UI settle.
	DefaultChallengeDelay = 2 * time.Second
)

// Config is the orchestrator's explicit configuration. A zero value is
// not usable; start from DefaultConfig.
type Config struct {
	// RequestCode tags every launch so the host can route returns.
	RequestCode int
	// ChallengeTimeout is the 3DS2 challenge timeout in minutes.
	// The protocol allows 5 through 99.
	ChallengeTimeout int
	// ChallengeDelay is the pause before the challenge UI is invoked.
	ChallengeDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestCode:      DefaultRequestCode,
		ChallengeTimeout: DefaultChallengeTimeout,
		ChallengeDelay:   DefaultChallengeDelay,
	}
}

func (c Config) validate() error {
	if c.ChallengeTimeout < minChallengeTimeout || c.ChallengeTimeout > maxChallengeTimeout {
		return fmt.Errorf("challenge timeout must be between %d and %d minutes, got %d",
			minChallengeTimeout, maxChallengeTimeout, c.ChallengeTimeout)
	}
	return nil
}
