package session

import "time"

// Config holds session manager configuration with environment mapping.
type Config struct {
	// Lifetime bounds the total age of a user session from creation.
	Lifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"720h"`

	// RekeyInterval is how long a session key stays fresh before a validated
	// request triggers rotation.
	RekeyInterval time.Duration `env:"SESSION_REKEY_INTERVAL" envDefault:"1h"`

	// Secret is the base64-encoded master secret the MAC and CSRF keys are
	// derived from. Required, no default.
	Secret string `env:"SESSION_SECRET,required"`
}

// DefaultConfig returns a Config with production defaults and no secret.
func DefaultConfig() Config {
	return Config{
		Lifetime:      30 * 24 * time.Hour,
		RekeyInterval: time.Hour,
	}
}
