package domain

import "time"

// SigningKey is a persisted ID token signing key.
type SigningKey struct {
	ID               string
	Kid              string
	Algorithm        string
	PrivateKeySealed []byte
	CreatedAt        time.Time
	RetiredAt        *time.Time
	ExpiresAt        time.Time
}
