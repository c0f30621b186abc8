package domain

import "time"

// FrontchannelEntry is one relying party to notify at logout.
type FrontchannelEntry struct {
	FrontchannelLogoutURI string `json:"frontchannel_logout_uri"`
	FrontchannelTimeout   *int   `json:"frontchannel_timeout"`
	Name                  string `json:"name"`
}

// Session is an authenticated browser session.
type Session struct {
	Key       string
	UserID    string
	AuthTime  time.Time // last authentication
	AuthNonce string    // nonce presented at last authentication
	AuthHow   string
	ExpiresAt time.Time

	// OIDCSessions is keyed by the computed front-channel logout URL.
	OIDCSessions map[string]FrontchannelEntry

	CreatedAt time.Time
}

// ExpiryAge is the remaining lifetime of the session.
func (s Session) ExpiryAge(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
