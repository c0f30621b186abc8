package service

import (
	"context"
	"maps"
	"net/url"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
)

// FrontchannelURL is the logout URL registered for client in a session.
func (e *Engine) FrontchannelURL(session domain.Session, client domain.Client) string {
	return appendQuery(client.FrontchannelLogoutURI, url.Values{
		"iss": {e.cfg.Issuer},
		"sid": {e.SessionID(session.Key, client)},
	})
}

// AddOIDCSession registers client in the session front-channel registry.
// Registering the same entry twice leaves the session untouched.
func (e *Engine) AddOIDCSession(ctx context.Context, session *domain.Session, client domain.Client) error {
	if client.FrontchannelLogoutURI == "" {
		return nil
	}
	uri := e.FrontchannelURL(*session, client)
	entry := domain.FrontchannelEntry{
		FrontchannelLogoutURI: uri,
		FrontchannelTimeout:   client.FrontchannelTimeout,
		Name:                  client.Name,
	}
	if existing, ok := session.OIDCSessions[uri]; ok && sameEntry(existing, entry) {
		return nil
	}

	next := maps.Clone(session.OIDCSessions)
	if next == nil {
		next = make(map[string]domain.FrontchannelEntry)
	}
	next[uri] = entry
	if err := e.Store.Sessions().UpdateOIDCSessions(ctx, session.Key, next); err != nil {
		return err
	}
	session.OIDCSessions = next
	return nil
}

func sameEntry(a, b domain.FrontchannelEntry) bool {
	if a.FrontchannelLogoutURI != b.FrontchannelLogoutURI || a.Name != b.Name {
		return false
	}
	if (a.FrontchannelTimeout == nil) != (b.FrontchannelTimeout == nil) {
		return false
	}
	return a.FrontchannelTimeout == nil || *a.FrontchannelTimeout == *b.FrontchannelTimeout
}
