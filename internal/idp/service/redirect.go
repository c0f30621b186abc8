package service

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
)

var (
	ErrRedirectURITooLong = errors.New("service: redirect_uri too long")
	ErrRedirectURIUnknown = errors.New("service: redirect_uri is not declared")
)

// MatchURI checks candidate against whitespace separated patterns. A pattern
// without scheme accepts http and https; port 0 accepts any port; a host
// starting with '*' accepts the domain and its subdomains; a path ending in
// '*' is a prefix; query and fragment must be equal or '*' when the
// candidate carries one.
func MatchURI(candidate string, patterns []string, maxLength int) error {
	if maxLength > 0 && len(candidate) > maxLength {
		return ErrRedirectURITooLong
	}
	uri, err := url.Parse(candidate)
	if err != nil {
		return ErrRedirectURIUnknown
	}
	for _, raw := range patterns {
		pattern, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if matchPattern(uri, pattern) {
			return nil
		}
	}
	return ErrRedirectURIUnknown
}

func matchPattern(uri, pattern *url.URL) bool {
	switch {
	case pattern.Scheme == "" && (uri.Scheme == "http" || uri.Scheme == "https"):
	case uri.Scheme != pattern.Scheme:
		return false
	}

	uriPort, uriHasPort, ok := port(uri)
	if !ok {
		return false
	}
	patPort, patHasPort, ok := port(pattern)
	if !ok {
		return false
	}
	switch {
	case patHasPort && patPort == 0:
	case uri.Scheme == "http" && !patHasPort && uriPort == 80:
	case uri.Scheme == "https" && !patHasPort && uriPort == 443:
	case uriHasPort != patHasPort || uriPort != patPort:
		return false
	}

	uriHost := strings.ToLower(uri.Hostname())
	patHost := strings.ToLower(pattern.Hostname())
	if strings.HasPrefix(patHost, "*") {
		suffix := strings.TrimPrefix(strings.TrimLeft(patHost, "*"), ".")
		if uriHost != suffix && !strings.HasSuffix(uriHost, "."+suffix) {
			return false
		}
	} else if uriHost != patHost {
		return false
	}

	uriPath := uri.EscapedPath()
	patPath := pattern.EscapedPath()
	if strings.HasSuffix(patPath, "*") {
		prefix := strings.TrimRight(strings.TrimRight(patPath, "*"), "/")
		if strings.TrimRight(uriPath, "/") != prefix && !strings.HasPrefix(uriPath, prefix+"/") {
			return false
		}
	} else if strings.TrimRight(uriPath, "/") != strings.TrimRight(patPath, "/") {
		return false
	}

	// A path wildcard does not reach the query: a pattern accepts a query
	// only when it spells it out or ends in "?*".
	if uri.RawQuery != "" && pattern.RawQuery != uri.RawQuery && pattern.RawQuery != "*" {
		return false
	}
	if frag := uri.EscapedFragment(); frag != "" {
		if pf := pattern.EscapedFragment(); pf != frag && pf != "*" {
			return false
		}
	}
	return true
}

// port returns the explicit port of u. ok is false for a malformed port.
func port(u *url.URL) (n int, present, ok bool) {
	p := u.Port()
	if p == "" {
		return 0, false, true
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return 0, false, false
	}
	return n, true, true
}

// ValidateRedirectURI checks uri against the client's redirect patterns.
func (e *Engine) ValidateRedirectURI(client domain.Client, uri string) error {
	return MatchURI(uri, client.RedirectURIList(), e.cfg.RedirectURIMaxLength)
}

// ValidatePostLogoutRedirectURI checks uri against the client's
// post-logout patterns.
func (e *Engine) ValidatePostLogoutRedirectURI(client domain.Client, uri string) error {
	return MatchURI(uri, client.PostLogoutRedirectURIList(), e.cfg.RedirectURIMaxLength)
}
