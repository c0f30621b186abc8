package domain

import (
	"sort"
	"strings"
)

// ScopeSet is an unordered set of OAuth2 scopes.
type ScopeSet map[string]struct{}

// ParseScopes splits a whitespace separated scope string.
func ParseScopes(s string) ScopeSet {
	set := make(ScopeSet)
	for _, f := range strings.Fields(s) {
		set[f] = struct{}{}
	}
	return set
}

// NewScopeSet builds a set from individual scopes.
func NewScopeSet(scopes ...string) ScopeSet {
	set := make(ScopeSet, len(scopes))
	for _, s := range scopes {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

func (s ScopeSet) Has(scope string) bool {
	_, ok := s[scope]
	return ok
}

// SubsetOf reports whether every scope of s is in other.
func (s ScopeSet) SubsetOf(other ScopeSet) bool {
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

func (s ScopeSet) Intersect(other ScopeSet) ScopeSet {
	out := make(ScopeSet)
	for k := range s {
		if other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

func (s ScopeSet) Union(other ScopeSet) ScopeSet {
	out := make(ScopeSet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

func (s ScopeSet) Without(scope string) ScopeSet {
	out := make(ScopeSet, len(s))
	for k := range s {
		if k != scope {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted returns the scopes in lexical order.
func (s ScopeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// String joins the sorted scopes with spaces.
func (s ScopeSet) String() string { return strings.Join(s.Sorted(), " ") }
