package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
)

var (
	ErrSectorMismatch = errors.New("service: all redirect_uri do not have the same hostname")
	ErrSectorNoOU     = errors.New("service: OU-based authorization requires that the client be within an OU")
	ErrSectorEmpty    = errors.New("service: client has no redirect_uri to derive a sector from")
)

// SectorResolver derives the pairwise sector of a client. Results are cached
// per client revision, so an updated client is resolved again.
type SectorResolver struct {
	store store.Store
	cache *cache.Cache
	group singleflight.Group
}

func NewSectorResolver(st store.Store, ttl time.Duration) *SectorResolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SectorResolver{store: st, cache: cache.New(ttl, 2*ttl)}
}

// Resolve returns the sector identifier of client.
func (r *SectorResolver) Resolve(ctx context.Context, client domain.Client) (string, error) {
	key := client.ID + ":" + strconv.FormatInt(client.UpdatedAt.UnixNano(), 10)
	if v, ok := r.cache.Get(key); ok {
		return v.(string), nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		sector, err := r.resolve(ctx, client)
		if err != nil {
			return "", err
		}
		r.cache.SetDefault(key, sector)
		return sector, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *SectorResolver) resolve(ctx context.Context, client domain.Client) (string, error) {
	switch client.AuthorizationMode {
	case domain.AuthorizationByOU:
		if client.OUID == "" {
			return "", ErrSectorNoOU
		}
		ou, err := r.store.Users().GetOUByID(ctx, client.OUID)
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrSectorNoOU
		}
		if err != nil {
			return "", fmt.Errorf("load ou: %w", err)
		}
		return ou.Slug, nil

	case domain.AuthorizationByService, domain.AuthorizationNone:
		if client.SectorIdentifierURI != "" {
			return urlDomain(client.SectorIdentifierURI), nil
		}
		uris := client.RedirectURIList()
		if len(uris) == 0 {
			return "", ErrSectorEmpty
		}
		sector := urlDomain(uris[0])
		for _, u := range uris[1:] {
			if urlDomain(u) != sector {
				return "", ErrSectorMismatch
			}
		}
		return sector, nil
	}
	return "", fmt.Errorf("service: unknown authorization mode %d", client.AuthorizationMode)
}

// urlDomain is the network location of u without its port.
func urlDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host, _, _ := strings.Cut(u.Host, ":")
	return host
}
