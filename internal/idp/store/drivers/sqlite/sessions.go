package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite/gen"
)

type sessionsRepo struct {
	q *gen.Queries
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	raw, err := marshalEntries(s.OIDCSessions)
	if err != nil {
		return err
	}
	return mapConstraint(r.q.CreateSession(ctx, gen.CreateSessionParams{
		Key:          s.Key,
		UserID:       s.UserID,
		AuthTime:     nanos(s.AuthTime),
		AuthNonce:    s.AuthNonce,
		AuthHow:      s.AuthHow,
		ExpiresAt:    nanos(s.ExpiresAt),
		OidcSessions: raw,
		CreatedAt:    nanos(s.CreatedAt),
	}))
}

func (r *sessionsRepo) GetSession(ctx context.Context, key string, now time.Time) (domain.Session, error) {
	row, err := r.q.GetSession(ctx, gen.GetSessionParams{
		Key: key,
		Now: nanos(now),
	})
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return mapSession(row)
}

func (r *sessionsRepo) UpdateOIDCSessions(ctx context.Context, key string, entries map[string]domain.FrontchannelEntry) error {
	raw, err := marshalEntries(entries)
	if err != nil {
		return err
	}
	return expectOne(r.q.UpdateOIDCSessions(ctx, gen.UpdateOIDCSessionsParams{
		OidcSessions: raw,
		Key:          key,
	}))
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, key string) error {
	return r.q.DeleteSession(ctx, key)
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	return r.q.DeleteExpiredSessions(ctx, nanos(now))
}

func marshalEntries(entries map[string]domain.FrontchannelEntry) (string, error) {
	if entries == nil {
		entries = map[string]domain.FrontchannelEntry{}
	}
	return marshalJSON(entries)
}

func mapSession(row gen.Session) (domain.Session, error) {
	s := domain.Session{
		Key:       row.Key,
		UserID:    row.UserID,
		AuthTime:  fromNanos(row.AuthTime),
		AuthNonce: row.AuthNonce,
		AuthHow:   row.AuthHow,
		ExpiresAt: fromNanos(row.ExpiresAt),
		CreatedAt: fromNanos(row.CreatedAt),
	}
	if err := json.Unmarshal([]byte(row.OidcSessions), &s.OIDCSessions); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}
