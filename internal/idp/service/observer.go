package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// Event names.
const (
	EventSSORequest       = "sso-request"
	EventSSOSuccess       = "sso-success"
	EventSSOAuthorization = "sso-authorization"
	EventSSORefusal       = "sso-refusal"
	EventTokenIssued      = "token-issued"
	EventTokenRevoked     = "token-revoked"
)

// Event is a notable step of a flow.
type Event struct {
	Name     string
	ClientID string
	UserID   string
	Scopes   []string
	// How the user authenticated, for sso-success.
	How string
	// Grant is the token endpoint grant type, for token-issued.
	Grant string
}

// EventObserver receives flow events. Implementations must not block.
type EventObserver interface {
	OnEvent(ctx context.Context, ev Event)
}

type NopObserver struct{}

func (NopObserver) OnEvent(context.Context, Event) {}

// Observers fans an event out to several observers.
type Observers []EventObserver

func (o Observers) OnEvent(ctx context.Context, ev Event) {
	for _, obs := range o {
		obs.OnEvent(ctx, ev)
	}
}

// SlogObserver logs every event at INFO with the request logger.
type SlogObserver struct{}

func (SlogObserver) OnEvent(ctx context.Context, ev Event) {
	attrs := []any{slog.String("event", ev.Name), slog.String("client_id", ev.ClientID)}
	if ev.UserID != "" {
		attrs = append(attrs, slog.String("user_id", ev.UserID))
	}
	if len(ev.Scopes) > 0 {
		attrs = append(attrs, slog.Any("scopes", ev.Scopes))
	}
	if ev.How != "" {
		attrs = append(attrs, slog.String("how", ev.How))
	}
	if ev.Grant != "" {
		attrs = append(attrs, slog.String("grant_type", ev.Grant))
	}
	slogx.FromContext(ctx).Info("idp_oidc: event", attrs...)
}

// MetricsObserver counts events per name and client.
type MetricsObserver struct {
	events *prometheus.CounterVec
}

func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "idp",
		Name:      "oidc_events_total",
		Help:      "OIDC flow events by name and client",
	}, []string{"event", "client_id"})

	if err := reg.Register(events); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		events = are.ExistingCollector.(*prometheus.CounterVec)
	}
	return &MetricsObserver{events: events}, nil
}

func (m *MetricsObserver) OnEvent(_ context.Context, ev Event) {
	m.events.WithLabelValues(ev.Name, ev.ClientID).Inc()
}
