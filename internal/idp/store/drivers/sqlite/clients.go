package sqlite

import (
	"context"
	"strings"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite/gen"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/idx"
)

type clientsRepo struct {
	q *gen.Queries
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row, err := r.q.GetClientByID(ctx, id)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return mapClient(row), nil
}

func (r *clientsRepo) GetClientByClientID(ctx context.Context, clientID string) (domain.Client, error) {
	row, err := r.q.GetClientByClientID(ctx, clientID)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return mapClient(row), nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.q.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	return mapClients(rows), nil
}

func (r *clientsRepo) ListClientsByPostLogoutURI(ctx context.Context, fragment string) ([]domain.Client, error) {
	if fragment == "" {
		return nil, nil
	}
	rows, err := r.q.ListClientsByPostLogoutURI(ctx, fragment)
	if err != nil {
		return nil, err
	}
	return mapClients(rows), nil
}

func (r *clientsRepo) UpsertClient(ctx context.Context, c domain.Client) error {
	return mapConstraint(r.q.UpsertClient(ctx, gen.UpsertClientParams{
		ID:                           c.ID,
		ClientID:                     c.ClientID,
		Secret:                       c.Secret,
		Name:                         c.Name,
		OuID:                         mapStringNull(c.OUID),
		RedirectUris:                 c.RedirectURIs,
		PostLogoutRedirectUris:       c.PostLogoutRedirectURIs,
		SectorIdentifierUri:          c.SectorIdentifierURI,
		FrontchannelLogoutUri:        c.FrontchannelLogoutURI,
		FrontchannelTimeout:          mapOptionalInt(c.FrontchannelTimeout),
		IdentifierPolicy:             int64(c.IdentifierPolicy),
		IdtokenAlgo:                  int64(c.IDTokenAlgo),
		AuthorizationFlow:            int64(c.AuthorizationFlow),
		AuthorizationMode:            int64(c.AuthorizationMode),
		AlwaysSaveAuthorization:      mapBool(c.AlwaysSaveAuthorization),
		AuthorizationDefaultDuration: int64(c.AuthorizationDefaultDuration),
		IdtokenDuration:              mapOptionalDuration(c.IDTokenDuration),
		AccessTokenDuration:          mapOptionalDuration(c.AccessTokenDuration),
		Scope:                        c.Scope,
		HasApiAccess:                 mapBool(c.HasAPIAccess),
		ActivateUserProfiles:         mapBool(c.ActivateUserProfiles),
		PkceCodeChallenge:            mapBool(c.PKCECodeChallenge),
		UsesRefreshTokens:            mapBool(c.UsesRefreshTokens),
		CreatedAt:                    nanos(c.CreatedAt),
		UpdatedAt:                    nanos(c.UpdatedAt),
	}))
}

func (r *clientsRepo) DeleteClient(ctx context.Context, clientID string) error {
	return expectOne(r.q.DeleteClient(ctx, clientID))
}

func (r *clientsRepo) ListClaims(ctx context.Context, clientID string) ([]domain.ClaimMapping, error) {
	rows, err := r.q.ListClaims(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var out []domain.ClaimMapping
	for _, row := range rows {
		out = append(out, domain.ClaimMapping{
			ID:       row.ID,
			ClientID: row.ClientID,
			Name:     row.Name,
			Value:    row.Value,
			Scopes:   row.Scopes,
		})
	}
	return out, nil
}

func (r *clientsRepo) ReplaceClaims(ctx context.Context, clientID string, claims []domain.ClaimMapping) error {
	if err := r.q.DeleteClaims(ctx, clientID); err != nil {
		return err
	}
	for i, m := range claims {
		id := m.ID
		if id == "" {
			id = idx.New().String()
		}
		err := r.q.CreateClaim(ctx, gen.CreateClaimParams{
			ID:       id,
			ClientID: clientID,
			Name:     m.Name,
			Value:    m.Value,
			Scopes:   strings.TrimSpace(m.Scopes),
			Position: int64(i),
		})
		if err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func mapClients(rows []gen.Client) []domain.Client {
	var out []domain.Client
	for _, row := range rows {
		out = append(out, mapClient(row))
	}
	return out
}

func mapClient(row gen.Client) domain.Client {
	return domain.Client{
		ID:                           row.ID,
		ClientID:                     row.ClientID,
		Secret:                       row.Secret,
		Name:                         row.Name,
		OUID:                         mapNullString(row.OuID),
		RedirectURIs:                 row.RedirectUris,
		PostLogoutRedirectURIs:       row.PostLogoutRedirectUris,
		SectorIdentifierURI:          row.SectorIdentifierUri,
		FrontchannelLogoutURI:        row.FrontchannelLogoutUri,
		FrontchannelTimeout:          mapNullIntPtr(row.FrontchannelTimeout),
		IdentifierPolicy:             domain.IdentifierPolicy(row.IdentifierPolicy),
		IDTokenAlgo:                  domain.IDTokenAlgo(row.IdtokenAlgo),
		AuthorizationFlow:            domain.AuthorizationFlow(row.AuthorizationFlow),
		AuthorizationMode:            domain.AuthorizationMode(row.AuthorizationMode),
		AlwaysSaveAuthorization:      row.AlwaysSaveAuthorization != 0,
		AuthorizationDefaultDuration: int(row.AuthorizationDefaultDuration),
		IDTokenDuration:              mapNullDurationPtr(row.IdtokenDuration),
		AccessTokenDuration:          mapNullDurationPtr(row.AccessTokenDuration),
		Scope:                        row.Scope,
		HasAPIAccess:                 row.HasApiAccess != 0,
		ActivateUserProfiles:         row.ActivateUserProfiles != 0,
		PKCECodeChallenge:            row.PkceCodeChallenge != 0,
		UsesRefreshTokens:            row.UsesRefreshTokens != 0,
		CreatedAt:                    fromNanos(row.CreatedAt),
		UpdatedAt:                    fromNanos(row.UpdatedAt),
	}
}
