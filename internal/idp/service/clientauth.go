package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
)

// ClientCredentials are the client credentials found on a token endpoint
// request.
type ClientCredentials struct {
	// FromHeader is set when an Authorization header was sent. ID and
	// Secret are then empty if it was not valid HTTP Basic.
	FromHeader bool

	// InForm is set when client_id was posted.
	InForm bool

	ID     string
	Secret string
}

// AuthenticateClient checks the client_id and client_secret of a token,
// revocation or API request.
func (e *Engine) AuthenticateClient(ctx context.Context, creds ClientCredentials) (domain.Client, error) {
	if !creds.FromHeader && !creds.InForm {
		return domain.Client{}, InvalidRequest("missing client_id")
	}
	if creds.ID == "" {
		return domain.Client{}, InvalidClient("Empty client identifier")
	}
	if creds.Secret == "" {
		return domain.Client{}, InvalidRequest("missing client_secret")
	}

	client, err := e.Store.Clients().GetClientByClientID(ctx, creds.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Client{}, InvalidClient("Wrong client identifier: %s", creds.ID)
	}
	if err != nil {
		return domain.Client{}, fmt.Errorf("load client: %w", err)
	}

	if !cryptox.ConstantTimeEqual(client.Secret, creds.Secret) {
		oerr := InvalidClient("Wrong client secret").WithClient(client.ClientID)
		// Never the secret itself.
		oerr.ExtraInfo = fmt.Sprintf("received a %d byte secret", len(creds.Secret))
		return domain.Client{}, oerr
	}
	return client, nil
}
