package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
)

var (
	// ErrInvalidCredentials hides whether the user or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrNoPasswordHasher   = errors.New("service: no password hasher configured")
)

// Authenticate checks a username (or email) and password, restricted to
// ouID when set.
func (e *Engine) Authenticate(ctx context.Context, username, password, ouID string) (domain.User, error) {
	if e.Passwords == nil {
		return domain.User{}, ErrNoPasswordHasher
	}
	users := e.Store.Users()
	user, err := users.GetUserByUsername(ctx, username, ouID)
	if errors.Is(err, store.ErrNotFound) && strings.Contains(username, "@") {
		user, err = users.GetUserByEmail(ctx, username)
		if err == nil && ouID != "" && user.OUID != ouID {
			err = store.ErrNotFound
		}
	}
	if errors.Is(err, store.ErrNotFound) {
		// Keep timing uniform with a wrong password.
		_, _ = e.Passwords.Hash(password)
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := e.Passwords.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) || errors.Is(err, cryptox.ErrInvalidHash) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	return user, nil
}
