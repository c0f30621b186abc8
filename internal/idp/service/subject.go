package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
)

// uuidSize is the length of the user UUID at the start of a reversible
// pairwise plaintext.
const uuidSize = 16

// MakeSub computes the sub claim of user for client, optionally scoped to
// one of the user's profiles.
func (e *Engine) MakeSub(ctx context.Context, client domain.Client, user domain.User, profile *domain.Profile) (string, error) {
	switch client.IdentifierPolicy {
	case domain.PolicyUUID:
		return user.UUIDHex(), nil
	case domain.PolicyEmail:
		return user.Email, nil
	case domain.PolicyPairwise:
		sector, err := e.Sectors.Resolve(ctx, client)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrSubjectUnavailable, err)
		}
		h := sha256.New()
		h.Write([]byte(sector))
		h.Write([]byte(user.UUIDHex()))
		h.Write(e.cfg.SecretKey)
		if profile != nil {
			h.Write([]byte(profile.ID))
		}
		return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
	case domain.PolicyPairwiseReversible:
		sector, err := e.Sectors.Resolve(ctx, client)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrSubjectUnavailable, err)
		}
		plaintext := user.UUID[:]
		if profile != nil {
			plaintext = append(append([]byte{}, plaintext...), "#profile-id:"+profile.ID...)
		}
		return cryptox.DeterministicEncrypt(e.cfg.SecretKey, plaintext, sector)
	}
	return "", fmt.Errorf("service: unknown identifier policy %d", client.IdentifierPolicy)
}

// ReverseSub recovers the user UUID from a pairwise-reversible sub. Any
// failure, including a client with another policy, reports false. Bytes
// after the UUID are ignored.
func (e *Engine) ReverseSub(ctx context.Context, client domain.Client, sub string) (uuid.UUID, bool) {
	if client.IdentifierPolicy != domain.PolicyPairwiseReversible || sub == "" {
		return uuid.Nil, false
	}
	sector, err := e.Sectors.Resolve(ctx, client)
	if err != nil {
		return uuid.Nil, false
	}
	plaintext, err := cryptox.DeterministicDecrypt(e.cfg.SecretKey, sub, sector)
	if err != nil || len(plaintext) < uuidSize {
		return uuid.Nil, false
	}
	id, err := uuid.FromBytes(plaintext[:uuidSize])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
