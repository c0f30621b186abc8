package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/idx"
)

// Fixtures is the YAML provisioning document. Every entry is upserted by its
// natural key: OU slug, username within its OU, client_id.
type Fixtures struct {
	OUs     []OUFixture     `yaml:"ous"`
	Users   []UserFixture   `yaml:"users"`
	Clients []ClientFixture `yaml:"clients"`
}

type OUFixture struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

type UserFixture struct {
	Username      string           `yaml:"username"`
	UUID          string           `yaml:"uuid"`
	Email         string           `yaml:"email"`
	EmailVerified bool             `yaml:"email_verified"`
	FirstName     string           `yaml:"first_name"`
	LastName      string           `yaml:"last_name"`
	Password      string           `yaml:"password"`
	OU            string           `yaml:"ou"`
	Attributes    map[string]any   `yaml:"attributes"`
	Profiles      []ProfileFixture `yaml:"profiles"`
}

type ProfileFixture struct {
	Type       string         `yaml:"type"`
	Identifier string         `yaml:"identifier"`
	Email      string         `yaml:"email"`
	Data       map[string]any `yaml:"data"`
}

type ClientFixture struct {
	ClientID                     string         `yaml:"client_id"`
	Secret                       string         `yaml:"secret"`
	Name                         string         `yaml:"name"`
	OU                           string         `yaml:"ou"`
	RedirectURIs                 []string       `yaml:"redirect_uris"`
	PostLogoutRedirectURIs       []string       `yaml:"post_logout_redirect_uris"`
	SectorIdentifierURI          string         `yaml:"sector_identifier_uri"`
	FrontchannelLogoutURI        string         `yaml:"frontchannel_logout_uri"`
	FrontchannelTimeout          *int           `yaml:"frontchannel_timeout"`
	IdentifierPolicy             string         `yaml:"identifier_policy"`
	IDTokenAlgo                  string         `yaml:"idtoken_algo"`
	AuthorizationFlow            string         `yaml:"authorization_flow"`
	AuthorizationMode            string         `yaml:"authorization_mode"`
	AlwaysSaveAuthorization      bool           `yaml:"always_save_authorization"`
	AuthorizationDefaultDuration int            `yaml:"authorization_default_duration"`
	IDTokenDuration              string         `yaml:"idtoken_duration"`
	AccessTokenDuration          string         `yaml:"access_token_duration"`
	Scope                        string         `yaml:"scope"`
	HasAPIAccess                 bool           `yaml:"has_api_access"`
	ActivateUserProfiles         bool           `yaml:"activate_user_profiles"`
	PKCECodeChallenge            bool           `yaml:"pkce_code_challenge"`
	UsesRefreshTokens            bool           `yaml:"uses_refresh_tokens"`
	Claims                       []ClaimFixture `yaml:"claims"`
}

type ClaimFixture struct {
	Name   string   `yaml:"name"`
	Value  string   `yaml:"value"`
	Scopes []string `yaml:"scopes"`
}

// ProvisionReport counts the upserted rows.
type ProvisionReport struct {
	OUs      int
	Users    int
	Profiles int
	Clients  int
}

// ParseFixtures decodes a fixtures document, rejecting unknown keys.
func ParseFixtures(r io.Reader) (Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	return f, nil
}

// Provisioner writes fixtures to the store. Clients go through
// Engine.ValidateClient before being saved.
type Provisioner struct {
	Store  store.Store
	Engine *service.Engine
	Hasher *cryptox.PasswordHasher
	Now    func() time.Time
}

// ProvisionFile loads and applies the fixtures file at path.
func (p *Provisioner) ProvisionFile(ctx context.Context, path string) (ProvisionReport, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return ProvisionReport{}, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()

	fixtures, err := ParseFixtures(f)
	if err != nil {
		return ProvisionReport{}, err
	}
	return p.Provision(ctx, fixtures)
}

// Provision upserts OUs, then users and their profiles, then clients and
// their claims.
func (p *Provisioner) Provision(ctx context.Context, f Fixtures) (ProvisionReport, error) {
	var report ProvisionReport
	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now().UTC()
	}

	for _, fx := range f.OUs {
		if err := p.upsertOU(ctx, fx, now); err != nil {
			return report, fmt.Errorf("ou %q: %w", fx.Slug, err)
		}
		report.OUs++
	}

	for _, fx := range f.Users {
		n, err := p.upsertUser(ctx, fx, now)
		if err != nil {
			return report, fmt.Errorf("user %q: %w", fx.Username, err)
		}
		report.Users++
		report.Profiles += n
	}

	for _, fx := range f.Clients {
		if err := p.upsertClient(ctx, fx, now); err != nil {
			return report, fmt.Errorf("client %q: %w", fx.ClientID, err)
		}
		report.Clients++
	}

	return report, nil
}

func (p *Provisioner) upsertOU(ctx context.Context, fx OUFixture, now time.Time) error {
	if fx.Slug == "" {
		return errors.New("slug is required")
	}
	ou := domain.OrganizationalUnit{ID: idx.New().String(), Slug: fx.Slug, Name: fx.Name, CreatedAt: now}
	existing, err := p.Store.Users().GetOUBySlug(ctx, fx.Slug)
	switch {
	case err == nil:
		ou.ID = existing.ID
		ou.CreatedAt = existing.CreatedAt
	case !errors.Is(err, store.ErrNotFound):
		return err
	}
	if ou.Name == "" {
		ou.Name = fx.Slug
	}
	return p.Store.Users().UpsertOU(ctx, ou)
}

func (p *Provisioner) resolveOU(ctx context.Context, slug string) (string, error) {
	if slug == "" {
		return "", nil
	}
	ou, err := p.Store.Users().GetOUBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("unknown ou %q", slug)
	}
	if err != nil {
		return "", err
	}
	return ou.ID, nil
}

func (p *Provisioner) upsertUser(ctx context.Context, fx UserFixture, now time.Time) (int, error) {
	if fx.Username == "" {
		return 0, errors.New("username is required")
	}
	ouID, err := p.resolveOU(ctx, fx.OU)
	if err != nil {
		return 0, err
	}

	user := domain.User{
		ID:            idx.New().String(),
		UUID:          uuid.New(),
		Username:      fx.Username,
		Email:         fx.Email,
		EmailVerified: fx.EmailVerified,
		FirstName:     fx.FirstName,
		LastName:      fx.LastName,
		OUID:          ouID,
		Attributes:    fx.Attributes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	existing, err := p.Store.Users().GetUserByUsername(ctx, fx.Username, ouID)
	switch {
	case err == nil:
		user.ID = existing.ID
		user.UUID = existing.UUID
		user.PasswordHash = existing.PasswordHash
		user.CreatedAt = existing.CreatedAt
	case !errors.Is(err, store.ErrNotFound):
		return 0, err
	}

	if fx.UUID != "" {
		if user.UUID, err = uuid.Parse(fx.UUID); err != nil {
			return 0, fmt.Errorf("invalid uuid: %w", err)
		}
	}
	if fx.Password != "" {
		if p.Hasher == nil {
			return 0, errors.New("a password hasher is required to provision passwords")
		}
		if user.PasswordHash, err = p.Hasher.Hash(fx.Password); err != nil {
			return 0, err
		}
	}

	if err := p.Store.Users().UpsertUser(ctx, user); err != nil {
		return 0, err
	}

	profiles, err := p.Store.Users().ListProfiles(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	for _, pf := range fx.Profiles {
		if pf.Type == "" {
			return 0, errors.New("profile type is required")
		}
		profile := domain.Profile{
			ID:          idx.New().String(),
			UserID:      user.ID,
			ProfileType: pf.Type,
			Identifier:  pf.Identifier,
			Email:       pf.Email,
			Data:        pf.Data,
			CreatedAt:   now,
		}
		for _, ex := range profiles {
			if ex.ProfileType == pf.Type && ex.Identifier == pf.Identifier {
				profile.ID = ex.ID
				profile.CreatedAt = ex.CreatedAt
				break
			}
		}
		if err := p.Store.Users().UpsertProfile(ctx, profile); err != nil {
			return 0, err
		}
	}
	return len(fx.Profiles), nil
}

func (p *Provisioner) upsertClient(ctx context.Context, fx ClientFixture, now time.Time) error {
	if fx.ClientID == "" {
		return errors.New("client_id is required")
	}
	client, err := fx.toDomain()
	if err != nil {
		return err
	}
	if client.OUID, err = p.resolveOU(ctx, fx.OU); err != nil {
		return err
	}

	client.ID = idx.New().String()
	client.CreatedAt = now
	client.UpdatedAt = now
	existing, err := p.Store.Clients().GetClientByClientID(ctx, fx.ClientID)
	switch {
	case err == nil:
		client.ID = existing.ID
		client.CreatedAt = existing.CreatedAt
	case !errors.Is(err, store.ErrNotFound):
		return err
	}
	if client.Secret == "" {
		if client.Secret, err = cryptox.GenerateToken(cryptox.TokenSize256); err != nil {
			return err
		}
	}

	if client, err = p.Engine.ValidateClient(ctx, client); err != nil {
		return err
	}
	if err := p.Store.Clients().UpsertClient(ctx, client); err != nil {
		return err
	}

	claims := make([]domain.ClaimMapping, 0, len(fx.Claims))
	for _, c := range fx.Claims {
		if c.Name == "" {
			return errors.New("claim name is required")
		}
		claims = append(claims, domain.ClaimMapping{
			ClientID: client.ID,
			Name:     c.Name,
			Value:    c.Value,
			Scopes:   strings.Join(c.Scopes, ","),
		})
	}
	return p.Store.Clients().ReplaceClaims(ctx, client.ID, claims)
}

func (fx ClientFixture) toDomain() (domain.Client, error) {
	c := domain.Client{
		ClientID:                     fx.ClientID,
		Secret:                       fx.Secret,
		Name:                         fx.Name,
		RedirectURIs:                 strings.Join(fx.RedirectURIs, "\n"),
		PostLogoutRedirectURIs:       strings.Join(fx.PostLogoutRedirectURIs, "\n"),
		SectorIdentifierURI:          fx.SectorIdentifierURI,
		FrontchannelLogoutURI:        fx.FrontchannelLogoutURI,
		FrontchannelTimeout:          fx.FrontchannelTimeout,
		AlwaysSaveAuthorization:      fx.AlwaysSaveAuthorization,
		AuthorizationDefaultDuration: fx.AuthorizationDefaultDuration,
		Scope:                        fx.Scope,
		HasAPIAccess:                 fx.HasAPIAccess,
		ActivateUserProfiles:         fx.ActivateUserProfiles,
		PKCECodeChallenge:            fx.PKCECodeChallenge,
		UsesRefreshTokens:            fx.UsesRefreshTokens,
	}
	if c.Name == "" {
		c.Name = fx.ClientID
	}

	var err error
	if c.IdentifierPolicy, err = parseIdentifierPolicy(fx.IdentifierPolicy); err != nil {
		return c, err
	}
	if c.IDTokenAlgo, err = parseIDTokenAlgo(fx.IDTokenAlgo); err != nil {
		return c, err
	}
	if c.AuthorizationFlow, err = parseAuthorizationFlow(fx.AuthorizationFlow); err != nil {
		return c, err
	}
	if c.AuthorizationMode, err = parseAuthorizationMode(fx.AuthorizationMode); err != nil {
		return c, err
	}
	if c.IDTokenDuration, err = parseOptionalDuration("idtoken_duration", fx.IDTokenDuration); err != nil {
		return c, err
	}
	if c.AccessTokenDuration, err = parseOptionalDuration("access_token_duration", fx.AccessTokenDuration); err != nil {
		return c, err
	}
	return c, nil
}

func parseIdentifierPolicy(s string) (domain.IdentifierPolicy, error) {
	switch s {
	case "", "pairwise":
		return domain.PolicyPairwise, nil
	case "uuid":
		return domain.PolicyUUID, nil
	case "email":
		return domain.PolicyEmail, nil
	case "pairwise-reversible":
		return domain.PolicyPairwiseReversible, nil
	}
	return 0, fmt.Errorf("unknown identifier_policy %q", s)
}

func parseIDTokenAlgo(s string) (domain.IDTokenAlgo, error) {
	switch strings.ToLower(s) {
	case "", "rsa", "rs256":
		return domain.AlgoRSA, nil
	case "hmac", "hs256":
		return domain.AlgoHMAC, nil
	case "ec", "es256":
		return domain.AlgoEC, nil
	}
	return 0, fmt.Errorf("unknown idtoken_algo %q", s)
}

func parseAuthorizationFlow(s string) (domain.AuthorizationFlow, error) {
	switch s {
	case "", "authorization-code":
		return domain.FlowAuthorizationCode, nil
	case "implicit":
		return domain.FlowImplicit, nil
	case "password":
		return domain.FlowResourceOwnerCred, nil
	}
	return 0, fmt.Errorf("unknown authorization_flow %q", s)
}

func parseAuthorizationMode(s string) (domain.AuthorizationMode, error) {
	switch s {
	case "", "by-service":
		return domain.AuthorizationByService, nil
	case "by-ou":
		return domain.AuthorizationByOU, nil
	case "none":
		return domain.AuthorizationNone, nil
	}
	return 0, fmt.Errorf("unknown authorization_mode %q", s)
}

func parseOptionalDuration(field, s string) (*time.Duration, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return &d, nil
}
