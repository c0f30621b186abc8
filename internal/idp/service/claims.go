package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"text/template"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// VerifiedSuffix marks the companion attribute telling a value was verified.
const VerifiedSuffix = ":verified"

// emptyStringClaims default to "" instead of null when a mapped claim could
// not be produced.
var emptyStringClaims = map[string]struct{}{
	"given_name":         {},
	"family_name":        {},
	"full_name":          {},
	"name":               {},
	"middle_name":        {},
	"nickname":           {},
	"email":              {},
	"preferred_username": {},
}

// TemplateRenderer renders claim templates against the attribute context.
type TemplateRenderer interface {
	Render(tmpl string, attributes map[string]any) (string, error)
}

// AttributeSource provides the raw attributes claims are mapped from.
type AttributeSource interface {
	Attributes(ctx context.Context, client domain.Client, user domain.User) (map[string]any, error)
}

// ClaimsHook may modify the completed claim set in place.
type ClaimsHook interface {
	ModifyClaims(ctx context.Context, client domain.Client, user domain.User, scopes domain.ScopeSet, claims map[string]any, profile *domain.Profile)
}

// SubjectMaker computes the sub claim.
type SubjectMaker interface {
	MakeSub(ctx context.Context, client domain.Client, user domain.User, profile *domain.Profile) (string, error)
}

// ClaimsAssembler builds UserInfo and ID token payloads.
type ClaimsAssembler struct {
	Issuer          string
	ProfileOverride map[string]string
	Subjects        SubjectMaker
	Attributes      AttributeSource
	Renderer        TemplateRenderer
	Hooks           []ClaimsHook

	// Mappings loads the client claim mappings. Defaults to the store when
	// the assembler is built by NewEngine.
	Mappings func(ctx context.Context, clientID string) ([]domain.ClaimMapping, error)
}

// UserInfo assembles the claims client may see about user for scopes.
func (a *ClaimsAssembler) UserInfo(ctx context.Context, client domain.Client, user domain.User, scopes domain.ScopeSet, profile *domain.Profile) (map[string]any, error) {
	log := slogx.FromContext(ctx)
	info := make(map[string]any)

	if scopes.Has("openid") {
		sub, err := a.Subjects.MakeSub(ctx, client, user, profile)
		if err != nil {
			return nil, err
		}
		info["sub"] = sub
	}

	attributes, err := a.Attributes.Attributes(ctx, client, user)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}
	mappings, err := a.Mappings(ctx, client.ID)
	if err != nil {
		return nil, fmt.Errorf("load claims: %w", err)
	}

	shown := make([]string, 0, len(mappings))
	for _, m := range mappings {
		if m.Name == "" || len(domain.NewScopeSet(m.ScopeList()...).Intersect(scopes)) == 0 {
			continue
		}

		var value any
		if m.IsTemplate() {
			rendered, err := a.Renderer.Render(m.Value, attributes)
			if err != nil {
				// A broken template drops its claim entirely, default included.
				log.Warn("idp_oidc: could not render claim",
					slog.String("claim", m.Name), slog.Any("error", err))
				continue
			}
			shown = append(shown, m.Name)
			value = rendered
		} else {
			shown = append(shown, m.Name)
			v, ok := attributes[m.Value]
			if !ok {
				continue
			}
			value = v
		}
		if value == nil {
			continue
		}
		info[m.Name] = cleanClaimValue(value)

		if _, ok := attributes[m.Value+VerifiedSuffix]; ok {
			info[m.Name+"_verified"] = true
		}
	}

	for _, name := range shown {
		if _, ok := info[name]; ok {
			continue
		}
		if _, ok := emptyStringClaims[name]; ok {
			info[name] = ""
		} else {
			info[name] = nil
		}
	}

	if profile != nil {
		for attr, key := range a.ProfileOverride {
			v := profileAttribute(profile, attr)
			if _, ok := info[key]; ok && v != "" {
				info[key] = v
			}
		}
		info["profile_identifier"] = profile.Identifier
		info["profile_type"] = profile.ProfileType
		for k, v := range flattenData(profile.Data) {
			info[k] = v
		}
	}

	info["iss"] = a.Issuer
	for _, h := range a.Hooks {
		h.ModifyClaims(ctx, client, user, scopes, info, profile)
	}
	return info, nil
}

func profileAttribute(p *domain.Profile, attr string) string {
	switch attr {
	case "email":
		return p.Email
	case "identifier":
		return p.Identifier
	case "profile_type":
		return p.ProfileType
	}
	return ""
}

// flattenData merges nested maps into parent_child keys.
func flattenData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		nested, ok := v.(map[string]any)
		if !ok {
			out[k] = v
			continue
		}
		for k2, v2 := range flattenData(nested) {
			out[k+"_"+k2] = v2
		}
	}
	return out
}

// cleanClaimValue passes scalars through, recurses into containers and
// stringifies anything else.
func cleanClaimValue(v any) any {
	switch x := v.(type) {
	case string, bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return x
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = cleanClaimValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = cleanClaimValue(vv)
		}
		return out
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = cleanClaimValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = cleanClaimValue(iter.Value().Interface())
		}
		return out
	}
	return fmt.Sprint(v)
}

// GoTemplateRenderer renders text/template claims such as
// "{{ .first_name }} {{ .last_name }}". Missing keys are errors.
type GoTemplateRenderer struct{}

func NewGoTemplateRenderer() GoTemplateRenderer { return GoTemplateRenderer{} }

func (GoTemplateRenderer) Render(tmpl string, attributes map[string]any) (string, error) {
	t, err := template.New("claim").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := t.Execute(&b, attributes); err != nil {
		return "", err
	}
	return b.String(), nil
}

// StoreAttributeSource exposes the built-in user fields, the user's OU slug
// and custom attributes.
type StoreAttributeSource struct {
	store store.Store
}

func NewStoreAttributeSource(st store.Store) *StoreAttributeSource {
	return &StoreAttributeSource{store: st}
}

func (s *StoreAttributeSource) Attributes(ctx context.Context, _ domain.Client, user domain.User) (map[string]any, error) {
	attrs := make(map[string]any, len(user.Attributes)+8)
	for k, v := range user.Attributes {
		attrs[k] = v
	}
	attrs["uuid"] = user.UUIDHex()
	attrs["username"] = user.Username
	attrs["email"] = user.Email
	attrs["first_name"] = user.FirstName
	attrs["last_name"] = user.LastName
	attrs["full_name"] = strings.TrimSpace(user.FirstName + " " + user.LastName)
	if user.EmailVerified {
		attrs["email"+VerifiedSuffix] = true
	}
	if user.OUID != "" {
		ou, err := s.store.Users().GetOUByID(ctx, user.OUID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if err == nil {
			attrs["ou_slug"] = ou.Slug
		}
	}
	return attrs, nil
}
