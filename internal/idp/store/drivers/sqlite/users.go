package sqlite

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return mapUserRow(r.q.GetUserByID(ctx, id))
}

// GetUserByUUID accepts both the dashed and the 32 hex digit forms.
func (r *usersRepo) GetUserByUUID(ctx context.Context, u string) (domain.User, error) {
	parsed, err := uuid.Parse(u)
	if err != nil {
		return domain.User{}, store.ErrNotFound
	}
	return mapUserRow(r.q.GetUserByUUID(ctx, parsed.String()))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return mapUserRow(r.q.GetUserByEmail(ctx, email))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username, ouID string) (domain.User, error) {
	if ouID == "" {
		return mapUserRow(r.q.GetUserByUsername(ctx, username))
	}
	return mapUserRow(r.q.GetUserByUsernameInOU(ctx, gen.GetUserByUsernameInOUParams{
		Username: username,
		OuID:     mapStringNull(ouID),
	}))
}

func (r *usersRepo) UpsertUser(ctx context.Context, u domain.User) error {
	attrs := u.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	raw, err := marshalJSON(attrs)
	if err != nil {
		return err
	}
	return mapConstraint(r.q.UpsertUser(ctx, gen.UpsertUserParams{
		ID:            u.ID,
		Uuid:          u.UUID.String(),
		Username:      u.Username,
		Email:         u.Email,
		EmailVerified: mapBool(u.EmailVerified),
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		PasswordHash:  u.PasswordHash,
		OuID:          mapStringNull(u.OUID),
		Attributes:    raw,
		CreatedAt:     nanos(u.CreatedAt),
		UpdatedAt:     nanos(u.UpdatedAt),
	}))
}

func mapUserRow(row gen.User, err error) (domain.User, error) {
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	parsed, err := uuid.Parse(row.Uuid)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		ID:            row.ID,
		UUID:          parsed,
		Username:      row.Username,
		Email:         row.Email,
		EmailVerified: row.EmailVerified != 0,
		FirstName:     row.FirstName,
		LastName:      row.LastName,
		PasswordHash:  row.PasswordHash,
		OUID:          mapNullString(row.OuID),
		CreatedAt:     fromNanos(row.CreatedAt),
		UpdatedAt:     fromNanos(row.UpdatedAt),
	}
	if err := json.Unmarshal([]byte(row.Attributes), &u.Attributes); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetProfile(ctx context.Context, userID, profileID string) (domain.Profile, error) {
	row, err := r.q.GetProfile(ctx, gen.GetProfileParams{
		ID:     profileID,
		UserID: userID,
	})
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return mapProfile(row)
}

func (r *usersRepo) ListProfiles(ctx context.Context, userID string) ([]domain.Profile, error) {
	rows, err := r.q.ListProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []domain.Profile
	for _, row := range rows {
		p, err := mapProfile(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *usersRepo) UpsertProfile(ctx context.Context, p domain.Profile) error {
	raw, err := marshalJSON(p.Data)
	if err != nil {
		return err
	}
	return mapConstraint(r.q.UpsertProfile(ctx, gen.UpsertProfileParams{
		ID:          p.ID,
		UserID:      p.UserID,
		ProfileType: p.ProfileType,
		Identifier:  p.Identifier,
		Email:       p.Email,
		Data:        raw,
		CreatedAt:   nanos(p.CreatedAt),
	}))
}

func mapProfile(row gen.Profile) (domain.Profile, error) {
	p := domain.Profile{
		ID:          row.ID,
		UserID:      row.UserID,
		ProfileType: row.ProfileType,
		Identifier:  row.Identifier,
		Email:       row.Email,
		CreatedAt:   fromNanos(row.CreatedAt),
	}
	if err := json.Unmarshal([]byte(row.Data), &p.Data); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

func (r *usersRepo) GetOUByID(ctx context.Context, id string) (domain.OrganizationalUnit, error) {
	row, err := r.q.GetOUByID(ctx, id)
	if err != nil {
		return domain.OrganizationalUnit{}, mapNotFound(err)
	}
	return mapOU(row), nil
}

func (r *usersRepo) GetOUBySlug(ctx context.Context, slug string) (domain.OrganizationalUnit, error) {
	row, err := r.q.GetOUBySlug(ctx, slug)
	if err != nil {
		return domain.OrganizationalUnit{}, mapNotFound(err)
	}
	return mapOU(row), nil
}

func (r *usersRepo) UpsertOU(ctx context.Context, ou domain.OrganizationalUnit) error {
	return mapConstraint(r.q.UpsertOU(ctx, gen.UpsertOUParams{
		ID:        ou.ID,
		Slug:      ou.Slug,
		Name:      ou.Name,
		CreatedAt: nanos(ou.CreatedAt),
	}))
}

func mapOU(row gen.OrganizationalUnit) domain.OrganizationalUnit {
	return domain.OrganizationalUnit{
		ID:        row.ID,
		Slug:      row.Slug,
		Name:      row.Name,
		CreatedAt: fromNanos(row.CreatedAt),
	}
}
