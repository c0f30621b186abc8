package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            string
	UUID          uuid.UUID
	Username      string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
	PasswordHash  string
	OUID          string
	Attributes    map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UUIDHex is the UUID as 32 lowercase hex digits, the form exposed in subs.
func (u User) UUIDHex() string {
	return strings.ReplaceAll(u.UUID.String(), "-", "")
}

// Profile is an alternate identity of a user (e.g. acting for a company).
type Profile struct {
	ID          string
	UserID      string
	ProfileType string // slug
	Identifier  string
	Email       string
	Data        map[string]any
	CreatedAt   time.Time
}

type OrganizationalUnit struct {
	ID        string
	Slug      string
	Name      string
	CreatedAt time.Time
}
