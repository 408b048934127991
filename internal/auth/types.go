package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of authority levels in the portal.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleTecnico    Role = "TECNICO"
)

// ParseRole resolves a role string case-insensitively against the closed
// enumeration. Unknown values fail with ErrInvalidRole.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSupervisor:
		return RoleSupervisor, nil
	case RoleTecnico:
		return RoleTecnico, nil
	default:
		return "", ErrInvalidRole
	}
}

// Valid reports whether the role belongs to the enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleTecnico:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// User is a portal account. Email is unique across the store, normalized to
// lower case before persistence. PasswordHash is never exposed over the API.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
}

// PublicUser carries the account fields safe to return to callers.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Public strips credentials from a user record.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role.String(),
	}
}

// SupervisorLink associates a technician with the supervisor it reports to.
// It exists only for TECNICO accounts and is written in the same transaction
// as the account itself.
type SupervisorLink struct {
	SupervisorID string
	UserID       string
}

func (l SupervisorLink) String() string {
	return fmt.Sprintf("%s->%s", l.UserID, l.SupervisorID)
}
