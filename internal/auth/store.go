package auth

import "context"

// Store describes persistence for accounts and supervisor links. Email
// uniqueness is enforced by the store itself, not only by the registration
// pre-check, so concurrent duplicate inserts surface as ErrEmailTaken.
type Store interface {
	// Create persists the user and, when supervisorID is non-empty, the
	// supervisor link in the same atomic unit. On failure neither persists.
	Create(ctx context.Context, u *User, supervisorID string) error

	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id string) error
	UpdateRole(ctx context.Context, id string, role Role) error
	Count(ctx context.Context) (int, error)

	// SupervisorOf returns the supervisor id linked to the user, or
	// ErrNotFound when the user has no link.
	SupervisorOf(ctx context.Context, userID string) (string, error)

	// SupervisorLinks returns every link keyed by user id.
	SupervisorLinks(ctx context.Context) (map[string]string, error)
}
