// Package seed populates an empty store with the demo accounts the portal
// ships with. It is a no-op once any account exists.
package seed

import (
	"context"
	"fmt"

	"opsportal.org/internal/auth"
	"opsportal.org/internal/obs"
)

type demoAccount struct {
	email    string
	password string
	name     string
	role     auth.Role
}

var demoAccounts = []demoAccount{
	{"admin@demo.com", "admin123", "Admin Demo", auth.RoleAdmin},
	{"supervisor@demo.com", "sup123", "Supervisor Demo", auth.RoleSupervisor},
	{"tecnico@demo.com", "tec123", "Técnico Demo", auth.RoleTecnico},
}

// DemoUsers inserts the demo accounts when the store is empty. The technician
// is seeded without a supervisor link: demo data must not depend on the
// directory service being up.
func DemoUsers(ctx context.Context, store auth.Store, hasher *auth.PasswordHasher) error {
	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, acc := range demoAccounts {
		hash, err := hasher.Hash(acc.password)
		if err != nil {
			return fmt.Errorf("hash demo password for %s: %w", acc.email, err)
		}
		u := &auth.User{
			Email:        acc.email,
			PasswordHash: hash,
			Name:         acc.name,
			Role:         acc.role,
		}
		if err := store.Create(ctx, u, ""); err != nil {
			return fmt.Errorf("seed %s: %w", acc.email, err)
		}
	}
	obs.LogEvent("info", "seeded demo accounts", map[string]any{"count": len(demoAccounts)})
	return nil
}
