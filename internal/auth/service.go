package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"opsportal.org/internal/directory"
)

// LoginMode selects the login response strategy. Token deployments answer
// with a signed session token; direct deployments answer with identity
// fields and rely on the caller trusting the response body.
type LoginMode string

const (
	LoginModeToken  LoginMode = "token"
	LoginModeDirect LoginMode = "direct"
)

// SupervisorDirectory is the cross-service check that a claimed supervisor
// identity exists before a technician is linked to it.
type SupervisorDirectory interface {
	FetchByID(ctx context.Context, id string) (directory.Supervisor, error)
}

// Service orchestrates credential verification, session-token issuance and
// role-constrained registration.
type Service struct {
	store     Store
	hasher    *PasswordHasher
	tokens    *TokenIssuer
	directory SupervisorDirectory
	mode      LoginMode
}

// NewService wires the auth subsystem. tokens may be nil only in direct mode.
func NewService(store Store, hasher *PasswordHasher, tokens *TokenIssuer, dir SupervisorDirectory, mode LoginMode) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if hasher == nil {
		return nil, errors.New("password hasher is required")
	}
	if dir == nil {
		return nil, errors.New("supervisor directory is required")
	}
	switch mode {
	case LoginModeToken:
		if tokens == nil {
			return nil, errors.New("token mode requires a token issuer")
		}
	case LoginModeDirect:
	default:
		return nil, errors.New("unknown login mode")
	}
	return &Service{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		directory: dir,
		mode:      mode,
	}, nil
}

// Mode reports the configured login response strategy.
func (s *Service) Mode() LoginMode { return s.mode }

// LoginResult carries the successful login payload. Token fields are only
// populated in token mode.
type LoginResult struct {
	User      PublicUser
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials in a single pass. Unknown email and wrong
// password are indistinguishable to the caller. Success has no side effects.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !s.hasher.Matches(password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	result := LoginResult{User: user.Public()}
	if s.mode == LoginModeToken {
		token, expiresAt, err := s.tokens.Issue(user.Email, user.Role)
		if err != nil {
			return LoginResult{}, err
		}
		result.Token = token
		result.ExpiresAt = expiresAt
	}
	return result, nil
}

// RegisterInput is the raw registration request before validation.
type RegisterInput struct {
	Email        string
	Password     string
	Name         string
	Role         string
	SupervisorID string
}

// RegisterResult is the created account plus, in token mode, a session token.
type RegisterResult struct {
	User      PublicUser
	Token     string
	ExpiresAt time.Time
}

// Register validates role-specific constraints, verifies the supervisor link
// for technicians against the directory, and persists the account (and link)
// atomically.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	email := NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" || strings.TrimSpace(in.Role) == "" {
		return RegisterResult{}, ErrMissingFields
	}

	// Pre-check for a friendly 409; the store's uniqueness constraint closes
	// the race between this check and the insert.
	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return RegisterResult{}, err
	}
	if exists {
		return RegisterResult{}, ErrEmailTaken
	}

	role, err := ParseRole(in.Role)
	if err != nil {
		return RegisterResult{}, err
	}

	supervisorID := strings.TrimSpace(in.SupervisorID)
	if role == RoleTecnico {
		if supervisorID == "" {
			return RegisterResult{}, ErrSupervisorRequired
		}
		if _, err := s.directory.FetchByID(ctx, supervisorID); err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				return RegisterResult{}, ErrSupervisorNotFound
			}
			return RegisterResult{}, ErrDirectoryUnavailable
		}
	} else {
		supervisorID = ""
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return RegisterResult{}, err
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	if err := s.store.Create(ctx, user, supervisorID); err != nil {
		return RegisterResult{}, err
	}

	result := RegisterResult{User: user.Public()}
	if s.mode == LoginModeToken {
		token, expiresAt, err := s.tokens.Issue(user.Email, user.Role)
		if err != nil {
			return RegisterResult{}, err
		}
		result.Token = token
		result.ExpiresAt = expiresAt
	}
	return result, nil
}

// Identify validates a session token and resolves the account it names.
// A token for a subject that no longer exists fails exactly like a bad
// token, so validation never reveals whether the subject exists.
func (s *Service) Identify(ctx context.Context, token string) (PublicUser, error) {
	if s.tokens == nil {
		return PublicUser{}, ErrInvalidToken
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return PublicUser{}, ErrInvalidToken
	}
	user, err := s.store.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PublicUser{}, ErrInvalidToken
		}
		return PublicUser{}, err
	}
	return user.Public(), nil
}

// UserWithTeam is an account joined with its supervisor link, the shape the
// admin listing returns.
type UserWithTeam struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	SupervisorID string `json:"supervisorId,omitempty"`
	TeamID       string `json:"teamId,omitempty"`
}

// ListUsers returns every account with its supervisor link when present.
func (s *Service) ListUsers(ctx context.Context) ([]UserWithTeam, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.store.SupervisorLinks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserWithTeam, 0, len(users))
	for _, u := range users {
		supervisorID := links[u.ID]
		out = append(out, UserWithTeam{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Role:         u.Role.String(),
			SupervisorID: supervisorID,
			TeamID:       supervisorID,
		})
	}
	return out, nil
}

// DeleteUser removes the account. Links are cascaded by the store; role
// changes and deletions may orphan links, an accepted limitation.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return s.store.Delete(ctx, id)
}

// ChangeRole updates the account's role and returns the fresh joined record.
func (s *Service) ChangeRole(ctx context.Context, id, rawRole string) (UserWithTeam, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return UserWithTeam{}, ErrNotFound
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		return UserWithTeam{}, err
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return UserWithTeam{}, err
	}
	if err := s.store.UpdateRole(ctx, id, role); err != nil {
		return UserWithTeam{}, err
	}
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return UserWithTeam{}, err
	}
	supervisorID, err := s.store.SupervisorOf(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return UserWithTeam{}, err
	}
	return UserWithTeam{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role.String(),
		SupervisorID: supervisorID,
		TeamID:       supervisorID,
	}, nil
}

// NormalizeEmail trims and lower-cases an email for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
