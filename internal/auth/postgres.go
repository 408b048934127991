package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"opsportal.org/internal/ids"
)

const pgErrUniqueViolation = "23505"

// PGStore implements Store on PostgreSQL. Email uniqueness rides on the
// unique index over lower(email); a duplicate insert surfaces as
// ErrEmailTaken so races between concurrent registrations collapse to the
// same outcome as the pre-check.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, u *User, supervisorID string) error {
	if u.ID == "" {
		u.ID = ids.New()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var createdAt time.Time
	err = tx.QueryRowContext(ctx,
		`insert into users(id, email, password_hash, name, role)
		 values($1, $2, $3, $4, $5)
		 returning created_at`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role.String(),
	).Scan(&createdAt)
	if err != nil {
		return mapPGError(err)
	}
	u.CreatedAt = createdAt

	if supervisorID != "" {
		if _, err := tx.ExecContext(ctx,
			`insert into team_members(team_id, user_id) values($1, $2)`,
			supervisorID, u.ID,
		); err != nil {
			return mapPGError(err)
		}
	}
	return tx.Commit()
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`select id, email, password_hash, name, role, created_at
		 from users where lower(email) = lower($1)`, email))
}

func (s *PGStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`select id, email, password_hash, name, role, created_at
		 from users where id = $1`, id))
}

func (s *PGStore) scanUser(row *sql.Row) (*User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

func (s *PGStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from users where lower(email) = lower($1))`, email,
	).Scan(&exists)
	return exists, err
}

func (s *PGStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, email, password_hash, name, role, created_at
		 from users order by created_at asc, id asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var (
			u    User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = Role(role)
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) UpdateRole(ctx context.Context, id string, role Role) error {
	res, err := s.db.ExecContext(ctx,
		`update users set role = $2 where id = $1`, id, role.String())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `select count(*) from users`).Scan(&count)
	return count, err
}

func (s *PGStore) SupervisorOf(ctx context.Context, userID string) (string, error) {
	var supervisorID string
	err := s.db.QueryRowContext(ctx,
		`select team_id from team_members where user_id = $1 limit 1`, userID,
	).Scan(&supervisorID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return supervisorID, nil
}

func (s *PGStore) SupervisorLinks(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `select user_id, team_id from team_members`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make(map[string]string)
	for rows.Next() {
		var userID, supervisorID string
		if err := rows.Scan(&userID, &supervisorID); err != nil {
			return nil, err
		}
		// First link wins when a user somehow has several.
		if _, ok := links[userID]; !ok {
			links[userID] = supervisorID
		}
	}
	return links, rows.Err()
}

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return ErrEmailTaken
	}
	return err
}
