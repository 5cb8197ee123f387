package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Repository persists user records.
type Repository interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
	// FindByID returns ErrNotFound when no record has the id.
	FindByID(ctx context.Context, id int64) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	// Save inserts u when u.ID is zero and updates the stored record otherwise.
	Save(ctx context.Context, u *User) (*User, error)
	DeleteByID(ctx context.Context, id int64) error
}

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	emailUniqueConstraint    = "users_email_key"
	usernameUniqueConstraint = "users_username_key"
)

type postgresRepository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check user %d existence: %w", id, err)
	}
	return exists, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, full_name, username, email, encrypted_password, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.FullName,
		&u.Username,
		&u.Email,
		&u.EncryptedPassword,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by id %d: %w", id, err)
	}

	return &u, nil
}

func (r *postgresRepository) FindAll(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, full_name, username, email, encrypted_password, created_at, updated_at
		FROM users
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID,
			&u.FullName,
			&u.Username,
			&u.Email,
			&u.EncryptedPassword,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating users: %w", err)
	}

	return users, nil
}

func (r *postgresRepository) Save(ctx context.Context, u *User) (*User, error) {
	if u.ID == 0 {
		return r.insert(ctx, u)
	}
	return r.update(ctx, u)
}

func (r *postgresRepository) insert(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (full_name, username, email, encrypted_password)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	saved := *u
	err := r.db.QueryRow(ctx, query, u.FullName, u.Username, u.Email, u.EncryptedPassword).
		Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("repository: failed to insert user: %w", err)
	}

	return &saved, nil
}

func (r *postgresRepository) update(ctx context.Context, u *User) (*User, error) {
	query := `
		UPDATE users
		SET full_name = $1, username = $2, email = $3, encrypted_password = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING created_at, updated_at
	`

	saved := *u
	err := r.db.QueryRow(ctx, query, u.FullName, u.Username, u.Email, u.EncryptedPassword, u.ID).
		Scan(&saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn().Int64("user_id", u.ID).Msg("repository: user not found for update")
			return nil, ErrNotFound
		}
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("repository: failed to update user %d: %w", u.ID, err)
	}

	return &saved, nil
}

func (r *postgresRepository) DeleteByID(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("repository: failed to delete user")
		return fmt.Errorf("repository: failed to delete user %d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case emailUniqueConstraint:
		return ErrEmailExists
	case usernameUniqueConstraint:
		return ErrUsernameExists
	default:
		return fmt.Errorf("repository: unique violation on %s: %w", pgErr.ConstraintName, err)
	}
}
