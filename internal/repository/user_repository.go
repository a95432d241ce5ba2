package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/sneakerlib/auth-service/internal/domain"
	"github.com/sneakerlib/auth-service/pkg/database"
)

// userRepository implements UserRepository on PostgreSQL
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, username, password_hash, status, role, created_at, updated_at,
		first_name, last_name, avatar_url, last_login_at, login_count, email_verified_at, newsletter_subscribed`

// Save inserts the user or updates the existing row
func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	rec := user.Record()

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			status = EXCLUDED.status,
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			avatar_url = EXCLUDED.avatar_url,
			last_login_at = EXCLUDED.last_login_at,
			login_count = EXCLUDED.login_count,
			email_verified_at = EXCLUDED.email_verified_at,
			newsletter_subscribed = EXCLUDED.newsletter_subscribed
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		rec.ID.String(),
		rec.Email.String(),
		rec.Username.String(),
		rec.Password.Hash(),
		string(rec.Status),
		string(rec.Role),
		rec.CreatedAt,
		rec.UpdatedAt,
		rec.FirstName,
		rec.LastName,
		rec.AvatarURL,
		rec.LastLoginAt,
		rec.LoginCount,
		rec.EmailVerifiedAt,
		rec.NewsletterSubscribed,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			if strings.Contains(pqErr.Constraint, "username") {
				return fmt.Errorf("user with username %s already exists: %w", rec.Username, ErrDuplicateUsername)
			}
			return fmt.Errorf("user with email %s already exists: %w", rec.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with username %s not found: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// ExistsByEmail checks whether a user with the given email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`
	if err := r.db.DB.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// ExistsByUsername checks whether a user with the given username exists
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	if err := r.db.DB.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *userRepository) scanUser(row rowScanner) (*domain.User, error) {
	var (
		rec             domain.UserRecord
		id              string
		email           string
		username        string
		passwordHash    string
		status          string
		role            string
		firstName       sql.NullString
		lastName        sql.NullString
		avatarURL       sql.NullString
		lastLoginAt     sql.NullTime
		emailVerifiedAt sql.NullTime
	)

	err := row.Scan(
		&id,
		&email,
		&username,
		&passwordHash,
		&status,
		&role,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&firstName,
		&lastName,
		&avatarURL,
		&lastLoginAt,
		&rec.LoginCount,
		&emailVerifiedAt,
		&rec.NewsletterSubscribed,
	)
	if err != nil {
		return nil, err
	}

	rec.ID, err = domain.ParseUserID(id)
	if err != nil {
		return nil, fmt.Errorf("stored user id is invalid: %w", err)
	}
	rec.Email, err = domain.NewEmail(email)
	if err != nil {
		return nil, fmt.Errorf("stored email is invalid: %w", err)
	}
	rec.Username, err = domain.NewUsername(username)
	if err != nil {
		return nil, fmt.Errorf("stored username is invalid: %w", err)
	}
	rec.Password, err = domain.PasswordFromHash(passwordHash)
	if err != nil {
		return nil, fmt.Errorf("stored password hash is invalid: %w", err)
	}
	rec.Status = domain.UserStatus(status)
	rec.Role = domain.UserRole(role)

	if firstName.Valid {
		rec.FirstName = &firstName.String
	}
	if lastName.Valid {
		rec.LastName = &lastName.String
	}
	if avatarURL.Valid {
		rec.AvatarURL = &avatarURL.String
	}
	if lastLoginAt.Valid {
		rec.LastLoginAt = &lastLoginAt.Time
	}
	if emailVerifiedAt.Valid {
		rec.EmailVerifiedAt = &emailVerifiedAt.Time
	}

	return domain.RestoreUser(rec), nil
}
