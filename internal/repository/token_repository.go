package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sneakerlib/auth-service/internal/domain"
	"github.com/sneakerlib/auth-service/pkg/database"
)

// refreshTokenRepository implements RefreshTokenRepository on PostgreSQL
type refreshTokenRepository struct {
	db *database.Postgres
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *database.Postgres) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

const tokenColumns = `id, user_id, token_hash, created_at, expires_at, last_used_at,
		is_revoked, revoked_at, device_info, ip_address, user_agent`

// Save inserts the token or updates the existing row
func (r *refreshTokenRepository) Save(ctx context.Context, token *domain.RefreshToken) error {
	rec := token.Record()

	query := `
		INSERT INTO refresh_tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			expires_at = EXCLUDED.expires_at,
			last_used_at = EXCLUDED.last_used_at,
			is_revoked = EXCLUDED.is_revoked,
			revoked_at = EXCLUDED.revoked_at
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserID.String(),
		rec.TokenHash,
		rec.CreatedAt,
		rec.ExpiresAt,
		rec.LastUsedAt,
		rec.Revoked,
		rec.RevokedAt,
		rec.DeviceInfo,
		rec.IPAddress,
		rec.UserAgent,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("token with hash already exists: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// GetByID retrieves a refresh token by its ID
func (r *refreshTokenRepository) GetByID(ctx context.Context, id string) (*domain.RefreshToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM refresh_tokens WHERE id = $1`
	token, err := r.scanToken(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token by id: %w", err)
	}
	return token, nil
}

// GetByTokenHash retrieves a refresh token by its hash
func (r *refreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM refresh_tokens WHERE token_hash = $1`
	token, err := r.scanToken(r.db.DB.QueryRowContext(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token with hash not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token by hash: %w", err)
	}
	return token, nil
}

// ListValidForUser returns all valid tokens of a user, newest first
func (r *refreshTokenRepository) ListValidForUser(ctx context.Context, userID domain.UserID) ([]*domain.RefreshToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM refresh_tokens
		WHERE user_id = $1 AND is_revoked = FALSE AND expires_at > NOW()
		ORDER BY created_at DESC
	`
	return r.queryTokens(ctx, query, userID.String())
}

// ListByDevice returns a user's tokens issued for a device
func (r *refreshTokenRepository) ListByDevice(ctx context.Context, userID domain.UserID, deviceInfo string) ([]*domain.RefreshToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM refresh_tokens
		WHERE user_id = $1 AND device_info = $2
		ORDER BY created_at DESC
	`
	return r.queryTokens(ctx, query, userID.String(), deviceInfo)
}

// CountForUser counts a user's tokens, optionally only the valid ones
func (r *refreshTokenRepository) CountForUser(ctx context.Context, userID domain.UserID, onlyValid bool) (int, error) {
	query := `SELECT COUNT(*) FROM refresh_tokens WHERE user_id = $1`
	if onlyValid {
		query += ` AND is_revoked = FALSE AND expires_at > NOW()`
	}

	var count int
	if err := r.db.DB.QueryRowContext(ctx, query, userID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return count, nil
}

// RevokeByID marks a single token revoked
func (r *refreshTokenRepository) RevokeByID(ctx context.Context, tokenID string) error {
	query := `
		UPDATE refresh_tokens
		SET is_revoked = TRUE, revoked_at = NOW()
		WHERE id = $1 AND is_revoked = FALSE
	`
	result, err := r.db.DB.ExecContext(ctx, query, tokenID)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("token with id %s not found or already revoked: %w", tokenID, ErrNotFound)
	}
	return nil
}

// RevokeAllForUser revokes all of a user's tokens except one
func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID domain.UserID, exceptTokenID *string) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET is_revoked = TRUE, revoked_at = NOW()
		WHERE user_id = $1 AND is_revoked = FALSE AND ($2::text IS NULL OR id <> $2)
	`
	result, err := r.db.DB.ExecContext(ctx, query, userID.String(), exceptTokenID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	revoked, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return revoked, nil
}

// DeleteExpired removes tokens that expired before the given time
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected()
}

// DeleteRevoked removes tokens revoked before the given time
func (r *refreshTokenRepository) DeleteRevoked(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE is_revoked = TRUE AND revoked_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete revoked tokens: %w", err)
	}
	return result.RowsAffected()
}

// CleanupOlderThan removes expired and revoked tokens older than the given number of days
func (r *refreshTokenRepository) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	result, err := r.db.DB.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE created_at <= $1 AND (is_revoked = TRUE OR expires_at <= NOW())
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old tokens: %w", err)
	}
	return result.RowsAffected()
}

func (r *refreshTokenRepository) queryTokens(ctx context.Context, query string, args ...any) ([]*domain.RefreshToken, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.RefreshToken
	for rows.Next() {
		token, err := r.scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tokens: %w", err)
	}
	return tokens, nil
}

func (r *refreshTokenRepository) scanToken(row rowScanner) (*domain.RefreshToken, error) {
	var (
		rec        domain.RefreshTokenRecord
		userID     string
		lastUsedAt sql.NullTime
		revokedAt  sql.NullTime
		deviceInfo sql.NullString
		ipAddress  sql.NullString
		userAgent  sql.NullString
	)

	err := row.Scan(
		&rec.ID,
		&userID,
		&rec.TokenHash,
		&rec.CreatedAt,
		&rec.ExpiresAt,
		&lastUsedAt,
		&rec.Revoked,
		&revokedAt,
		&deviceInfo,
		&ipAddress,
		&userAgent,
	)
	if err != nil {
		return nil, err
	}

	rec.UserID, err = domain.ParseUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("stored user id is invalid: %w", err)
	}

	if lastUsedAt.Valid {
		rec.LastUsedAt = &lastUsedAt.Time
	}
	if revokedAt.Valid {
		rec.RevokedAt = &revokedAt.Time
	}
	if deviceInfo.Valid {
		rec.DeviceInfo = &deviceInfo.String
	}
	if ipAddress.Valid {
		rec.IPAddress = &ipAddress.String
	}
	if userAgent.Valid {
		rec.UserAgent = &userAgent.String
	}

	return domain.RestoreRefreshToken(rec), nil
}
