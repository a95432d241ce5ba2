package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"
)

const (
	// DefaultRefreshTokenDays is the normal refresh token lifetime.
	DefaultRefreshTokenDays = 30
	// RememberMeRefreshTokenDays is the extended lifetime for "remember me" sessions.
	RememberMeRefreshTokenDays = 90
	// MaxRefreshTokenDays caps any lifetime or explicit extension.
	MaxRefreshTokenDays = 90

	refreshTokenIDBytes = 16
)

// RefreshToken is the aggregate for a single issued refresh credential.
// Only the SHA-256 digest of the token value is kept; the plaintext exists
// transiently in transit. The digest is deliberately a fast hash rather
// than a KDF: the token is a high-entropy random string, and the hash is
// what storage looks tokens up by.
type RefreshToken struct {
	id        string
	userID    UserID
	tokenHash string

	createdAt  time.Time
	expiresAt  time.Time
	lastUsedAt *time.Time

	revoked   bool
	revokedAt *time.Time

	deviceInfo *string
	ipAddress  *string
	userAgent  *string
}

// TokenMetadata carries the audit metadata captured at issuance.
type TokenMetadata struct {
	DeviceInfo *string
	IPAddress  *string
	UserAgent  *string
}

// NewRefreshToken creates a refresh token aggregate for an already
// generated plaintext token value. Lifetime must be between 1 and 90 days.
func NewRefreshToken(userID UserID, token string, expiresInDays int, meta TokenMetadata) (*RefreshToken, error) {
	if expiresInDays <= 0 || expiresInDays > MaxRefreshTokenDays {
		return nil, NewError(KindValidation, "token lifetime must be between 1 and %d days", MaxRefreshTokenDays)
	}

	now := time.Now().UTC()
	return &RefreshToken{
		id:         generateTokenID(),
		userID:     userID,
		tokenHash:  HashRefreshToken(token),
		createdAt:  now,
		expiresAt:  now.AddDate(0, 0, expiresInDays),
		deviceInfo: meta.DeviceInfo,
		ipAddress:  meta.IPAddress,
		userAgent:  meta.UserAgent,
	}, nil
}

// NewLongLivedRefreshToken creates a "remember me" token with the maximum
// 90 day lifetime.
func NewLongLivedRefreshToken(userID UserID, token string, meta TokenMetadata) (*RefreshToken, error) {
	return NewRefreshToken(userID, token, RememberMeRefreshTokenDays, meta)
}

// RefreshTokenRecord is the flat persistence shape of a RefreshToken.
type RefreshTokenRecord struct {
	ID         string
	UserID     UserID
	TokenHash  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt *time.Time
	Revoked    bool
	RevokedAt  *time.Time
	DeviceInfo *string
	IPAddress  *string
	UserAgent  *string
}

// RestoreRefreshToken reconstitutes an aggregate from its persisted record.
func RestoreRefreshToken(rec RefreshTokenRecord) *RefreshToken {
	return &RefreshToken{
		id:         rec.ID,
		userID:     rec.UserID,
		tokenHash:  rec.TokenHash,
		createdAt:  rec.CreatedAt,
		expiresAt:  rec.ExpiresAt,
		lastUsedAt: rec.LastUsedAt,
		revoked:    rec.Revoked,
		revokedAt:  rec.RevokedAt,
		deviceInfo: rec.DeviceInfo,
		ipAddress:  rec.IPAddress,
		userAgent:  rec.UserAgent,
	}
}

// Record returns the persistence shape of the aggregate.
func (t *RefreshToken) Record() RefreshTokenRecord {
	return RefreshTokenRecord{
		ID:         t.id,
		UserID:     t.userID,
		TokenHash:  t.tokenHash,
		CreatedAt:  t.createdAt,
		ExpiresAt:  t.expiresAt,
		LastUsedAt: t.lastUsedAt,
		Revoked:    t.revoked,
		RevokedAt:  t.revokedAt,
		DeviceInfo: t.deviceInfo,
		IPAddress:  t.ipAddress,
		UserAgent:  t.userAgent,
	}
}

// IsValid reports whether the token is neither revoked nor expired.
func (t *RefreshToken) IsValid() bool {
	return !t.revoked && t.expiresAt.After(time.Now().UTC())
}

// IsExpired reports whether the token lifetime has elapsed.
func (t *RefreshToken) IsExpired() bool {
	return !t.expiresAt.After(time.Now().UTC())
}

// Use records a use of the token. Fails for invalid tokens.
func (t *RefreshToken) Use() error {
	if !t.IsValid() {
		return NewError(KindBusinessRule, "cannot use an invalid token")
	}
	now := time.Now().UTC()
	t.lastUsedAt = &now
	return nil
}

// Revoke permanently invalidates the token. Revoking twice fails.
func (t *RefreshToken) Revoke() error {
	if t.revoked {
		return NewError(KindBusinessRule, "token is already revoked")
	}
	now := time.Now().UTC()
	t.revoked = true
	t.revokedAt = &now
	return nil
}

// VerifyToken reports whether the presented plaintext matches the stored hash.
func (t *RefreshToken) VerifyToken(token string) bool {
	if token == "" {
		return false
	}
	return t.tokenHash == HashRefreshToken(token)
}

// ExtendExpiry moves the expiry to now + days. Only valid tokens may be
// extended, and only within the 1..90 day window.
func (t *RefreshToken) ExtendExpiry(days int) error {
	if !t.IsValid() {
		return NewError(KindBusinessRule, "cannot extend an invalid token")
	}
	if days <= 0 || days > MaxRefreshTokenDays {
		return NewError(KindValidation, "extension must be between 1 and %d days", MaxRefreshTokenDays)
	}
	t.expiresAt = time.Now().UTC().AddDate(0, 0, days)
	return nil
}

// RemainingTime returns the time left until expiry, zero if already expired.
func (t *RefreshToken) RemainingTime() time.Duration {
	remaining := time.Until(t.expiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Age returns how long ago the token was created.
func (t *RefreshToken) Age() time.Duration {
	return time.Since(t.createdAt)
}

func (t *RefreshToken) ID() string              { return t.id }
func (t *RefreshToken) UserID() UserID          { return t.userID }
func (t *RefreshToken) TokenHash() string       { return t.tokenHash }
func (t *RefreshToken) CreatedAt() time.Time    { return t.createdAt }
func (t *RefreshToken) ExpiresAt() time.Time    { return t.expiresAt }
func (t *RefreshToken) LastUsedAt() *time.Time  { return t.lastUsedAt }
func (t *RefreshToken) IsRevoked() bool         { return t.revoked }
func (t *RefreshToken) RevokedAt() *time.Time   { return t.revokedAt }
func (t *RefreshToken) DeviceInfo() *string     { return t.deviceInfo }
func (t *RefreshToken) IPAddress() *string      { return t.ipAddress }
func (t *RefreshToken) UserAgent() *string      { return t.userAgent }

// HashRefreshToken computes the storage digest of a refresh token value.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateTokenID() string {
	buf := make([]byte, refreshTokenIDBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
