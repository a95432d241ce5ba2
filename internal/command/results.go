package command

import "github.com/sneakerlib/auth-service/internal/domain"

// AuthTokens is the token pair handed back after authentication.
type AuthTokens struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	ExpiresIn        int
	RefreshExpiresIn int
}

// RegistrationResult reports a created account. Tokens are present when
// the caller is logged in immediately.
type RegistrationResult struct {
	UserID                    domain.UserID
	Email                     string
	Username                  string
	EmailVerificationRequired bool
	VerificationToken         string
	Tokens                    *AuthTokens
}

// LoginResult reports a successful login.
type LoginResult struct {
	UserID          domain.UserID
	Email           string
	Username        string
	Tokens          AuthTokens
	IsEmailVerified bool
	LastLoginAt     *string
}

// RefreshResult reports a refreshed access token.
type RefreshResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
}

// PasswordResetResult reports an initiated password reset. The token is
// handed to the outbound mailer, never to the requester directly.
type PasswordResetResult struct {
	Email            string
	ResetToken       string
	ExpiresInMinutes int
}

// EmailVerificationResult reports a confirmed email address.
type EmailVerificationResult struct {
	UserID     domain.UserID
	Email      string
	VerifiedAt string
}

// ProfileUpdateResult reports the fields touched by a profile update.
type ProfileUpdateResult struct {
	UserID        domain.UserID
	UpdatedFields []string
	UpdatedAt     string
}

// ResendVerificationResult reports a re-issued email verification token.
type ResendVerificationResult struct {
	Email             string
	VerificationToken string
	ExpiresInHours    int
}

// UserProfile is an immutable snapshot of a user account for callers.
type UserProfile struct {
	UserID               domain.UserID
	Email                string
	Username             string
	Status               string
	Role                 string
	FirstName            *string
	LastName             *string
	AvatarURL            *string
	FullName             string
	CreatedAt            string
	UpdatedAt            string
	LastLoginAt          *string
	LoginCount           int
	IsEmailVerified      bool
	NewsletterSubscribed bool
}

// SessionInfo is an immutable snapshot of one refresh token session.
type SessionInfo struct {
	TokenID    string
	CreatedAt  string
	ExpiresAt  string
	LastUsedAt *string
	DeviceInfo *string
	IPAddress  *string
	Current    bool
}
