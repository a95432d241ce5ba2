// Package command defines the input and output shapes of the auth and
// account use cases. Commands and results are plain immutable records;
// all behavior lives in the domain and service layers.
package command

import "github.com/sneakerlib/auth-service/internal/domain"

// RequestMeta carries transport metadata attached to a command for audit.
type RequestMeta struct {
	IPAddress  *string
	UserAgent  *string
	DeviceInfo *string
}

// Register creates a new account.
type Register struct {
	Email     string
	Username  string
	Password  string
	FirstName *string
	LastName  *string
	Meta      RequestMeta
}

// Login authenticates by email or username.
type Login struct {
	EmailOrUsername string
	Password        string
	RememberMe      bool
	Meta            RequestMeta
}

// RefreshToken exchanges a refresh token for a new access token.
type RefreshToken struct {
	RefreshToken string
	Meta         RequestMeta
}

// Logout revokes the presented refresh token, optionally on all devices.
// The access token, when supplied, is blacklisted for its remaining
// lifetime.
type Logout struct {
	RefreshToken     string
	AccessToken      string
	LogoutAllDevices bool
}

// RevokeToken revokes a single refresh token by ID.
type RevokeToken struct {
	UserID  domain.UserID
	TokenID string
}

// RevokeAllUserTokens revokes every refresh token of a user, optionally
// keeping one session alive.
type RevokeAllUserTokens struct {
	UserID        domain.UserID
	ExceptTokenID *string
}

// ChangePassword replaces the password after re-confirming the current one.
type ChangePassword struct {
	UserID           domain.UserID
	CurrentPassword  string
	NewPassword      string
	LogoutAllDevices bool
}

// ResetPassword starts a password reset for the given email.
type ResetPassword struct {
	Email string
	Meta  RequestMeta
}

// ConfirmPasswordReset completes a password reset with the emailed token.
type ConfirmPasswordReset struct {
	ResetToken  string
	NewPassword string
	Meta        RequestMeta
}

// VerifyEmail confirms an email address with the emailed token.
type VerifyEmail struct {
	VerificationToken string
	Meta              RequestMeta
}

// ResendEmailVerification issues a fresh verification token.
type ResendEmailVerification struct {
	Email string
	Meta  RequestMeta
}

// UpdateProfile updates the optional profile fields. Nil leaves a field
// untouched, an empty string clears it.
type UpdateProfile struct {
	UserID    domain.UserID
	FirstName *string
	LastName  *string
	AvatarURL *string
}

// ChangeEmail replaces the email address after password confirmation.
type ChangeEmail struct {
	UserID   domain.UserID
	NewEmail string
	Password string
	Meta     RequestMeta
}

// ChangeUsername replaces the username after password confirmation.
type ChangeUsername struct {
	UserID      domain.UserID
	NewUsername string
	Password    string
}
