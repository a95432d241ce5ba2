package service

import (
	"context"

	"github.com/sneakerlib/auth-service/internal/command"
	"github.com/sneakerlib/auth-service/internal/domain"
	"github.com/sneakerlib/auth-service/internal/token"
)

// AuthService defines the authentication use cases.
type AuthService interface {
	Register(ctx context.Context, cmd command.Register) (*command.RegistrationResult, error)
	Login(ctx context.Context, cmd command.Login) (*command.LoginResult, error)
	Refresh(ctx context.Context, cmd command.RefreshToken) (*command.RefreshResult, error)
	Logout(ctx context.Context, cmd command.Logout) error
	RevokeToken(ctx context.Context, cmd command.RevokeToken) error
	RevokeAllUserTokens(ctx context.Context, cmd command.RevokeAllUserTokens) (int64, error)
	ListSessions(ctx context.Context, userID domain.UserID, currentTokenID string) ([]command.SessionInfo, error)
	ValidateAccessToken(ctx context.Context, accessToken string) (*token.Claims, error)
}

// AccountService defines the account management use cases.
type AccountService interface {
	GetProfile(ctx context.Context, userID domain.UserID) (*command.UserProfile, error)
	UpdateProfile(ctx context.Context, cmd command.UpdateProfile) (*command.ProfileUpdateResult, error)
	ChangePassword(ctx context.Context, cmd command.ChangePassword) error
	ChangeEmail(ctx context.Context, cmd command.ChangeEmail) error
	ChangeUsername(ctx context.Context, cmd command.ChangeUsername) error
	SetNewsletterSubscription(ctx context.Context, userID domain.UserID, subscribed bool) error
}

// VerificationService defines the email verification and password reset
// use cases. Delivery of the issued tokens is an external concern; the
// results carry the token for the outbound mailer.
type VerificationService interface {
	StartEmailVerification(ctx context.Context, user *domain.User) (string, error)
	ResendEmailVerification(ctx context.Context, cmd command.ResendEmailVerification) (*command.ResendVerificationResult, error)
	VerifyEmail(ctx context.Context, cmd command.VerifyEmail) (*command.EmailVerificationResult, error)
	RequestPasswordReset(ctx context.Context, cmd command.ResetPassword) (*command.PasswordResetResult, error)
	ConfirmPasswordReset(ctx context.Context, cmd command.ConfirmPasswordReset) error
}
