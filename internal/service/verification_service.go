package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sneakerlib/auth-service/internal/command"
	"github.com/sneakerlib/auth-service/internal/domain"
	"github.com/sneakerlib/auth-service/internal/repository"
	"github.com/sneakerlib/auth-service/internal/token"
	"github.com/sneakerlib/auth-service/pkg/database"
	"go.uber.org/zap"
)

const (
	emailVerificationTTL = 24 * time.Hour
	passwordResetTTL     = 15 * time.Minute

	verificationTokenBytes = 32
)

// verificationService implements VerificationService. One-shot tokens are
// kept hashed in Redis with a TTL and consumed atomically on use.
type verificationService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	store     *oneShotTokenStore
	logger    *zap.Logger
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	redis *database.Redis,
	logger *zap.Logger,
) VerificationService {
	return &verificationService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		store:     &oneShotTokenStore{redis: redis},
		logger:    logger,
	}
}

// StartEmailVerification issues a one-shot verification token for the user.
func (s *verificationService) StartEmailVerification(ctx context.Context, user *domain.User) (string, error) {
	value, err := token.GenerateSecureToken(verificationTokenBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	if err := s.store.Put(ctx, "verify:email", value, user.ID().String(), emailVerificationTTL); err != nil {
		return "", fmt.Errorf("failed to store verification token: %w", err)
	}
	return value, nil
}

// ResendEmailVerification issues a fresh verification token for an
// unverified account.
func (s *verificationService) ResendEmailVerification(ctx context.Context, cmd command.ResendEmailVerification) (*command.ResendVerificationResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "user with email %s not found", cmd.Email)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsEmailVerified() {
		return nil, domain.NewError(domain.KindBusinessRule, "email is already verified")
	}

	value, err := s.StartEmailVerification(ctx, user)
	if err != nil {
		return nil, err
	}
	return &command.ResendVerificationResult{
		Email:             user.Email().String(),
		VerificationToken: value,
		ExpiresInHours:    int(emailVerificationTTL.Hours()),
	}, nil
}

// VerifyEmail consumes a verification token and marks the email verified.
// A pending-verification account becomes active.
func (s *verificationService) VerifyEmail(ctx context.Context, cmd command.VerifyEmail) (*command.EmailVerificationResult, error) {
	userID, err := s.consumeToken(ctx, "verify:email", cmd.VerificationToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := user.VerifyEmail(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return &command.EmailVerificationResult{
		UserID:     user.ID(),
		Email:      user.Email().String(),
		VerifiedAt: user.EmailVerifiedAt().Format(time.RFC3339),
	}, nil
}

// RequestPasswordReset issues a one-shot reset token for the account. The
// token is handed to the outbound mailer through the result; the HTTP
// layer must not leak it to the requester.
func (s *verificationService) RequestPasswordReset(ctx context.Context, cmd command.ResetPassword) (*command.PasswordResetResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "user with email %s not found", cmd.Email)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	value, err := token.GenerateSecureToken(verificationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.store.Put(ctx, "reset:password", value, user.ID().String(), passwordResetTTL); err != nil {
		return nil, fmt.Errorf("failed to store reset token: %w", err)
	}

	return &command.PasswordResetResult{
		Email:            user.Email().String(),
		ResetToken:       value,
		ExpiresInMinutes: int(passwordResetTTL.Minutes()),
	}, nil
}

// ConfirmPasswordReset consumes a reset token, replaces the password and
// revokes every session of the account.
func (s *verificationService) ConfirmPasswordReset(ctx context.Context, cmd command.ConfirmPasswordReset) error {
	newPassword, err := domain.NewPassword(cmd.NewPassword)
	if err != nil {
		return err
	}

	userID, err := s.consumeToken(ctx, "reset:password", cmd.ResetToken)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewError(domain.KindNotFound, "user %s not found", userID)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	user.ChangePassword(newPassword)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	revoked, err := s.tokenRepo.RevokeAllForUser(ctx, user.ID(), nil)
	if err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	s.logger.Info("password reset completed",
		zap.String("user_id", user.ID().String()),
		zap.Int64("sessions_revoked", revoked),
	)
	return nil
}

func (s *verificationService) consumeToken(ctx context.Context, kind, value string) (domain.UserID, error) {
	if value == "" {
		return domain.UserID{}, domain.NewError(domain.KindAuthentication, "token is required")
	}

	stored, err := s.store.Take(ctx, kind, value)
	if err != nil {
		if errors.Is(err, errTokenNotFound) {
			return domain.UserID{}, domain.NewError(domain.KindAuthentication, "token is invalid or expired")
		}
		return domain.UserID{}, fmt.Errorf("failed to consume token: %w", err)
	}

	userID, err := domain.ParseUserID(stored)
	if err != nil {
		return domain.UserID{}, fmt.Errorf("stored token payload is invalid: %w", err)
	}
	return userID, nil
}

var errTokenNotFound = errors.New("token not found")

// oneShotTokenStore keeps single-use tokens in Redis, keyed by the SHA-256
// of the token value so a Redis dump never exposes live tokens.
type oneShotTokenStore struct {
	redis *database.Redis
}

func (s *oneShotTokenStore) key(kind, value string) string {
	sum := sha256.Sum256([]byte(value))
	return fmt.Sprintf("%s:%s", kind, hex.EncodeToString(sum[:]))
}

// Put stores the payload under the hashed token with a TTL.
func (s *oneShotTokenStore) Put(ctx context.Context, kind, value, payload string, ttl time.Duration) error {
	return s.redis.Client.Set(ctx, s.key(kind, value), payload, ttl).Err()
}

// Take atomically fetches and deletes the payload for the token.
func (s *oneShotTokenStore) Take(ctx context.Context, kind, value string) (string, error) {
	payload, err := s.redis.Client.GetDel(ctx, s.key(kind, value)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errTokenNotFound
		}
		return "", err
	}
	return payload, nil
}
