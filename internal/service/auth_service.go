package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sneakerlib/auth-service/internal/command"
	"github.com/sneakerlib/auth-service/internal/domain"
	"github.com/sneakerlib/auth-service/internal/repository"
	"github.com/sneakerlib/auth-service/internal/token"
	"go.uber.org/zap"
)

// maxActiveSessions caps the number of live refresh tokens per user; the
// oldest session is pruned when the cap is reached.
const maxActiveSessions = 10

// authService implements AuthService
type authService struct {
	userRepo     repository.UserRepository
	tokenRepo    repository.RefreshTokenRepository
	tokens       *token.Service
	blacklist    *TokenBlacklistService
	verification VerificationService
	logger       *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	tokens *token.Service,
	blacklist *TokenBlacklistService,
	verification VerificationService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		tokens:       tokens,
		blacklist:    blacklist,
		verification: verification,
		logger:       logger,
	}
}

// Register creates a new account in pending-verification state and issues
// an email verification token. The user is not logged in until the email
// is verified.
func (s *authService) Register(ctx context.Context, cmd command.Register) (*command.RegistrationResult, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	username, err := domain.NewUsername(cmd.Username)
	if err != nil {
		return nil, err
	}
	password, err := domain.NewPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	if taken, err := s.userRepo.ExistsByEmail(ctx, email.String()); err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	} else if taken {
		return nil, domain.NewError(domain.KindConflict, "user with email %s already exists", email)
	}
	if taken, err := s.userRepo.ExistsByUsername(ctx, username.String()); err != nil {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	} else if taken {
		return nil, domain.NewError(domain.KindConflict, "username %s is already taken", username)
	}

	user := domain.NewUser(email, username, password)
	if err := user.UpdateProfile(cmd.FirstName, cmd.LastName, nil); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	verificationToken, err := s.verification.StartEmailVerification(ctx, user)
	if err != nil {
		// Account exists; the user can request a fresh verification token.
		s.logger.Warn("failed to issue verification token",
			zap.String("user_id", user.ID().String()),
			zap.Error(err),
		)
	}

	return &command.RegistrationResult{
		UserID:                    user.ID(),
		Email:                     user.Email().String(),
		Username:                  user.Username().String(),
		EmailVerificationRequired: true,
		VerificationToken:         verificationToken,
	}, nil
}

// Login authenticates by email or username and issues a token pair.
func (s *authService) Login(ctx context.Context, cmd command.Login) (*command.LoginResult, error) {
	user, err := s.findByEmailOrUsername(ctx, cmd.EmailOrUsername)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewError(domain.KindAuthentication, "invalid credentials")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.VerifyPassword(cmd.Password) {
		return nil, domain.NewError(domain.KindAuthentication, "invalid credentials")
	}

	if err := user.RecordLogin(); err != nil {
		// Status guard: pending, inactive and suspended accounts cannot log in.
		return nil, domain.WrapError(domain.KindAuthentication, err, "account cannot log in")
	}

	tokens, refreshEntity, err := s.issueTokens(ctx, user, cmd.Meta, cmd.RememberMe)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	if err := s.tokenRepo.Save(ctx, refreshEntity); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	var lastLogin *string
	if t := user.LastLoginAt(); t != nil {
		formatted := t.Format(time.RFC3339)
		lastLogin = &formatted
	}

	return &command.LoginResult{
		UserID:          user.ID(),
		Email:           user.Email().String(),
		Username:        user.Username().String(),
		Tokens:          *tokens,
		IsEmailVerified: user.IsEmailVerified(),
		LastLoginAt:     lastLogin,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *authService) Refresh(ctx context.Context, cmd command.RefreshToken) (*command.RefreshResult, error) {
	if cmd.RefreshToken == "" {
		return nil, domain.NewError(domain.KindInvalidToken, "refresh token is required")
	}

	stored, err := s.tokenRepo.GetByTokenHash(ctx, domain.HashRefreshToken(cmd.RefreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewError(domain.KindInvalidToken, "refresh token is unknown")
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewError(domain.KindInvalidToken, "refresh token has no owner")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive() {
		return nil, domain.NewError(domain.KindAuthentication, "account is not active")
	}

	accessToken, err := s.tokens.RefreshAccessToken(cmd.RefreshToken, stored, user)
	if err != nil {
		return nil, err
	}

	if err := stored.Use(); err != nil {
		return nil, domain.WrapError(domain.KindInvalidToken, err, "refresh token cannot be used")
	}
	if err := s.tokenRepo.Save(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &command.RefreshResult{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.tokens.AccessTokenTTLSeconds(),
	}, nil
}

// Logout revokes the presented refresh token and blacklists the access
// token for its remaining lifetime.
func (s *authService) Logout(ctx context.Context, cmd command.Logout) error {
	if cmd.RefreshToken != "" {
		stored, err := s.tokenRepo.GetByTokenHash(ctx, domain.HashRefreshToken(cmd.RefreshToken))
		switch {
		case err == nil:
			if err := stored.Revoke(); err == nil {
				if err := s.tokenRepo.Save(ctx, stored); err != nil {
					return fmt.Errorf("failed to save revoked token: %w", err)
				}
			}
			if cmd.LogoutAllDevices {
				if _, err := s.tokenRepo.RevokeAllForUser(ctx, stored.UserID(), nil); err != nil {
					return fmt.Errorf("failed to revoke user tokens: %w", err)
				}
			}
		case errors.Is(err, repository.ErrNotFound):
			// Already gone; logout is idempotent at this level.
		default:
			return fmt.Errorf("failed to get refresh token: %w", err)
		}
	}

	if cmd.AccessToken != "" {
		if claims, err := s.tokens.VerifyAccessToken(cmd.AccessToken); err == nil {
			ttl := time.Until(claims.ExpiresAt)
			if ttl > 0 && claims.JTI != "" {
				if err := s.blacklist.Revoke(ctx, claims.JTI, ttl); err != nil {
					s.logger.Warn("failed to blacklist access token", zap.Error(err))
				}
			}
		}
	}

	return nil
}

// RevokeToken revokes a single refresh token owned by the user.
func (s *authService) RevokeToken(ctx context.Context, cmd command.RevokeToken) error {
	stored, err := s.tokenRepo.GetByID(ctx, cmd.TokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewError(domain.KindNotFound, "token %s not found", cmd.TokenID)
		}
		return fmt.Errorf("failed to get token: %w", err)
	}
	if stored.UserID() != cmd.UserID {
		// Do not reveal that the token exists at all.
		return domain.NewError(domain.KindNotFound, "token %s not found", cmd.TokenID)
	}

	if err := stored.Revoke(); err != nil {
		return err
	}
	if err := s.tokenRepo.Save(ctx, stored); err != nil {
		return fmt.Errorf("failed to save revoked token: %w", err)
	}
	return nil
}

// RevokeAllUserTokens revokes every refresh token of a user, optionally
// keeping one session alive.
func (s *authService) RevokeAllUserTokens(ctx context.Context, cmd command.RevokeAllUserTokens) (int64, error) {
	revoked, err := s.tokenRepo.RevokeAllForUser(ctx, cmd.UserID, cmd.ExceptTokenID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return revoked, nil
}

// ListSessions returns the user's active refresh token sessions.
func (s *authService) ListSessions(ctx context.Context, userID domain.UserID, currentTokenID string) ([]command.SessionInfo, error) {
	tokens, err := s.tokenRepo.ListValidForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]command.SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		var lastUsed *string
		if ts := t.LastUsedAt(); ts != nil {
			formatted := ts.Format(time.RFC3339)
			lastUsed = &formatted
		}
		sessions = append(sessions, command.SessionInfo{
			TokenID:    t.ID(),
			CreatedAt:  t.CreatedAt().Format(time.RFC3339),
			ExpiresAt:  t.ExpiresAt().Format(time.RFC3339),
			LastUsedAt: lastUsed,
			DeviceInfo: t.DeviceInfo(),
			IPAddress:  t.IPAddress(),
			Current:    t.ID() == currentTokenID,
		})
	}
	return sessions, nil
}

// ValidateAccessToken verifies an access token and rejects blacklisted ones.
func (s *authService) ValidateAccessToken(ctx context.Context, accessToken string) (*token.Claims, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	if claims.JTI != "" {
		blacklisted, err := s.blacklist.IsRevoked(ctx, claims.JTI)
		if err != nil {
			return nil, fmt.Errorf("failed to check token blacklist: %w", err)
		}
		if blacklisted {
			return nil, domain.NewError(domain.KindInvalidToken, "token has been revoked")
		}
	}
	return claims, nil
}

func (s *authService) findByEmailOrUsername(ctx context.Context, emailOrUsername string) (*domain.User, error) {
	if strings.Contains(emailOrUsername, "@") {
		return s.userRepo.GetByEmail(ctx, emailOrUsername)
	}
	return s.userRepo.GetByUsername(ctx, emailOrUsername)
}

// issueTokens mints the access/refresh pair and prunes the oldest session
// when the per-user cap is reached. The returned refresh entity still has
// to be persisted by the caller.
func (s *authService) issueTokens(ctx context.Context, user *domain.User, meta command.RequestMeta, rememberMe bool) (*command.AuthTokens, *domain.RefreshToken, error) {
	accessToken, err := s.tokens.CreateAccessToken(user, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshValue, refreshEntity, err := s.tokens.CreateRefreshToken(user, domain.TokenMetadata{
		DeviceInfo: meta.DeviceInfo,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}, rememberMe)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	if err := s.pruneSessions(ctx, user.ID()); err != nil {
		s.logger.Warn("failed to prune sessions",
			zap.String("user_id", user.ID().String()),
			zap.Error(err),
		)
	}

	return &command.AuthTokens{
		AccessToken:      accessToken,
		RefreshToken:     refreshValue,
		TokenType:        "Bearer",
		ExpiresIn:        s.tokens.AccessTokenTTLSeconds(),
		RefreshExpiresIn: int(refreshEntity.RemainingTime().Seconds()),
	}, refreshEntity, nil
}

func (s *authService) pruneSessions(ctx context.Context, userID domain.UserID) error {
	active, err := s.tokenRepo.ListValidForUser(ctx, userID)
	if err != nil {
		return err
	}
	// ListValidForUser is newest first; everything at and beyond the cap
	// minus one makes room for the token being issued.
	for i := maxActiveSessions - 1; i < len(active); i++ {
		if err := s.tokenRepo.RevokeByID(ctx, active[i].ID()); err != nil {
			return err
		}
	}
	return nil
}
