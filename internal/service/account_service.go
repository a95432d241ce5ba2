package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sneakerlib/auth-service/internal/command"
	"github.com/sneakerlib/auth-service/internal/domain"
	"github.com/sneakerlib/auth-service/internal/repository"
	"go.uber.org/zap"
)

// accountService implements AccountService
type accountService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	logger    *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	logger *zap.Logger,
) AccountService {
	return &accountService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		logger:    logger,
	}
}

// GetProfile returns an immutable snapshot of the account.
func (s *accountService) GetProfile(ctx context.Context, userID domain.UserID) (*command.UserProfile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var lastLogin *string
	if t := user.LastLoginAt(); t != nil {
		formatted := t.Format(time.RFC3339)
		lastLogin = &formatted
	}

	return &command.UserProfile{
		UserID:               user.ID(),
		Email:                user.Email().String(),
		Username:             user.Username().String(),
		Status:               string(user.Status()),
		Role:                 string(user.Role()),
		FirstName:            user.FirstName(),
		LastName:             user.LastName(),
		AvatarURL:            user.AvatarURL(),
		FullName:             user.FullName(),
		CreatedAt:            user.CreatedAt().Format(time.RFC3339),
		UpdatedAt:            user.UpdatedAt().Format(time.RFC3339),
		LastLoginAt:          lastLogin,
		LoginCount:           user.LoginCount(),
		IsEmailVerified:      user.IsEmailVerified(),
		NewsletterSubscribed: user.IsNewsletterSubscribed(),
	}, nil
}

// UpdateProfile applies the profile mutation and reports the touched fields.
func (s *accountService) UpdateProfile(ctx context.Context, cmd command.UpdateProfile) (*command.ProfileUpdateResult, error) {
	user, err := s.loadUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := user.UpdateProfile(cmd.FirstName, cmd.LastName, cmd.AvatarURL); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	var updated []string
	if cmd.FirstName != nil {
		updated = append(updated, "first_name")
	}
	if cmd.LastName != nil {
		updated = append(updated, "last_name")
	}
	if cmd.AvatarURL != nil {
		updated = append(updated, "avatar_url")
	}

	return &command.ProfileUpdateResult{
		UserID:        user.ID(),
		UpdatedFields: updated,
		UpdatedAt:     user.UpdatedAt().Format(time.RFC3339),
	}, nil
}

// ChangePassword replaces the credential after re-confirming the current
// password, optionally revoking every session.
func (s *accountService) ChangePassword(ctx context.Context, cmd command.ChangePassword) error {
	user, err := s.loadUser(ctx, cmd.UserID)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(cmd.CurrentPassword) {
		return domain.NewError(domain.KindAuthentication, "current password is incorrect")
	}

	newPassword, err := domain.NewPassword(cmd.NewPassword)
	if err != nil {
		return err
	}

	user.ChangePassword(newPassword)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	if cmd.LogoutAllDevices {
		revoked, err := s.tokenRepo.RevokeAllForUser(ctx, user.ID(), nil)
		if err != nil {
			return fmt.Errorf("failed to revoke user tokens: %w", err)
		}
		s.logger.Info("revoked sessions after password change",
			zap.String("user_id", user.ID().String()),
			zap.Int64("revoked", revoked),
		)
	}
	return nil
}

// ChangeEmail replaces the email address after password confirmation.
// The new address starts unverified.
func (s *accountService) ChangeEmail(ctx context.Context, cmd command.ChangeEmail) error {
	user, err := s.loadUser(ctx, cmd.UserID)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(cmd.Password) {
		return domain.NewError(domain.KindAuthentication, "password is incorrect")
	}

	newEmail, err := domain.NewEmail(cmd.NewEmail)
	if err != nil {
		return err
	}

	if taken, err := s.userRepo.ExistsByEmail(ctx, newEmail.String()); err != nil {
		return fmt.Errorf("failed to check email existence: %w", err)
	} else if taken {
		return domain.NewError(domain.KindConflict, "email %s is already in use", newEmail)
	}

	if err := user.ChangeEmail(newEmail); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// ChangeUsername replaces the username after password confirmation.
func (s *accountService) ChangeUsername(ctx context.Context, cmd command.ChangeUsername) error {
	user, err := s.loadUser(ctx, cmd.UserID)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(cmd.Password) {
		return domain.NewError(domain.KindAuthentication, "password is incorrect")
	}

	newUsername, err := domain.NewUsername(cmd.NewUsername)
	if err != nil {
		return err
	}

	if taken, err := s.userRepo.ExistsByUsername(ctx, newUsername.String()); err != nil {
		return fmt.Errorf("failed to check username existence: %w", err)
	} else if taken {
		return domain.NewError(domain.KindConflict, "username %s is already taken", newUsername)
	}

	if err := user.ChangeUsername(newUsername); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// SetNewsletterSubscription toggles the newsletter opt-in.
func (s *accountService) SetNewsletterSubscription(ctx context.Context, userID domain.UserID, subscribed bool) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if subscribed {
		err = user.SubscribeToNewsletter()
	} else {
		err = user.UnsubscribeFromNewsletter()
	}
	if err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *accountService) loadUser(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
