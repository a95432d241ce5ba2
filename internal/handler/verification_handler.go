package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sneakerlib/auth-service/internal/command"
	"github.com/sneakerlib/auth-service/internal/domain"
	"github.com/sneakerlib/auth-service/internal/dto"
	"github.com/sneakerlib/auth-service/internal/service"
	"go.uber.org/zap"
)

// VerificationHandler handles email verification and password reset requests
type VerificationHandler struct {
	verificationService service.VerificationService
	logger              *zap.Logger
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verificationService service.VerificationService, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{
		verificationService: verificationService,
		logger:              logger,
	}
}

// VerifyEmail confirms an email address with a one-shot token
// @Summary Verify email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "Verification token"
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/verify-email [post]
func (h *VerificationHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result, err := h.verificationService.VerifyEmail(c.Request.Context(), command.VerifyEmail{
		VerificationToken: req.Token,
		Meta:              requestMeta(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Email verified successfully",
		"email":       result.Email,
		"verified_at": result.VerifiedAt,
	})
}

// ResendVerification issues a fresh email verification token
// @Summary Resend verification email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResendVerificationRequest true "Account email"
// @Success 200 {object} dto.SuccessResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /auth/resend-verification [post]
func (h *VerificationHandler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	_, err := h.verificationService.ResendEmailVerification(c.Request.Context(), command.ResendEmailVerification{
		Email: req.Email,
		Meta:  requestMeta(c),
	})
	// Unknown emails get the same answer as known ones so the endpoint
	// cannot be used to enumerate accounts.
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		respondError(c, err)
		return
	}
	if err != nil {
		h.logger.Info("verification resend for unknown email", zap.String("ip", c.ClientIP()))
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "If the account exists, a verification email has been sent",
	})
}

// RequestPasswordReset starts a password reset
// @Summary Request password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Account email"
// @Success 200 {object} dto.SuccessResponse
// @Router /auth/password-reset [post]
func (h *VerificationHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	_, err := h.verificationService.RequestPasswordReset(c.Request.Context(), command.ResetPassword{
		Email: req.Email,
		Meta:  requestMeta(c),
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		respondError(c, err)
		return
	}
	if err != nil {
		h.logger.Info("password reset for unknown email", zap.String("ip", c.ClientIP()))
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "If the account exists, a password reset email has been sent",
	})
}

// ConfirmPasswordReset completes a password reset
// @Summary Confirm password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ConfirmPasswordResetRequest true "Reset token and new password"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/password-reset/confirm [post]
func (h *VerificationHandler) ConfirmPasswordReset(c *gin.Context) {
	var req dto.ConfirmPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	err := h.verificationService.ConfirmPasswordReset(c.Request.Context(), command.ConfirmPasswordReset{
		ResetToken:  req.Token,
		NewPassword: req.NewPassword,
		Meta:        requestMeta(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Password has been reset",
	})
}

// PasswordRequirements returns the password policy for client-side hints
// @Summary Get password requirements
// @Tags auth
// @Produce json
// @Success 200 {object} domain.PasswordRequirements
// @Router /auth/password-requirements [get]
func (h *VerificationHandler) PasswordRequirements(c *gin.Context) {
	c.JSON(http.StatusOK, domain.GetPasswordRequirements())
}
