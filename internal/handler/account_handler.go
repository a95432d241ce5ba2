package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sneakerlib/auth-service/internal/command"
	"github.com/sneakerlib/auth-service/internal/dto"
	"github.com/sneakerlib/auth-service/internal/service"
)

// AccountHandler handles profile and credential management requests
type AccountHandler struct {
	accountService service.AccountService
	authService    service.AuthService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService service.AccountService, authService service.AuthService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		authService:    authService,
	}
}

// GetMe returns the authenticated user's profile
// @Summary Get current user
// @Tags account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me [get]
func (h *AccountHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.accountService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userResponseFromProfile(profile))
}

// UpdateProfile updates the optional profile fields
// @Summary Update profile
// @Tags account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile update"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /users/me [patch]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	_, err := h.accountService.UpdateProfile(c.Request.Context(), command.UpdateProfile{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.accountService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponseFromProfile(profile))
}

// ChangePassword replaces the password after confirming the current one
// @Summary Change password
// @Tags account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Password change"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me/password [put]
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	// Revoking other sessions is the default; the client can opt out.
	logoutAll := true
	if req.LogoutAllDevices != nil {
		logoutAll = *req.LogoutAllDevices
	}

	err := h.accountService.ChangePassword(c.Request.Context(), command.ChangePassword{
		UserID:           userID,
		CurrentPassword:  req.CurrentPassword,
		NewPassword:      req.NewPassword,
		LogoutAllDevices: logoutAll,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Password changed successfully",
	})
}

// ChangeEmail replaces the account email after password confirmation
// @Summary Change email
// @Tags account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangeEmailRequest true "Email change"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/me/email [put]
func (h *AccountHandler) ChangeEmail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ChangeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	err := h.accountService.ChangeEmail(c.Request.Context(), command.ChangeEmail{
		UserID:   userID,
		NewEmail: req.NewEmail,
		Password: req.Password,
		Meta:     requestMeta(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Email changed, verification required",
	})
}

// ChangeUsername replaces the username after password confirmation
// @Summary Change username
// @Tags account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangeUsernameRequest true "Username change"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/me/username [put]
func (h *AccountHandler) ChangeUsername(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ChangeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	err := h.accountService.ChangeUsername(c.Request.Context(), command.ChangeUsername{
		UserID:      userID,
		NewUsername: req.NewUsername,
		Password:    req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Username changed successfully",
	})
}

// SetNewsletter toggles the newsletter subscription
// @Summary Set newsletter subscription
// @Tags account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.NewsletterRequest true "Subscription flag"
// @Success 200 {object} dto.SuccessResponse
// @Router /users/me/newsletter [put]
func (h *AccountHandler) SetNewsletter(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.NewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	if err := h.accountService.SetNewsletterSubscription(c.Request.Context(), userID, req.Subscribed); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Newsletter preference saved",
	})
}

func userResponseFromProfile(p *command.UserProfile) dto.UserResponse {
	return dto.UserResponse{
		ID:                   p.UserID.String(),
		Email:                p.Email,
		Username:             p.Username,
		Status:               p.Status,
		Role:                 p.Role,
		FirstName:            p.FirstName,
		LastName:             p.LastName,
		AvatarURL:            p.AvatarURL,
		FullName:             p.FullName,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		LastLoginAt:          p.LastLoginAt,
		LoginCount:           p.LoginCount,
		IsEmailVerified:      p.IsEmailVerified,
		NewsletterSubscribed: p.NewsletterSubscribed,
	}
}
