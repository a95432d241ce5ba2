package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sneakerlib/auth-service/internal/command"
	"github.com/sneakerlib/auth-service/internal/dto"
	"github.com/sneakerlib/auth-service/internal/service"
)

const refreshCookieName = "refresh_token"
const refreshCookiePath = "/api/v1/auth"

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Register a new user; the account stays pending until the email is verified
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result, err := h.authService.Register(c.Request.Context(), command.Register{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Meta:      requestMeta(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		UserID:                    result.UserID.String(),
		Email:                     result.Email,
		Username:                  result.Username,
		EmailVerificationRequired: result.EmailVerificationRequired,
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email or username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), command.Login{
		EmailOrUsername: req.Login,
		Password:        req.Password,
		RememberMe:      req.RememberMe,
		Meta:            requestMeta(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	setRefreshCookie(c, result.Tokens.RefreshToken, result.Tokens.RefreshExpiresIn)

	c.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken: result.Tokens.AccessToken,
		TokenType:   result.Tokens.TokenType,
		ExpiresIn:   result.Tokens.ExpiresIn,
		User: dto.UserInfo{
			ID:            result.UserID.String(),
			Email:         result.Email,
			Username:      result.Username,
			EmailVerified: result.IsEmailVerified,
		},
	})
}

// Refresh handles access token refresh
// @Summary Refresh access token
// @Description Exchange the refresh token cookie for a new access token
// @Tags auth
// @Produce json
// @Success 200 {object} dto.RefreshResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Refresh token not found in cookie",
		})
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), command.RefreshToken{
		RefreshToken: refreshToken,
		Meta:         requestMeta(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   result.ExpiresIn,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the refresh token and blacklist the access token
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	// Body is optional for logout
	_ = c.ShouldBindJSON(&req)

	refreshToken, _ := c.Cookie(refreshCookieName)

	err := h.authService.Logout(c.Request.Context(), command.Logout{
		RefreshToken:     refreshToken,
		AccessToken:      bearerToken(c),
		LogoutAllDevices: req.LogoutAllDevices,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	clearRefreshCookie(c)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

// ListSessions handles listing active sessions
// @Summary List active sessions
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.SessionResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/sessions [get]
func (h *AuthHandler) ListSessions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sessions, err := h.authService.ListSessions(c.Request.Context(), userID, "")
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		responses = append(responses, dto.SessionResponse{
			TokenID:    s.TokenID,
			CreatedAt:  s.CreatedAt,
			ExpiresAt:  s.ExpiresAt,
			LastUsedAt: s.LastUsedAt,
			DeviceInfo: s.DeviceInfo,
			IPAddress:  s.IPAddress,
			Current:    s.Current,
		})
	}
	c.JSON(http.StatusOK, responses)
}

// RevokeToken handles revoking a single session
// @Summary Revoke one session
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/sessions/revoke [post]
func (h *AuthHandler) RevokeToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.RevokeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	err := h.authService.RevokeToken(c.Request.Context(), command.RevokeToken{
		UserID:  userID,
		TokenID: req.TokenID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Session revoked",
	})
}

// RevokeAllTokens handles revoking all sessions
// @Summary Revoke all sessions
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/sessions/revoke-all [post]
func (h *AuthHandler) RevokeAllTokens(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.RevokeAllTokensRequest
	_ = c.ShouldBindJSON(&req)

	revoked, err := h.authService.RevokeAllUserTokens(c.Request.Context(), command.RevokeAllUserTokens{
		UserID:        userID,
		ExceptTokenID: req.ExceptTokenID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sessions revoked",
		"revoked": revoked,
	})
}

func setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie(refreshCookieName, token, maxAge, refreshCookiePath, "", true, true)
}

func clearRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", true, true)
}

func requestMeta(c *gin.Context) command.RequestMeta {
	meta := command.RequestMeta{}
	if ip := c.ClientIP(); ip != "" {
		meta.IPAddress = &ip
	}
	if ua := c.Request.UserAgent(); ua != "" {
		meta.UserAgent = &ua
	}
	if device := c.GetHeader("X-Device-Info"); device != "" {
		meta.DeviceInfo = &device
	}
	return meta
}
