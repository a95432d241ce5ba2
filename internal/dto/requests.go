package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Username  string  `json:"username" binding:"required,min=3,max=30"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// LoginRequest represents a login request by email or username
type LoginRequest struct {
	Login      string `json:"login" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// LogoutRequest represents a logout request
type LogoutRequest struct {
	LogoutAllDevices bool `json:"logout_all_devices"`
}

// RevokeTokenRequest revokes a single session by its token ID
type RevokeTokenRequest struct {
	TokenID string `json:"token_id" binding:"required"`
}

// RevokeAllTokensRequest revokes all sessions, optionally keeping one
type RevokeAllTokensRequest struct {
	ExceptTokenID *string `json:"except_token_id,omitempty"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword  string `json:"current_password" binding:"required"`
	NewPassword      string `json:"new_password" binding:"required,min=8"`
	LogoutAllDevices *bool  `json:"logout_all_devices,omitempty"`
}

// ResetPasswordRequest starts a password reset
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ConfirmPasswordResetRequest completes a password reset
type ConfirmPasswordResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// VerifyEmailRequest confirms an email address
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// ResendVerificationRequest requests a fresh verification token
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdateProfileRequest updates optional profile fields
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// ChangeEmailRequest replaces the account email
type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangeUsernameRequest replaces the account username
type ChangeUsernameRequest struct {
	NewUsername string `json:"new_username" binding:"required,min=3,max=30"`
	Password    string `json:"password" binding:"required"`
}

// NewsletterRequest toggles the newsletter subscription
type NewsletterRequest struct {
	Subscribed bool `json:"subscribed"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        UserInfo `json:"user"`
}

// UserInfo represents user information in an auth response
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"email_verified"`
}

// RegisterResponse represents a registration response
type RegisterResponse struct {
	UserID                    string `json:"user_id"`
	Email                     string `json:"email"`
	Username                  string `json:"username"`
	EmailVerificationRequired bool   `json:"email_verification_required"`
}

// RefreshResponse represents a token refresh response
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// UserResponse represents a full user profile response
type UserResponse struct {
	ID                   string  `json:"id"`
	Email                string  `json:"email"`
	Username             string  `json:"username"`
	Status               string  `json:"status"`
	Role                 string  `json:"role"`
	FirstName            *string `json:"first_name"`
	LastName             *string `json:"last_name"`
	AvatarURL            *string `json:"avatar_url"`
	FullName             string  `json:"full_name"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
	LastLoginAt          *string `json:"last_login_at"`
	LoginCount           int     `json:"login_count"`
	IsEmailVerified      bool    `json:"is_email_verified"`
	NewsletterSubscribed bool    `json:"newsletter_subscribed"`
}

// SessionResponse represents one active session
type SessionResponse struct {
	TokenID    string  `json:"token_id"`
	CreatedAt  string  `json:"created_at"`
	ExpiresAt  string  `json:"expires_at"`
	LastUsedAt *string `json:"last_used_at"`
	DeviceInfo *string `json:"device_info"`
	IPAddress  *string `json:"ip_address"`
	Current    bool    `json:"current"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
