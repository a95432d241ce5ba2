package domain

import (
	"strings"
	"time"
)

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	StatusPendingVerification UserStatus = "pending_verification"
	StatusActive              UserStatus = "active"
	StatusInactive            UserStatus = "inactive"
	StatusSuspended           UserStatus = "suspended"
)

// UserRole is the authorization role of an account.
type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

const (
	maxNameLength      = 50
	maxAvatarURLLength = 500
)

// User is the account aggregate root. Identity, credential, status, role
// and profile are mutable only through the named operations below; every
// mutation refreshes UpdatedAt. A failed precondition leaves the aggregate
// untouched.
type User struct {
	id       UserID
	email    Email
	username Username
	password Password

	status UserStatus
	role   UserRole

	createdAt time.Time
	updatedAt time.Time

	firstName *string
	lastName  *string
	avatarURL *string

	lastLoginAt     *time.Time
	loginCount      int
	emailVerifiedAt *time.Time

	newsletterSubscribed bool
}

// NewUser creates a new account in pending-verification state with the
// basic user role.
func NewUser(email Email, username Username, password Password) *User {
	now := time.Now().UTC()
	return &User{
		id:                   NewUserID(),
		email:                email,
		username:             username,
		password:             password,
		status:               StatusPendingVerification,
		role:                 RoleUser,
		createdAt:            now,
		updatedAt:            now,
		newsletterSubscribed: true,
	}
}

// NewAdmin creates an administrator account that is immediately active
// with a verified email.
func NewAdmin(email Email, username Username, password Password) *User {
	u := NewUser(email, username, password)
	now := time.Now().UTC()
	u.role = RoleAdmin
	u.status = StatusActive
	u.emailVerifiedAt = &now
	return u
}

// UserRecord is the flat persistence shape of a User aggregate.
type UserRecord struct {
	ID                   UserID
	Email                Email
	Username             Username
	Password             Password
	Status               UserStatus
	Role                 UserRole
	CreatedAt            time.Time
	UpdatedAt            time.Time
	FirstName            *string
	LastName             *string
	AvatarURL            *string
	LastLoginAt          *time.Time
	LoginCount           int
	EmailVerifiedAt      *time.Time
	NewsletterSubscribed bool
}

// RestoreUser reconstitutes an aggregate from its persisted record.
// No invariants are re-checked; the record is trusted.
func RestoreUser(rec UserRecord) *User {
	return &User{
		id:                   rec.ID,
		email:                rec.Email,
		username:             rec.Username,
		password:             rec.Password,
		status:               rec.Status,
		role:                 rec.Role,
		createdAt:            rec.CreatedAt,
		updatedAt:            rec.UpdatedAt,
		firstName:            rec.FirstName,
		lastName:             rec.LastName,
		avatarURL:            rec.AvatarURL,
		lastLoginAt:          rec.LastLoginAt,
		loginCount:           rec.LoginCount,
		emailVerifiedAt:      rec.EmailVerifiedAt,
		newsletterSubscribed: rec.NewsletterSubscribed,
	}
}

// Record returns the persistence shape of the aggregate.
func (u *User) Record() UserRecord {
	return UserRecord{
		ID:                   u.id,
		Email:                u.email,
		Username:             u.username,
		Password:             u.password,
		Status:               u.status,
		Role:                 u.role,
		CreatedAt:            u.createdAt,
		UpdatedAt:            u.updatedAt,
		FirstName:            u.firstName,
		LastName:             u.lastName,
		AvatarURL:            u.avatarURL,
		LastLoginAt:          u.lastLoginAt,
		LoginCount:           u.loginCount,
		EmailVerifiedAt:      u.emailVerifiedAt,
		NewsletterSubscribed: u.newsletterSubscribed,
	}
}

// Activate transitions the account to active.
func (u *User) Activate() error {
	if u.status == StatusActive {
		return NewError(KindBusinessRule, "user is already active")
	}
	u.status = StatusActive
	u.markUpdated()
	return nil
}

// Suspend suspends the account.
func (u *User) Suspend() error {
	if u.status == StatusSuspended {
		return NewError(KindBusinessRule, "user is already suspended")
	}
	u.status = StatusSuspended
	u.markUpdated()
	return nil
}

// Deactivate transitions the account to inactive.
func (u *User) Deactivate() error {
	if u.status == StatusInactive {
		return NewError(KindBusinessRule, "user is already inactive")
	}
	u.status = StatusInactive
	u.markUpdated()
	return nil
}

// VerifyEmail marks the email as verified. A pending-verification account
// becomes active as a side effect.
func (u *User) VerifyEmail() error {
	if u.emailVerifiedAt != nil {
		return NewError(KindBusinessRule, "email is already verified")
	}
	now := time.Now().UTC()
	u.emailVerifiedAt = &now
	if u.status == StatusPendingVerification {
		u.status = StatusActive
	}
	u.markUpdated()
	return nil
}

// ChangePassword replaces the password credential.
func (u *User) ChangePassword(newPassword Password) {
	u.password = newPassword
	u.markUpdated()
}

// ChangeEmail replaces the email address and resets email verification.
func (u *User) ChangeEmail(newEmail Email) error {
	if u.email.Equal(newEmail) {
		return NewError(KindBusinessRule, "new email is the same as the current one")
	}
	u.email = newEmail
	u.emailVerifiedAt = nil
	u.markUpdated()
	return nil
}

// ChangeUsername replaces the username.
func (u *User) ChangeUsername(newUsername Username) error {
	if u.username.Equal(newUsername) {
		return NewError(KindBusinessRule, "new username is the same as the current one")
	}
	u.username = newUsername
	u.markUpdated()
	return nil
}

// UpdateProfile updates the optional profile fields. Nil arguments leave
// the corresponding field untouched; empty strings clear it.
func (u *User) UpdateProfile(firstName, lastName, avatarURL *string) error {
	var first, last, avatar *string

	if firstName != nil {
		trimmed := strings.TrimSpace(*firstName)
		if len(trimmed) > maxNameLength {
			return NewError(KindValidation, "first name cannot be longer than %d characters", maxNameLength)
		}
		if trimmed != "" {
			first = &trimmed
		}
	}
	if lastName != nil {
		trimmed := strings.TrimSpace(*lastName)
		if len(trimmed) > maxNameLength {
			return NewError(KindValidation, "last name cannot be longer than %d characters", maxNameLength)
		}
		if trimmed != "" {
			last = &trimmed
		}
	}
	if avatarURL != nil {
		if len(*avatarURL) > maxAvatarURLLength {
			return NewError(KindValidation, "avatar URL cannot be longer than %d characters", maxAvatarURLLength)
		}
		if *avatarURL != "" {
			value := *avatarURL
			avatar = &value
		}
	}

	if firstName != nil {
		u.firstName = first
	}
	if lastName != nil {
		u.lastName = last
	}
	if avatarURL != nil {
		u.avatarURL = avatar
	}
	u.markUpdated()
	return nil
}

// RecordLogin records a successful login. Only active users may log in.
func (u *User) RecordLogin() error {
	if u.status != StatusActive {
		return NewError(KindBusinessRule, "user cannot log in")
	}
	now := time.Now().UTC()
	u.lastLoginAt = &now
	u.loginCount++
	u.markUpdated()
	return nil
}

// PromoteToModerator grants the moderator role. Admins are not demoted
// through this path and only active users may be promoted.
func (u *User) PromoteToModerator() error {
	if u.role == RoleAdmin {
		return NewError(KindBusinessRule, "admin cannot be demoted to moderator")
	}
	if u.status != StatusActive {
		return NewError(KindBusinessRule, "only active users can be promoted")
	}
	u.role = RoleModerator
	u.markUpdated()
	return nil
}

// PromoteToAdmin grants the admin role to an active user.
func (u *User) PromoteToAdmin() error {
	if u.status != StatusActive {
		return NewError(KindBusinessRule, "only active users can be promoted")
	}
	u.role = RoleAdmin
	u.markUpdated()
	return nil
}

// DemoteToUser resets the role to the base user role.
func (u *User) DemoteToUser() error {
	if u.role == RoleUser {
		return NewError(KindBusinessRule, "user already has the base role")
	}
	u.role = RoleUser
	u.markUpdated()
	return nil
}

// SubscribeToNewsletter opts the user into the newsletter.
func (u *User) SubscribeToNewsletter() error {
	if u.newsletterSubscribed {
		return NewError(KindBusinessRule, "user is already subscribed to the newsletter")
	}
	u.newsletterSubscribed = true
	u.markUpdated()
	return nil
}

// UnsubscribeFromNewsletter opts the user out of the newsletter.
func (u *User) UnsubscribeFromNewsletter() error {
	if !u.newsletterSubscribed {
		return NewError(KindBusinessRule, "user is not subscribed to the newsletter")
	}
	u.newsletterSubscribed = false
	u.markUpdated()
	return nil
}

// VerifyPassword checks a plaintext password against the stored credential.
func (u *User) VerifyPassword(plain string) bool {
	return u.password.Verify(plain)
}

func (u *User) markUpdated() {
	u.updatedAt = time.Now().UTC()
}

func (u *User) ID() UserID           { return u.id }
func (u *User) Email() Email         { return u.email }
func (u *User) Username() Username   { return u.username }
func (u *User) Password() Password   { return u.password }
func (u *User) Status() UserStatus   { return u.status }
func (u *User) Role() UserRole       { return u.role }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

func (u *User) FirstName() *string           { return u.firstName }
func (u *User) LastName() *string            { return u.lastName }
func (u *User) AvatarURL() *string           { return u.avatarURL }
func (u *User) LastLoginAt() *time.Time      { return u.lastLoginAt }
func (u *User) LoginCount() int              { return u.loginCount }
func (u *User) EmailVerifiedAt() *time.Time  { return u.emailVerifiedAt }
func (u *User) IsNewsletterSubscribed() bool { return u.newsletterSubscribed }

// IsActive reports whether the account is in the active state.
func (u *User) IsActive() bool {
	return u.status == StatusActive
}

// IsEmailVerified reports whether the email has been verified.
func (u *User) IsEmailVerified() bool {
	return u.emailVerifiedAt != nil
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u.role == RoleAdmin
}

// IsModerator reports whether the account has the moderator role.
func (u *User) IsModerator() bool {
	return u.role == RoleModerator
}

// CanModerate reports whether the account may perform moderation.
func (u *User) CanModerate() bool {
	return u.role == RoleModerator || u.role == RoleAdmin
}

// FullName returns the display name, falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.firstName != nil && u.lastName != nil:
		return *u.firstName + " " + *u.lastName
	case u.firstName != nil:
		return *u.firstName
	case u.lastName != nil:
		return *u.lastName
	default:
		return u.username.String()
	}
}
