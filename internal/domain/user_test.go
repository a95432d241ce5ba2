package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T) *User {
	t.Helper()

	email, err := NewEmail("collector@example.com")
	require.NoError(t, err)
	username, err := NewUsername("collector")
	require.NoError(t, err)
	// The hash is opaque to the aggregate, so a fixed value keeps the
	// tests fast.
	password, err := PasswordFromHash("$2a$12$abcdefghijklmnopqrstuv")
	require.NoError(t, err)

	return NewUser(email, username, password)
}

func newActiveUser(t *testing.T) *User {
	t.Helper()
	u := newTestUser(t)
	require.NoError(t, u.VerifyEmail())
	return u
}

func TestNewUser_Defaults(t *testing.T) {
	u := newTestUser(t)

	assert.False(t, u.ID().IsZero())
	assert.Equal(t, StatusPendingVerification, u.Status())
	assert.Equal(t, RoleUser, u.Role())
	assert.False(t, u.IsEmailVerified())
	assert.True(t, u.IsNewsletterSubscribed())
	assert.Zero(t, u.LoginCount())
	assert.Nil(t, u.LastLoginAt())
}

func TestNewAdmin_Defaults(t *testing.T) {
	email, err := NewEmail("owner@example.com")
	require.NoError(t, err)
	username, err := NewUsername("owner")
	require.NoError(t, err)
	password, err := PasswordFromHash("$2a$12$abcdefghijklmnopqrstuv")
	require.NoError(t, err)

	u := NewAdmin(email, username, password)

	assert.Equal(t, StatusActive, u.Status())
	assert.Equal(t, RoleAdmin, u.Role())
	assert.True(t, u.IsEmailVerified())
	assert.True(t, u.IsAdmin())
	assert.True(t, u.CanModerate())
}

func TestUser_VerifyEmail(t *testing.T) {
	u := newTestUser(t)

	require.NoError(t, u.VerifyEmail())
	assert.True(t, u.IsEmailVerified())
	// Verification activates a pending account.
	assert.Equal(t, StatusActive, u.Status())

	err := u.VerifyEmail()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBusinessRule))
}

func TestUser_VerifyEmail_DoesNotActivateSuspended(t *testing.T) {
	u := newTestUser(t)
	require.NoError(t, u.Suspend())

	require.NoError(t, u.VerifyEmail())
	assert.True(t, u.IsEmailVerified())
	assert.Equal(t, StatusSuspended, u.Status())
}

func TestUser_StatusTransitions(t *testing.T) {
	u := newActiveUser(t)

	assert.True(t, errors.Is(u.Activate(), ErrBusinessRule), "already active")

	require.NoError(t, u.Suspend())
	assert.Equal(t, StatusSuspended, u.Status())
	assert.True(t, errors.Is(u.Suspend(), ErrBusinessRule), "already suspended")

	require.NoError(t, u.Activate())
	assert.Equal(t, StatusActive, u.Status())

	require.NoError(t, u.Deactivate())
	assert.Equal(t, StatusInactive, u.Status())
	assert.True(t, errors.Is(u.Deactivate(), ErrBusinessRule), "already inactive")
}

func TestUser_RecordLogin(t *testing.T) {
	u := newActiveUser(t)

	require.NoError(t, u.RecordLogin())
	require.NoError(t, u.RecordLogin())
	assert.Equal(t, 2, u.LoginCount())
	require.NotNil(t, u.LastLoginAt())
	assert.WithinDuration(t, time.Now().UTC(), *u.LastLoginAt(), time.Minute)
}

func TestUser_RecordLogin_RequiresActiveStatus(t *testing.T) {
	for _, setup := range []struct {
		name string
		make func(t *testing.T) *User
	}{
		{"pending", func(t *testing.T) *User { return newTestUser(t) }},
		{"suspended", func(t *testing.T) *User {
			u := newActiveUser(t)
			require.NoError(t, u.Suspend())
			return u
		}},
		{"inactive", func(t *testing.T) *User {
			u := newActiveUser(t)
			require.NoError(t, u.Deactivate())
			return u
		}},
	} {
		t.Run(setup.name, func(t *testing.T) {
			u := setup.make(t)
			err := u.RecordLogin()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBusinessRule))
			assert.Zero(t, u.LoginCount())
		})
	}
}

func TestUser_ChangeEmail_ResetsVerification(t *testing.T) {
	u := newActiveUser(t)
	require.True(t, u.IsEmailVerified())

	newEmail, err := NewEmail("new@example.com")
	require.NoError(t, err)
	require.NoError(t, u.ChangeEmail(newEmail))

	assert.Equal(t, "new@example.com", u.Email().String())
	assert.False(t, u.IsEmailVerified())
	// The account itself stays active.
	assert.Equal(t, StatusActive, u.Status())
}

func TestUser_ChangeEmail_SameAddress(t *testing.T) {
	u := newTestUser(t)
	same, err := NewEmail("collector@example.com")
	require.NoError(t, err)

	err = u.ChangeEmail(same)
	assert.True(t, errors.Is(err, ErrBusinessRule))
}

func TestUser_ChangeUsername(t *testing.T) {
	u := newTestUser(t)

	next, err := NewUsername("sneakerfan")
	require.NoError(t, err)
	require.NoError(t, u.ChangeUsername(next))
	assert.Equal(t, "sneakerfan", u.Username().String())

	same, err := NewUsername("sneakerfan")
	require.NoError(t, err)
	assert.True(t, errors.Is(u.ChangeUsername(same), ErrBusinessRule))
}

func TestUser_UpdateProfile(t *testing.T) {
	u := newTestUser(t)

	first := "  Jordan  "
	last := "Smith"
	avatar := "https://cdn.example.com/a.png"
	require.NoError(t, u.UpdateProfile(&first, &last, &avatar))

	require.NotNil(t, u.FirstName())
	assert.Equal(t, "Jordan", *u.FirstName())
	assert.Equal(t, "Jordan Smith", u.FullName())

	// Nil leaves a field untouched, the empty string clears it.
	empty := ""
	require.NoError(t, u.UpdateProfile(nil, &empty, nil))
	assert.NotNil(t, u.FirstName())
	assert.Nil(t, u.LastName())
	assert.NotNil(t, u.AvatarURL())
	assert.Equal(t, "Jordan", u.FullName())
}

func TestUser_UpdateProfile_Validation(t *testing.T) {
	u := newTestUser(t)

	tooLong := strings.Repeat("x", 51)
	err := u.UpdateProfile(&tooLong, nil, nil)
	assert.True(t, errors.Is(err, ErrValidation))

	longURL := "https://" + strings.Repeat("x", 500)
	err = u.UpdateProfile(nil, nil, &longURL)
	assert.True(t, errors.Is(err, ErrValidation))

	// A failed update leaves every field untouched.
	assert.Nil(t, u.FirstName())
	assert.Nil(t, u.AvatarURL())
}

func TestUser_RoleTransitions(t *testing.T) {
	u := newActiveUser(t)

	require.NoError(t, u.PromoteToModerator())
	assert.True(t, u.IsModerator())
	assert.True(t, u.CanModerate())
	assert.False(t, u.IsAdmin())

	require.NoError(t, u.PromoteToAdmin())
	assert.True(t, u.IsAdmin())

	// Admins cannot be moved back down to moderator.
	err := u.PromoteToModerator()
	assert.True(t, errors.Is(err, ErrBusinessRule))

	// They can be demoted straight to the base role.
	require.NoError(t, u.DemoteToUser())
	assert.Equal(t, RoleUser, u.Role())
	assert.True(t, errors.Is(u.DemoteToUser(), ErrBusinessRule))
}

func TestUser_PromoteRequiresActiveStatus(t *testing.T) {
	u := newTestUser(t)

	assert.True(t, errors.Is(u.PromoteToModerator(), ErrBusinessRule))
	assert.True(t, errors.Is(u.PromoteToAdmin(), ErrBusinessRule))
	assert.Equal(t, RoleUser, u.Role())
}

func TestUser_Newsletter(t *testing.T) {
	u := newTestUser(t)
	require.True(t, u.IsNewsletterSubscribed())

	assert.True(t, errors.Is(u.SubscribeToNewsletter(), ErrBusinessRule))
	require.NoError(t, u.UnsubscribeFromNewsletter())
	assert.False(t, u.IsNewsletterSubscribed())
	assert.True(t, errors.Is(u.UnsubscribeFromNewsletter(), ErrBusinessRule))
	require.NoError(t, u.SubscribeToNewsletter())
}

func TestUser_RecordRoundTrip(t *testing.T) {
	u := newActiveUser(t)
	require.NoError(t, u.RecordLogin())

	restored := RestoreUser(u.Record())

	assert.Equal(t, u.ID(), restored.ID())
	assert.Equal(t, u.Email(), restored.Email())
	assert.Equal(t, u.Username(), restored.Username())
	assert.Equal(t, u.Status(), restored.Status())
	assert.Equal(t, u.Role(), restored.Role())
	assert.Equal(t, u.LoginCount(), restored.LoginCount())
	assert.Equal(t, u.IsEmailVerified(), restored.IsEmailVerified())
}

func TestUser_FullName(t *testing.T) {
	u := newTestUser(t)
	// Falls back to the username when no name is set.
	assert.Equal(t, "collector", u.FullName())

	last := "Smith"
	require.NoError(t, u.UpdateProfile(nil, &last, nil))
	assert.Equal(t, "Smith", u.FullName())
}
