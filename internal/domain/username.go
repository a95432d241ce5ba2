package domain

import (
	"regexp"
	"strings"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 30
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var reservedUsernames = map[string]struct{}{
	"admin":         {},
	"administrator": {},
	"root":          {},
	"api":           {},
	"www":           {},
	"ftp":           {},
	"mail":          {},
	"support":       {},
	"help":          {},
	"info":          {},
	"contact":       {},
	"sales":         {},
	"service":       {},
	"test":          {},
	"demo":          {},
	"guest":         {},
	"anonymous":     {},
	"null":          {},
	"undefined":     {},
}

// Username is a validated user name. Comparison is by exact value.
type Username struct {
	value string
}

// NewUsername validates and creates a username value object.
func NewUsername(value string) (Username, error) {
	if value == "" {
		return Username{}, NewError(KindValidation, "username cannot be empty")
	}
	if len(value) < minUsernameLength {
		return Username{}, NewError(KindValidation, "username must be at least %d characters", minUsernameLength)
	}
	if len(value) > maxUsernameLength {
		return Username{}, NewError(KindValidation, "username cannot be longer than %d characters", maxUsernameLength)
	}
	if !usernamePattern.MatchString(value) {
		return Username{}, NewError(KindValidation, "username may only contain letters, digits, underscores and hyphens")
	}
	if strings.ContainsAny(value[:1], "_-") || strings.ContainsAny(value[len(value)-1:], "_-") {
		return Username{}, NewError(KindValidation, "username cannot start or end with an underscore or hyphen")
	}
	if _, reserved := reservedUsernames[strings.ToLower(value)]; reserved {
		return Username{}, NewError(KindValidation, "username %q is reserved", value)
	}
	return Username{value: value}, nil
}

// Equal compares two usernames by exact value.
func (u Username) Equal(other Username) bool {
	return u.value == other.value
}

func (u Username) String() string {
	return u.value
}
