package domain

import (
	"regexp"
	"strings"
)

// RFC 5321 length limits.
const (
	maxEmailLength    = 254
	maxEmailLocalPart = 64
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Domains of free mail providers, used to classify personal vs business addresses.
var personalEmailDomains = map[string]struct{}{
	"gmail.com":   {},
	"yahoo.com":   {},
	"hotmail.com": {},
	"outlook.com": {},
	"yandex.ru":   {},
	"yandex.com":  {},
	"mail.ru":     {},
	"rambler.ru":  {},
	"icloud.com":  {},
}

// Email is a validated email address. The zero value is invalid; use NewEmail.
type Email struct {
	value string
}

// NewEmail validates and creates an email address value object.
func NewEmail(value string) (Email, error) {
	if value == "" {
		return Email{}, NewError(KindValidation, "email cannot be empty")
	}
	if !emailPattern.MatchString(value) {
		return Email{}, NewError(KindValidation, "invalid email format")
	}
	if len(value) > maxEmailLength {
		return Email{}, NewError(KindValidation, "email is too long (maximum %d characters)", maxEmailLength)
	}
	if local := value[:strings.Index(value, "@")]; len(local) > maxEmailLocalPart {
		return Email{}, NewError(KindValidation, "email local part is too long (maximum %d characters)", maxEmailLocalPart)
	}
	return Email{value: value}, nil
}

// LocalPart returns the part before the "@".
func (e Email) LocalPart() string {
	return e.value[:strings.Index(e.value, "@")]
}

// Domain returns the part after the "@".
func (e Email) Domain() string {
	return e.value[strings.Index(e.value, "@")+1:]
}

// IsBusiness reports whether the address does not belong to a known
// free mail provider.
func (e Email) IsBusiness() bool {
	_, personal := personalEmailDomains[strings.ToLower(e.Domain())]
	return !personal
}

// Equal compares two email addresses by value.
func (e Email) Equal(other Email) bool {
	return e.value == other.value
}

// String returns the normalized (lowercase) address.
func (e Email) String() string {
	return strings.ToLower(e.value)
}
