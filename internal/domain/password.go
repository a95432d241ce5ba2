package domain

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128

	// Character classes required out of lowercase/uppercase/digit/special.
	requiredCharacterTypes = 3

	passwordHashCost = 12

	passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`
)

var commonPasswords = map[string]struct{}{
	"password":    {},
	"12345678":    {},
	"qwerty123":   {},
	"admin123":    {},
	"password123": {},
	"123456789":   {},
	"qwertyuiop":  {},
}

// Password wraps a one-way bcrypt hash of a user password. The plaintext
// is never retained after construction; Verify is the only authoritative
// way to compare passwords, since two hashes of the same plaintext differ
// by salt.
type Password struct {
	hash string
}

// NewPassword validates password strength, then hashes the plaintext.
func NewPassword(plain string) (Password, error) {
	if err := validatePasswordStrength(plain); err != nil {
		return Password{}, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), passwordHashCost)
	if err != nil {
		return Password{}, WrapError(KindValidation, err, "failed to hash password")
	}
	return Password{hash: string(hashed)}, nil
}

// PasswordFromHash creates a Password from an already hashed value, as
// loaded from storage. No strength validation is performed.
func PasswordFromHash(hash string) (Password, error) {
	if hash == "" {
		return Password{}, NewError(KindValidation, "password hash cannot be empty")
	}
	return Password{hash: hash}, nil
}

// Verify reports whether the plaintext matches the stored hash. It never
// returns an error; malformed input yields false.
func (p Password) Verify(plain string) bool {
	if plain == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.hash), []byte(plain)) == nil
}

// Hash returns the stored bcrypt hash for persistence.
func (p Password) Hash() string {
	return p.hash
}

func (p Password) String() string {
	return "***HIDDEN***"
}

func validatePasswordStrength(password string) error {
	if password == "" {
		return NewError(KindValidation, "password cannot be empty")
	}
	if len(password) < minPasswordLength {
		return NewError(KindValidation, "password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return NewError(KindValidation, "password cannot be longer than %d characters", maxPasswordLength)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			hasSpecial = true
		}
	}

	met := 0
	for _, ok := range []bool{hasLower, hasUpper, hasDigit, hasSpecial} {
		if ok {
			met++
		}
	}
	if met < requiredCharacterTypes {
		return NewError(KindValidation,
			"password must contain at least %d character types: lowercase, uppercase, digits, special characters",
			requiredCharacterTypes)
	}

	if _, common := commonPasswords[strings.ToLower(password)]; common {
		return NewError(KindValidation, "password is too common")
	}

	distinct := map[rune]struct{}{}
	for _, r := range password {
		distinct[r] = struct{}{}
	}
	if float64(len(distinct)) < float64(len([]rune(password)))*0.5 {
		return NewError(KindValidation, "password contains too many repeated characters")
	}

	return nil
}

// PasswordRequirements describes the password policy for presentation to
// callers. Purely informational, not enforced logic.
type PasswordRequirements struct {
	MinLength              int      `json:"min_length"`
	MaxLength              int      `json:"max_length"`
	RequiredCharacterTypes int      `json:"required_character_types"`
	CharacterTypes         []string `json:"character_types"`
	Forbidden              []string `json:"forbidden"`
}

// GetPasswordRequirements returns the current password policy.
func GetPasswordRequirements() PasswordRequirements {
	return PasswordRequirements{
		MinLength:              minPasswordLength,
		MaxLength:              maxPasswordLength,
		RequiredCharacterTypes: requiredCharacterTypes,
		CharacterTypes: []string{
			"Lowercase letters (a-z)",
			"Uppercase letters (A-Z)",
			"Digits (0-9)",
			"Special characters (!@#$%^&*...)",
		},
		Forbidden: []string{
			"Common passwords (password, 123456789)",
			"Too many repeated characters",
		},
	}
}
