package domain

import (
	"github.com/google/uuid"
)

// UserID identifies a user. It is an immutable value object compared by value.
type UserID struct {
	value uuid.UUID
}

// NewUserID generates a new random user ID.
func NewUserID() UserID {
	return UserID{value: uuid.New()}
}

// ParseUserID creates a UserID from its string representation.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, WrapError(KindValidation, err, "invalid user id format: %s", s)
	}
	return UserID{value: id}, nil
}

// UserIDFromUUID wraps an existing UUID.
func UserIDFromUUID(id uuid.UUID) UserID {
	return UserID{value: id}
}

// IsZero reports whether the ID is the zero value.
func (id UserID) IsZero() bool {
	return id.value == uuid.Nil
}

// UUID returns the underlying UUID.
func (id UserID) UUID() uuid.UUID {
	return id.value
}

func (id UserID) String() string {
	return id.value.String()
}
