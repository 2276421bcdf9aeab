package care

import "errors"

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key (email, username) is already taken.
	ErrDuplicate = errors.New("record already exists")
	// ErrForbidden is returned when a record belongs to another user.
	ErrForbidden = errors.New("record belongs to another user")
	// ErrInvalid wraps validation failures of user input.
	ErrInvalid = errors.New("invalid input")
)
