package user

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("user not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrUsernameExists   = errors.New("username already exists")
	ErrPasswordRequired = errors.New("password cannot be empty")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes long")
)

// NotFoundError reports a lookup miss for a concrete id. It matches ErrNotFound.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("User not found with id: %d", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
