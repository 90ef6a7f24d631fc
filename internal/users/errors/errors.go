package errors

import "errors"

var (
	ErrNotFound = errors.New("user not found")

	ErrInvalidID = errors.New("invalid user ID format")

	ErrAlreadyExists = errors.New("username already registered")

	ErrTokenNotFound = errors.New("token not found")
)
