package auth

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)
