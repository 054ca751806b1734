package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotAuthorized = errors.New("not authorized")
	ErrConflict      = errors.New("user already exists")

	// ErrInvalidCredentials is the login flavour of ErrUnauthorized.
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
)
