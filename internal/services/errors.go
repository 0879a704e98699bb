package services

import "errors"

var (
	ErrUnauthenticated = errors.New("login required")
	ErrForbidden       = errors.New("admin privileges required")
	ErrSpotNotFound    = errors.New("spot not found")

	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrEmailDomain        = errors.New("email address outside the allowed domain")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")

	// ErrInvalidInput wraps field level problems found by the services
	// themselves. The wrapping error carries the message.
	ErrInvalidInput = errors.New("invalid input")
)
