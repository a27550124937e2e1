package auth

import "errors"

var (
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrMethodNotAllowed = errors.New("method not allowed for this operation")
	ErrScopeMissing     = errors.New("space id not provided")
	ErrNoPermission     = errors.New("user has no permission for this space")
)
