package domain

import "errors"

var (
	ErrNotConfigured    = errors.New("credentials not configured")
	ErrFetchFailed      = errors.New("usage fetch failed")
	ErrEmptyCredentials = errors.New("session key and organization id are required")
	ErrSecretNotFound   = errors.New("secret not found")
)
