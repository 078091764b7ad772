package user

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidToken = errors.New("invalid or missing access token")
)
