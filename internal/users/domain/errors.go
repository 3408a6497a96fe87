package domain

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrAccountDeleted = errors.New("account has been deleted")
)
