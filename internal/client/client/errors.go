package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("already exists")
	ErrRejected     = errors.New("rejected")
	ErrThrottled    = errors.New("too many attempts")
)
