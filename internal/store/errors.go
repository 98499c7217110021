package store

import "errors"

var (
	ErrRunNotFound = errors.New("validation run not found")
)
