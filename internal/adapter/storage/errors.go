package storage

import "errors"

var (
	ErrItemNotFound  = errors.New("listing not found in store")
	ErrDuplicateItem = errors.New("listing already exists")
)
