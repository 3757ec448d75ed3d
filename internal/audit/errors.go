package audit

import "errors"

var (
	ErrUserIDRequired = errors.New("user id cannot be empty")
)
