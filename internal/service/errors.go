package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrInternalError  = errors.New("internal error")
)

var (
	ErrMissingParams = fmt.Errorf("%w: missing one or more of the required params", ErrInvalidRequest)
	ErrUnknownAvatar = fmt.Errorf("%w: avatar does not exist", ErrInvalidRequest)
	ErrPostNotFound  = fmt.Errorf("post %w", ErrNotFound)
	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)
)
