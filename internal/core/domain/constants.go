package domain

import "errors"

var (
	ErrHandlerNotFound    = errors.New("no handler for command")
	ErrDuplicateBuiltIn   = errors.New("built-in command name already registered")
	ErrDuplicatePlugin    = errors.New("plugin command name already registered")
	ErrUnknownPlugin      = errors.New("unknown plugin")
	ErrFetchFailed        = errors.New("failed fetching external resource")
	ErrMalformedResponse  = errors.New("malformed external response")
	ErrSendingReplyFailed = errors.New("failed to send reply")
)
