package messaging

import (
	"errors"
	"fmt"
)

var (
	// ErrRecipientNotFound is returned when the recipient id does not
	// resolve to an existing account.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrPermissionDenied is returned when the role matrix rejects the
	// sender/recipient role pair.
	ErrPermissionDenied = errors.New("not authorized to message this role")
	// ErrSelfMessage is returned when sender and recipient are the same
	// account, regardless of role.
	ErrSelfMessage = errors.New("cannot send message to yourself")
)

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
