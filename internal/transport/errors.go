package transport

import "errors"

// Sentinel errors the core branches on. Implementations wrap these so
// errors.Is works through fmt.Errorf chains.
var (
	// ErrNotAdmin means the capability query failed because the acting
	// account is not an administrator in the chat.
	ErrNotAdmin = errors.New("not an administrator")

	// ErrCannotEdit means the transport refused to edit the message; the
	// responder falls back to a reply.
	ErrCannotEdit = errors.New("cannot edit message")

	// ErrNotFound covers unknown users, chats and deleted messages.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the account can no longer act in the target chat
	// (kicked, blocked, chat deleted). Permanent for delivery purposes.
	ErrForbidden = errors.New("forbidden")
)

// IsPermanent classifies a delivery error. Permanent failures cause the
// delivery loops to give an item up (mark delivered, log); anything else is
// transient and retried next poll cycle.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound)
}
