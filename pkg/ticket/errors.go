package ticket

import (
	"errors"
	"fmt"

	"github.com/oakrp/warden/pkg/messages"
)

var (
	// ErrForbidden is returned when the actor lacks the required role or ownership.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when no ticket exists for the channel.
	ErrNotFound = errors.New("ticket not found")

	// ErrConflict is returned when a ticket already exists for the channel.
	ErrConflict = errors.New("ticket already exists")

	// ErrAlreadyClaimed is returned when a claim is attempted on a claimed ticket.
	// Claiming your own claimed ticket is still ErrAlreadyClaimed, so accidental
	// double clicks surface to the user instead of silently succeeding.
	ErrAlreadyClaimed = errors.New("ticket already claimed")

	// ErrNotClaimed is returned when an unclaim is attempted on an unclaimed ticket.
	ErrNotClaimed = errors.New("ticket not claimed")

	// ErrCategoryUnresolvable is returned when the configured destination category
	// for a ticket type cannot be located.
	ErrCategoryUnresolvable = errors.New("ticket category unresolvable")

	// ErrMetadataTooLarge is returned when an encoded ticket record does not fit
	// the channel topic limit.
	ErrMetadataTooLarge = errors.New("ticket metadata exceeds the channel topic limit")
)

// PlatformError wraps a failed call to the discord client with the operation
// name and channel so operational errors can be diagnosed from the log sink.
type PlatformError struct {
	// Op is the name of the platform operation that failed.
	Op string

	// ChannelID is the channel the operation targeted, if any.
	ChannelID string

	// Err is the underlying client error.
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform call %s failed on channel %s: %v", e.Op, e.ChannelID, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

func platformErr(op, channelID string, err error) error {
	return &PlatformError{Op: op, ChannelID: channelID, Err: err}
}

// IsUserError reports whether the error should be reported to the invoking
// actor only, as a private notice, and never to the shared log sink.
func IsUserError(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadyClaimed) ||
		errors.Is(err, ErrNotClaimed)
}

// UserMessage renders a user error as the private notice shown to the actor.
// It returns an empty string for operational errors.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrForbidden):
		return messages.ErrNoPermission
	case errors.Is(err, ErrNotFound):
		return messages.ErrNotATicketChannel
	case errors.Is(err, ErrAlreadyClaimed):
		return messages.ErrTicketAlreadyClaimed
	case errors.Is(err, ErrNotClaimed):
		return messages.ErrTicketNotClaimed
	case errors.Is(err, ErrConflict):
		return messages.ErrTicketExists
	default:
		return ""
	}
}
