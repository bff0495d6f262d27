package messages

const (
	// ErrUserErrorProcessing is the generic failure notice shown to the invoking
	// user when an operation fails for a reason that is not their fault.
	ErrUserErrorProcessing = "Something went wrong processing your request. Please try again later."

	// ErrNotATicketChannel is shown when a ticket command is used outside a ticket channel.
	ErrNotATicketChannel = "This command must be used inside a ticket channel."

	// ErrNoPermission is shown when the user lacks the required role or ownership.
	ErrNoPermission = "You do not have permission to do that."

	// ErrTicketAlreadyClaimed is shown when a claim is attempted on a claimed ticket.
	ErrTicketAlreadyClaimed = "This ticket is already claimed."

	// ErrTicketNotClaimed is shown when an unclaim is attempted on an unclaimed ticket.
	ErrTicketNotClaimed = "This ticket is not claimed."

	// ErrTicketExists is shown when a ticket already exists for the channel.
	ErrTicketExists = "A ticket already exists for this channel."
)
