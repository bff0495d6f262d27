package logging

const (
	// KeyError is the logging key for errors.
	KeyError = "err"

	// KeyBackend is the logging key for the ticket store backend.
	KeyBackend = "backend"

	// KeyChannel is the logging key for discord channel IDs.
	KeyChannel = "channel"

	// KeyTicket is the logging key for ticket IDs.
	KeyTicket = "ticket"

	// KeyUser is the logging key for discord user IDs.
	KeyUser = "user"

	// KeyOperation is the logging key for the operation being performed.
	KeyOperation = "op"

	// KeySignal is the logging key for OS signals.
	KeySignal = "signal"
)
