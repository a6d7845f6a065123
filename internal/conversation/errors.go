package conversation

import "errors"

var (
	// ErrInsufficientHistory is returned when rewind/retry/edit is attempted
	// with no qualifying prior user turn. No state is changed.
	ErrInsufficientHistory = errors.New("no qualifying prior turn")

	// ErrBusy is returned when an operation is requested while another is in
	// flight. Operations never queue.
	ErrBusy = errors.New("another operation is in flight")

	// ErrValidation is returned when the user/assistant alternation invariant
	// would be violated.
	ErrValidation = errors.New("alternation invariant violated")

	// ErrStreamInterrupted is returned when the provider stream ends
	// abnormally. Partial assistant content is retained as a partial turn and
	// Retry may be invoked.
	ErrStreamInterrupted = errors.New("provider stream interrupted")

	// ErrStateResolution is returned when rewind's content-hash lookup fails
	// during restoration. The history is left exactly as it was.
	ErrStateResolution = errors.New("rewind target could not be resolved")
)
