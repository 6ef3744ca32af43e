package library

import "errors"

// Errors returned by the engine. Callers match them with errors.Is; the
// returned values carry the offending id or name as wrapped context.
var (
	ErrDuplicateID           = errors.New("book id already exists")
	ErrDuplicateUsername     = errors.New("username already exists")
	ErrInvalidRole           = errors.New("invalid role")
	ErrInvalidCopyCount      = errors.New("copies must be at least 1")
	ErrNotFound              = errors.New("book not found")
	ErrInvalidResize         = errors.New("cannot set total copies below issued copies")
	ErrInvalidCount          = errors.New("count must be at least 1")
	ErrInsufficientAvailable = errors.New("not enough available copies")
	ErrNoCopiesAvailable     = errors.New("no copies available to issue")
	ErrUnknownMember         = errors.New("member not found")
	ErrNoOpenLoan            = errors.New("no outstanding issue record for this book and member")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidField          = errors.New("invalid field")

	// ErrPersistence wraps a failed save. The in-memory change it accompanies
	// has been applied; only durability was lost.
	ErrPersistence = errors.New("persistence error")

	// ErrCorruptStore is returned at load time when a stored record is
	// truncated or malformed.
	ErrCorruptStore = errors.New("corrupt store")
)
