package registry

import "github.com/pkg/errors"

// Failure classes of registry operations. Every failing operation wraps one
// of these with the specific reason, so callers classify with errors.Is and
// still see what went wrong.
var (
	// ErrPermissionDenied means the caller lacks the capability the
	// operation is gated behind.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput means an argument failed validation, for example a
	// malformed pubkey, a zero address or an amount below the minimum.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the operator does not exist, or the caller's
	// address owns no operator.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means a status precondition failed, or the registry
	// is not (or already) initialized.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnauthorizedCaller means a sink-only operation was called from an
	// address that is not the reward sink.
	ErrUnauthorizedCaller = errors.New("unauthorized caller")
)
