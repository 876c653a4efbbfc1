package vi

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImagery means zero scenes survived the catalog filters. It is a
	// recoverable condition: Calculate turns it into an empty series.
	ErrNoImagery = errors.New("no imagery found for the requested area and period")

	// ErrInsufficientBaseline means VCI was requested without historical
	// min/max values for the scene's calendar month.
	ErrInsufficientBaseline = errors.New("insufficient historical baseline for VCI")

	// ErrArchiveTimeout means the imagery archive did not answer in time.
	// Distinct from ErrNoImagery so callers can tell "nothing found" from
	// "couldn't determine".
	ErrArchiveTimeout = errors.New("imagery archive request timed out")

	// ErrArchiveUnavailable covers transient archive failures eligible for
	// caller-driven retry.
	ErrArchiveUnavailable = errors.New("imagery archive unavailable")
)

// InvalidInputError reports a malformed geometry, date range or VI type.
// Caller error, never retried.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
