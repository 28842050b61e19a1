package service

import "github.com/pkg/errors"

// Sentinel errors the API layer translates into response codes. Every
// mutating operation either fully applies its state change or returns one
// of these without touching anything.
var (
	// Not-found
	ErrDonationNotFound = errors.New("donation not found")
	ErrUserNotFound     = errors.New("user not found")

	// State conflicts
	ErrNotAvailable = errors.New("donation is no longer available")
	ErrNotClaimed   = errors.New("donation is not awaiting pickup")
	ErrNotCompleted = errors.New("cannot rate an uncompleted donation")
	ErrAlreadyRated = errors.New("rating already submitted for this role")

	// Validation
	ErrMissingFields      = errors.New("missing donation fields")
	ErrMissingCoordinates = errors.New("donation coordinates are required")
	ErrMissingSubject     = errors.New("identity subject is required")
	ErrInvalidStatus      = errors.New("invalid status provided")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidRole        = errors.New("role must be donor or recipient")

	// ErrDependency marks a failure in a backing service (database or
	// search index). Transient; the caller may retry.
	ErrDependency = errors.New("backing service unavailable")
)

// dependencyError tags an infrastructure failure as retriable while
// keeping the underlying cause's text for the logs.
func dependencyError(err error) error {
	return errors.WithMessage(ErrDependency, err.Error())
}
