// internal/matching/errors.go

package matching

import "errors"

var (
	// ErrNotEligible means the viewer may not browse: unverified, banned,
	// or no gender set. A caller error, never retried.
	ErrNotEligible = errors.New("viewer is not eligible to browse candidates")

	// ErrSelfReaction means a user tried to react to themselves
	ErrSelfReaction = errors.New("cannot react to yourself")

	// ErrViewerNotFound means the viewer has no profile row at all
	ErrViewerNotFound = errors.New("viewer not found")
)
