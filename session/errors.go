package session

import apperrors "github.com/spotdesk/spotdesk-go/internal/errors"

// Sentinel errors surfaced by session operations. Aliased from the shared
// taxonomy so SDK consumers can match on them without importing internal
// packages.
var (
	ErrNoRefreshToken    = apperrors.ErrNoRefreshToken
	ErrNotReady          = apperrors.ErrNotReady
	ErrOperationInFlight = apperrors.ErrOperationInFlight
)
