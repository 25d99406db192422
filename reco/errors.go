package reco

import (
	"errors"
	"fmt"
)

// ErrConfiguration is wrapped by every error produced while loading or
// validating analysis configuration. Such errors are fatal at startup only.
var ErrConfiguration = errors.New("invalid configuration")

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// LookupError reports an ancestry reference that does not resolve within the
// event. The signature search recovers from it by rejecting the candidate.
type LookupError struct {
	TrackID  int // the id that failed to resolve
	Referrer int // track id of the particle holding the reference, 0 if none
}

func (e *LookupError) Error() string {
	if e.Referrer != 0 {
		return fmt.Sprintf("track %d referenced by track %d not found", e.TrackID, e.Referrer)
	}
	return fmt.Sprintf("track %d not found", e.TrackID)
}

// DuplicateTrackError reports two particles of one event sharing a track id.
// It is an input-data error: the event degrades to a sentinel record and the
// run continues.
type DuplicateTrackError struct {
	TrackID int
	First   int // position of the first occurrence
	Second  int // position of the duplicate
}

func (e *DuplicateTrackError) Error() string {
	return fmt.Sprintf("duplicate track id %d at positions %d and %d", e.TrackID, e.First, e.Second)
}
