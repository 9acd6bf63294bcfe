package model

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrAmbiguousMatch = errors.New("more than one file matches the stripped name")
	ErrNoEnclosure    = errors.New("episode has no enclosure url")
	ErrUnknownGroup   = errors.New("unknown copy group")
	ErrRunInProgress  = errors.New("another run is already in progress")
)

// FeedError is returned when a podcast feed can't be fetched or parsed.
// It is fatal to that podcast's plan only.
type FeedError struct {
	Podcast string
	URL     string
	Err     error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed %q (%s): %v", e.Podcast, e.URL, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// PreconditionError aborts a whole copy operation before anything is modified.
type PreconditionError struct {
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Err == nil {
		return "precondition failed: " + e.Reason
	}
	return fmt.Sprintf("precondition failed: %s: %v", e.Reason, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}
