package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGuestMode is returned for writes from a guest session. It is a
	// deliberate no-op, callers show a notice that nothing was stored.
	ErrGuestMode = errors.New("guest mode: changes are not saved")

	ErrPersonNotFound = errors.New("family member not found")
	ErrNoteNotFound   = errors.New("note not found")

	// ErrUploadFailed aborts a save before any record is touched
	ErrUploadFailed = errors.New("failed to upload photo")

	// ErrPrimarySave means the edited record itself could not be stored,
	// no relationship updates were attempted
	ErrPrimarySave = errors.New("failed to save family member")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

// RelationshipFailure is one related record that could not be updated
type RelationshipFailure struct {
	TargetID string `json:"targetId"`
	Err      error  `json:"-"`
}

// RelationshipUpdateError reports related records left out of sync after a save
// or delete. Updates that did go through are kept.
type RelationshipUpdateError struct {
	Failures []RelationshipFailure
}

func (e *RelationshipUpdateError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.TargetID, f.Err))
	}
	return "some relationships could not be updated: " + strings.Join(parts, ", ")
}

func (e *RelationshipUpdateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
