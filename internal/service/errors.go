package service

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error a service returns to a handler either is one of
// these or wraps one of them; anything else is an internal failure.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
)

var (
	ErrNotFamily      = fmt.Errorf("%w: family account required", ErrForbidden)
	ErrNotStaff       = fmt.Errorf("%w: caregiver or admin account required", ErrForbidden)
	ErrNotAdmin       = fmt.Errorf("%w: admin account required", ErrForbidden)
	ErrCrossFacility  = fmt.Errorf("%w: resident belongs to another facility", ErrForbidden)
	ErrNotConnected   = fmt.Errorf("%w: no approved connection to this resident", ErrForbidden)
	ErrNotLinkOwner   = fmt.Errorf("%w: only the requester or facility staff may remove this link", ErrForbidden)
	ErrResidentAbsent = fmt.Errorf("%w: resident", ErrNotFound)
	ErrLinkAbsent     = fmt.Errorf("%w: family request", ErrNotFound)
	ErrNoPendingLink  = fmt.Errorf("%w: no pending family request with this id", ErrNotFound)
	ErrNotification   = fmt.Errorf("%w: notification", ErrNotFound)

	ErrAlreadyConnected = fmt.Errorf("%w: already connected to this resident", ErrConflict)
	ErrRequestPending   = fmt.Errorf("%w: a request for this resident is already pending", ErrConflict)
	ErrEmailExists      = fmt.Errorf("%w: email already registered", ErrConflict)

	ErrRelationshipRequired = fmt.Errorf("%w: relationship is required", ErrValidation)
	ErrRelationshipTooLong  = fmt.Errorf("%w: relationship is too long", ErrValidation)
	ErrInvalidAction        = fmt.Errorf("%w: action must be approve or reject", ErrValidation)
	ErrInvalidRole          = fmt.Errorf("%w: unsupported role", ErrValidation)

	ErrInvalidCreds = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
)
