// Package server provides the HTTP REST API for the matchmaker.
package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrAttendeeNotFound indicates the attendee was not found
type ErrAttendeeNotFound struct {
	AttendeeID uuid.UUID
}

func (e *ErrAttendeeNotFound) Error() string {
	return fmt.Sprintf("attendee not found: %s", e.AttendeeID)
}

// ErrMatchNotFound indicates the match record was not found
type ErrMatchNotFound struct {
	MatchID uuid.UUID
}

func (e *ErrMatchNotFound) Error() string {
	return fmt.Sprintf("match not found: %s", e.MatchID)
}

// ErrInvalidCredentials indicates invalid admin login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid password"
}

// ErrNoConsent indicates the attendee opted out of matching
type ErrNoConsent struct {
	AttendeeID uuid.UUID
}

func (e *ErrNoConsent) Error() string {
	return fmt.Sprintf("attendee has not consented to matching: %s", e.AttendeeID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrAttendeeNotFound, *ErrMatchNotFound:
		return http.StatusNotFound
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrNoConsent:
		return http.StatusForbidden
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
