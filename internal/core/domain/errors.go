package domain

import (
	"errors"
	"fmt"
)

var ErrShipmentNotFound = errors.New("shipment not found")
var ErrTrackingNotFound = errors.New("tracking number not found")
var ErrAgentNotFound = errors.New("agent not found")
var ErrZoneNotFound = errors.New("zone not found")
var ErrDuplicateShipment = errors.New("shipment already exists")
var ErrAgentExists = errors.New("agent already registered")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrNoServiceableZone = errors.New("no serviceable zone for location")
var ErrNoAgentAvailable = errors.New("no eligible delivery agent available")
var ErrAgentNotDispatchable = errors.New("agent is not eligible for dispatch")
var ErrVersionConflict = errors.New("shipment was modified concurrently")
var ErrConcurrentUpdate = errors.New("shipment is being updated, retry later")
var ErrProofStorageDisabled = errors.New("proof storage is not configured")

// ValidationError reports malformed or missing input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// InvalidTransitionError names the offending states of a rejected change.
type InvalidTransitionError struct {
	From ShipmentStatus
	To   ShipmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move from %s to %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
