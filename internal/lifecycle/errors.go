package lifecycle

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Errors returned by the lifecycle core.
var (
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrEmptyOrder          = errors.New("order has no line items")
	ErrInvalidLineItem     = errors.New("line item quantity out of range")
	ErrLookupFailure       = errors.New("lookup failure")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrNotFound            = errors.New("not found")
	ErrItemNotFound        = errors.New("kitchen order item not found")
	ErrTicketMismatch      = errors.New("kitchen order does not belong to order")
	ErrAggregateRegression = errors.New("aggregate status cannot leave delivered")
)

// InvalidTransitionError reports a rejected state change with the exact
// (from, to) pair and the entity it was requested for.
type InvalidTransitionError struct {
	Entity string
	ID     uuid.UUID
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition %q -> %q for %s", e.Entity, e.From, e.To, e.ID)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// LookupError is a collaborator miss. Callers degrade to defaults and keep
// the error as a warning.
type LookupError struct {
	Collaborator string
	Ref          string
	Err          error
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s lookup failed for %s", e.Collaborator, e.Ref)
	}
	return fmt.Sprintf("%s lookup failed for %s: %v", e.Collaborator, e.Ref, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

func (e *LookupError) Is(target error) bool {
	return target == ErrLookupFailure
}

// CascadeError marks a partial success: the item-level change was applied
// but the dependent order transition was rejected.
type CascadeError struct {
	OrderID uuid.UUID
	Err     error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("order %s cascade failed: %v", e.OrderID, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}
