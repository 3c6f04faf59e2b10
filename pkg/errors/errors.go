package errors

import (
	"fmt"

	"github.com/fashionstore/storefront/internal/domain"
)

// ErrNotFound indicates a requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates invalid input; no state was changed
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Message
}

// ErrCapacity indicates the cart item ceiling would be exceeded
type ErrCapacity struct {
	Limit int
}

func (e *ErrCapacity) Error() string {
	return fmt.Sprintf("cart cannot hold more than %d items", e.Limit)
}

// ErrConflict indicates a lost race on a conditional update (stock claim,
// coupon claim). The operation committed nothing and may be retried.
type ErrConflict struct {
	Resource string
	Reason   string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Resource, e.Reason)
}

// ErrUnauthorized indicates authentication failure
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// ErrInvalidStateTransition indicates an illegal order status transition
type ErrInvalidStateTransition struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}
