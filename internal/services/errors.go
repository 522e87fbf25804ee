package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gymdesk/backend/internal/store"
)

// Validation errors: the request itself is malformed.
var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidCategory      = errors.New("invalid category for transaction type")
	ErrInvalidDescription   = errors.New("description is required")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// State errors: the request is well formed but the register does not allow it.
var (
	ErrAlreadyOpen         = errors.New("register is already open")
	ErrNotOpen             = errors.New("register is not open")
	ErrNoRegister          = errors.New("no register for date")
	ErrRegisterClosed      = errors.New("register is closed")
	ErrStaleRegister       = errors.New("register belongs to a past business day")
	ErrNotClosed           = errors.New("register is not closed")
	ErrRegisterNotFound    = errors.New("register not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Infrastructure errors: retrying later may succeed.
var (
	ErrStoreUnavailable    = errors.New("store temporarily unavailable")
	ErrConcurrencyConflict = errors.New("concurrent modification, please retry")
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindState
	KindInfrastructure
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindInfrastructure:
		return "infrastructure"
	}
	return "unknown"
}

var errorKinds = map[error]ErrorKind{
	ErrInvalidAmount:        KindValidation,
	ErrInvalidCategory:      KindValidation,
	ErrInvalidDescription:   KindValidation,
	ErrInvalidDate:          KindValidation,
	ErrInvalidPaymentMethod: KindValidation,
	ErrAlreadyOpen:          KindState,
	ErrNotOpen:              KindState,
	ErrNoRegister:           KindState,
	ErrRegisterClosed:       KindState,
	ErrStaleRegister:        KindState,
	ErrNotClosed:            KindState,
	ErrRegisterNotFound:     KindState,
	ErrTransactionNotFound:  KindState,
	ErrStoreUnavailable:     KindInfrastructure,
	ErrConcurrencyConflict:  KindInfrastructure,
}

// KindOf classifies err by the first cashier sentinel found in its chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	for sentinel, kind := range errorKinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}

// storeErr translates store failures into cashier infrastructure errors.
// Domain errors raised inside a mutation pass through untouched.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
	case errors.Is(err, store.ErrInvalidValue):
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	case errors.Is(err, store.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
