package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrNoItems              = errors.New("sale must contain at least one item")
	ErrDuplicateRequest     = errors.New("request already processed")
	ErrSaleCustomerMismatch = errors.New("sale does not belong to this customer")
)

// InsufficientBalanceError is returned when a deduction exceeds the
// customer's prepaid balance. Carries the diagnostic fields callers report.
type InsufficientBalanceError struct {
	Available float64
	Requested float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient advance balance: available %.2f, requested %.2f", e.Available, e.Requested)
}

// ExcessPaymentError is returned when a deduction exceeds the sale's
// outstanding due. The workflow rejects overpayment rather than clamping.
type ExcessPaymentError struct {
	Due       float64
	Requested float64
}

func (e *ExcessPaymentError) Error() string {
	return fmt.Sprintf("payment exceeds due amount: due %.2f, requested %.2f", e.Due, e.Requested)
}

// InvalidItemError flags a sale line item that fails the fixed
// {product_type, quantity, unit_price} schema.
type InvalidItemError struct {
	Index  int
	Reason string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("invalid sale item at index %d: %s", e.Index, e.Reason)
}
