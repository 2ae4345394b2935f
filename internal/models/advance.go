package models

import (
	"time"
)

// AdvanceType classifies a ledger entry.
type AdvanceType string

const (
	AdvanceAdded    AdvanceType = "ADVANCE_ADDED"    // funds added to the customer's prepaid balance
	AdvanceUsed     AdvanceType = "ADVANCE_USED"     // funds applied against a sale's due
	AdvanceRefunded AdvanceType = "ADVANCE_REFUNDED" // funds returned to the customer
)

// AdvancePayment is one immutable entry in a customer's advance-balance
// ledger. Amount is signed: positive entries add funds, negative entries use
// them. Rows are append-only; the running sum per customer must equal
// Customer.AdvanceBalance after any committed transaction.
type AdvancePayment struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	CustomerID  uint        `gorm:"index;not null" json:"customer_id"`
	Customer    *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	SaleID      *uint       `gorm:"index" json:"sale_id,omitempty"`
	Amount      float64     `gorm:"type:decimal(12,2);not null" json:"amount"`
	Type        AdvanceType `gorm:"size:30;not null" json:"type"`
	Description string      `gorm:"size:255" json:"description"`
	Reference   string      `gorm:"size:100" json:"reference"`
	Notes       string      `gorm:"size:255" json:"notes"`
	RequestID   *string     `gorm:"size:64;unique" json:"request_id,omitempty"`
	Date        time.Time   `gorm:"not null" json:"date"`
	CreatedAt   time.Time   `json:"created_at"`
}
