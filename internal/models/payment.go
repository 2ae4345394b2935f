package models

import (
	"time"
)

const (
	PaymentMethodCash             = "cash"
	PaymentMethodUPI              = "upi"
	PaymentMethodBankTransfer     = "bank_transfer"
	PaymentMethodCheque           = "cheque"
	PaymentMethodAdvanceDeduction = "advance_deduction"
)

// Payment is a receipt of money applied to a sale, regardless of source.
// AdvancePaymentID links a deduction receipt back to the ledger entry that
// funded it. Rows are append-only.
type Payment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           uint            `gorm:"index;not null" json:"user_id"`
	SaleID           uint            `gorm:"index;not null" json:"sale_id"`
	Sale             *Sale           `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
	AdvancePaymentID *uint           `gorm:"index" json:"advance_payment_id,omitempty"`
	AdvancePayment   *AdvancePayment `gorm:"foreignKey:AdvancePaymentID" json:"advance_payment,omitempty"`
	Amount           float64         `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method           string          `gorm:"size:30;not null" json:"method"`
	ReferenceNumber  string          `gorm:"size:100" json:"reference_number"`
	Notes            string          `gorm:"size:255" json:"notes"`
	PaymentDate      time.Time       `gorm:"not null" json:"payment_date"`
	CreatedAt        time.Time       `json:"created_at"`
}
