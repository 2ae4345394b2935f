package models

import (
	"time"
)

// Customer belongs to one dealer account (UserID). AdvanceBalance is the
// authoritative running total of the customer's ledger entries; it is only
// ever written by the settlement service, together with a ledger entry in
// the same transaction.
type Customer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index:idx_customer_user_mobile,unique" json:"user_id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Mobile         string    `gorm:"size:15;not null;index:idx_customer_user_mobile,unique" json:"mobile"`
	Address        string    `gorm:"type:text" json:"address"`
	AdvanceBalance float64   `gorm:"type:decimal(12,2);default:0.00" json:"advance_balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
