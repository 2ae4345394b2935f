package models

import (
	"time"
)

const (
	SaleStatusPending = "pending"
	SaleStatusPartial = "partial"
	SaleStatusPaid    = "paid"
)

const (
	DeliveryPending   = "pending"
	DeliveryInTransit = "in_transit"
	DeliveryDelivered = "delivered"
)

type Sale struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	InvoiceNo      string     `gorm:"size:50;unique;not null" json:"invoice_no"`
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	User           User       `gorm:"foreignKey:UserID" json:"-"`
	CustomerID     uint       `gorm:"index;not null" json:"customer_id"`
	Customer       *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	SaleDate       time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"sale_date"`
	TotalAmount    float64    `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	PaidAmount     float64    `gorm:"type:decimal(12,2);default:0.00" json:"paid_amount"`
	DueAmount      float64    `gorm:"type:decimal(12,2);default:0.00" json:"due_amount"`
	Status         string     `gorm:"size:20;default:'pending'" json:"status"`
	DeliveryStatus string     `gorm:"size:20;default:'pending'" json:"delivery_status"`
	Notes          string     `gorm:"type:text" json:"notes"`
	Items          []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type SaleItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	SaleID      uint    `gorm:"index;not null" json:"sale_id"`
	ProductType string  `gorm:"size:100;not null" json:"product_type"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal   float64 `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

// RecalcStatus derives Status from the payment fields. A sale is paid when
// nothing is due, partial when something has been received against a
// remaining due, and pending otherwise.
func (s *Sale) RecalcStatus() {
	switch {
	case s.DueAmount <= 0:
		s.Status = SaleStatusPaid
	case s.PaidAmount > 0:
		s.Status = SaleStatusPartial
	default:
		s.Status = SaleStatusPending
	}
}
