package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Shubharvey/brickbook-sub001/internal/models"
	"github.com/Shubharvey/brickbook-sub001/internal/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns every write path that touches customer balances, sale payment
// fields, and the advance ledger. Each operation runs as one transaction with
// SELECT ... FOR UPDATE locks taken before the precondition checks, so a
// concurrent settlement on the same customer or sale cannot race past the
// balance/due guards.
type Service struct {
	db            *gorm.DB
	InvoicePrefix string
	ReceiptPrefix string
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, InvoicePrefix: "INV", ReceiptPrefix: "RCP"}
}

// lockForUpdate takes a row lock on dialects that support it. SQLite
// serializes writers on its own, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// round2 snaps a value to two decimals. Every mutation normalizes its input
// amount with this before validation, so ledger entries, receipts and the
// cached balance always share the same quantum and their sums stay exact.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type DeductionInput struct {
	UserID      uint
	CustomerID  uint
	SaleID      uint
	Amount      float64
	Description string
	Date        time.Time
	RequestID   string
}

type DeductionSummary struct {
	AmountDeducted   float64 `json:"amountDeducted"`
	RemainingAdvance float64 `json:"remainingAdvance"`
	RemainingDue     float64 `json:"remainingDue"`
	SaleStatus       string  `json:"saleStatus"`
}

type DeductionResult struct {
	AdvancePayment models.AdvancePayment `json:"advancePayment"`
	Customer       models.Customer       `json:"customer"`
	Sale           models.Sale           `json:"sale"`
	Payment        models.Payment        `json:"payment"`
	Summary        DeductionSummary      `json:"summary"`
}

// ApplyAdvanceToDue moves money from a customer's prepaid balance into a
// sale's outstanding due. Four writes as one atomic unit: ledger entry,
// balance decrement, sale paid/due/status update, deduction receipt.
func (s *Service) ApplyAdvanceToDue(ctx context.Context, in DeductionInput) (*DeductionResult, error) {
	in.Amount = round2(in.Amount)
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	var res DeductionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := lockForUpdate(tx).
			Where("id = ? AND user_id = ?", in.CustomerID, in.UserID).
			First(&customer).Error; err != nil {
			return err
		}

		var sale models.Sale
		if err := lockForUpdate(tx).
			Where("id = ? AND user_id = ?", in.SaleID, in.UserID).
			First(&sale).Error; err != nil {
			return err
		}
		if sale.CustomerID != customer.ID {
			return ErrSaleCustomerMismatch
		}

		// Checked after the row locks so a concurrent retry with the same id
		// serializes behind the winner and sees its entry. A retry takes
		// precedence over the balance guards: it is reported as a duplicate
		// even when the first application changed the balances underneath it.
		if in.RequestID != "" {
			var count int64
			if err := tx.Model(&models.AdvancePayment{}).
				Where("request_id = ?", in.RequestID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateRequest
			}
		}

		if customer.AdvanceBalance < in.Amount {
			return &InsufficientBalanceError{Available: customer.AdvanceBalance, Requested: in.Amount}
		}
		if sale.DueAmount < in.Amount {
			return &ExcessPaymentError{Due: sale.DueAmount, Requested: in.Amount}
		}

		description := in.Description
		if description == "" {
			description = fmt.Sprintf("Advance applied to invoice %s", sale.InvoiceNo)
		}

		entry := models.AdvancePayment{
			UserID:      in.UserID,
			CustomerID:  customer.ID,
			SaleID:      &sale.ID,
			Amount:      -in.Amount,
			Type:        models.AdvanceUsed,
			Description: description,
			Date:        in.Date,
		}
		if in.RequestID != "" {
			requestID := in.RequestID
			entry.RequestID = &requestID
		}
		if err := tx.Create(&entry).Error; err != nil {
			// The unique index on request_id backstops the count above when
			// two retries race on dialects without the row lock.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateRequest
			}
			return err
		}

		customer.AdvanceBalance = round2(customer.AdvanceBalance - in.Amount)
		if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			Update("advance_balance", customer.AdvanceBalance).Error; err != nil {
			return err
		}

		sale.PaidAmount = round2(sale.PaidAmount + in.Amount)
		sale.DueAmount = round2(sale.DueAmount - in.Amount)
		sale.RecalcStatus()
		if err := tx.Model(&models.Sale{}).Where("id = ?", sale.ID).Updates(map[string]interface{}{
			"paid_amount": sale.PaidAmount,
			"due_amount":  sale.DueAmount,
			"status":      sale.Status,
		}).Error; err != nil {
			return err
		}

		payment := models.Payment{
			UserID:           in.UserID,
			SaleID:           sale.ID,
			AdvancePaymentID: &entry.ID,
			Amount:           in.Amount,
			Method:           models.PaymentMethodAdvanceDeduction,
			ReferenceNumber:  utils.GenReceiptNo(s.ReceiptPrefix, in.Date),
			Notes:            in.Description,
			PaymentDate:      in.Date,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		res = DeductionResult{
			AdvancePayment: entry,
			Customer:       customer,
			Sale:           sale,
			Payment:        payment,
			Summary: DeductionSummary{
				AmountDeducted:   in.Amount,
				RemainingAdvance: customer.AdvanceBalance,
				RemainingDue:     sale.DueAmount,
				SaleStatus:       sale.Status,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("customer_id", in.CustomerID).
		Uint("sale_id", in.SaleID).
		Float64("amount", in.Amount).
		Float64("remaining_advance", res.Summary.RemainingAdvance).
		Float64("remaining_due", res.Summary.RemainingDue).
		Msg("Advance applied to due")
	return &res, nil
}

type AddAdvanceInput struct {
	UserID      uint
	CustomerID  uint
	Amount      float64
	Description string
	Reference   string
	Notes       string
	Date        time.Time
}

type AddAdvanceResult struct {
	AdvancePayment models.AdvancePayment `json:"advancePayment"`
	Customer       models.Customer       `json:"customer"`
}

// AddAdvance records prepaid funds: a positive ledger entry plus the balance
// increment, in one transaction.
func (s *Service) AddAdvance(ctx context.Context, in AddAdvanceInput) (*AddAdvanceResult, error) {
	in.Amount = round2(in.Amount)
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	var res AddAdvanceResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := lockForUpdate(tx).
			Where("id = ? AND user_id = ?", in.CustomerID, in.UserID).
			First(&customer).Error; err != nil {
			return err
		}

		description := in.Description
		if description == "" {
			description = "Advance payment received"
		}

		entry := models.AdvancePayment{
			UserID:      in.UserID,
			CustomerID:  customer.ID,
			Amount:      in.Amount,
			Type:        models.AdvanceAdded,
			Description: description,
			Reference:   in.Reference,
			Notes:       in.Notes,
			Date:        in.Date,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		customer.AdvanceBalance = round2(customer.AdvanceBalance + in.Amount)
		if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			Update("advance_balance", customer.AdvanceBalance).Error; err != nil {
			return err
		}

		res = AddAdvanceResult{AdvancePayment: entry, Customer: customer}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

type PaymentInput struct {
	UserID          uint
	SaleID          uint
	Amount          float64
	Method          string
	ReferenceNumber string
	Notes           string
	Date            time.Time
}

// RecordPayment applies a direct (non-advance) payment to a sale. The due is
// clamped at zero; this path never touches the ledger.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	in.Amount = round2(in.Amount)
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Method == "" {
		in.Method = models.PaymentMethodCash
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := lockForUpdate(tx).
			Where("id = ? AND user_id = ?", in.SaleID, in.UserID).
			First(&sale).Error; err != nil {
			return err
		}

		reference := in.ReferenceNumber
		if reference == "" {
			reference = utils.GenReceiptNo(s.ReceiptPrefix, in.Date)
		}

		payment = models.Payment{
			UserID:          in.UserID,
			SaleID:          sale.ID,
			Amount:          in.Amount,
			Method:          in.Method,
			ReferenceNumber: reference,
			Notes:           in.Notes,
			PaymentDate:     in.Date,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		sale.PaidAmount = round2(sale.PaidAmount + in.Amount)
		sale.DueAmount = round2(math.Max(0, sale.DueAmount-in.Amount))
		sale.RecalcStatus()
		if err := tx.Model(&models.Sale{}).Where("id = ?", sale.ID).Updates(map[string]interface{}{
			"paid_amount": sale.PaidAmount,
			"due_amount":  sale.DueAmount,
			"status":      sale.Status,
		}).Error; err != nil {
			return err
		}

		payment.Sale = &sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

type SaleItemInput struct {
	ProductType string  `json:"product_type"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type CreateSaleInput struct {
	UserID         uint
	CustomerID     uint
	SaleDate       time.Time
	Items          []SaleItemInput
	InitialPaid    float64
	PaymentMethod  string
	DeliveryStatus string
	Notes          string
}

// CreateSale creates an invoice with its line items. Any cash received at
// sale time becomes a Payment row in the same transaction, so the receipt
// trail always sums to the sale's paid amount.
func (s *Service) CreateSale(ctx context.Context, in CreateSaleInput) (*models.Sale, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	for i, item := range in.Items {
		switch {
		case item.ProductType == "":
			return nil, &InvalidItemError{Index: i, Reason: "product_type is required"}
		case item.Quantity <= 0:
			return nil, &InvalidItemError{Index: i, Reason: "quantity must be greater than zero"}
		case item.UnitPrice < 0:
			return nil, &InvalidItemError{Index: i, Reason: "unit_price must not be negative"}
		}
	}
	in.InitialPaid = round2(in.InitialPaid)
	if in.InitialPaid < 0 {
		return nil, ErrInvalidAmount
	}
	if in.SaleDate.IsZero() {
		in.SaleDate = time.Now()
	}
	if in.DeliveryStatus == "" {
		in.DeliveryStatus = models.DeliveryPending
	}

	var total float64
	items := make([]models.SaleItem, 0, len(in.Items))
	for _, item := range in.Items {
		lineTotal := round2(item.Quantity * item.UnitPrice)
		total += lineTotal
		items = append(items, models.SaleItem{
			ProductType: item.ProductType,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
		})
	}
	total = round2(total)

	if in.InitialPaid > total {
		return nil, &ExcessPaymentError{Due: total, Requested: in.InitialPaid}
	}

	var sale models.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.Where("id = ? AND user_id = ?", in.CustomerID, in.UserID).
			First(&customer).Error; err != nil {
			return err
		}

		// Simple increment strategy, safe under the surrounding transaction.
		var lastSale models.Sale
		lockForUpdate(tx).Order("id desc").First(&lastSale)

		sale = models.Sale{
			InvoiceNo:      utils.GenInvoiceNo(s.InvoicePrefix, lastSale.ID+1, in.SaleDate),
			UserID:         in.UserID,
			CustomerID:     customer.ID,
			SaleDate:       in.SaleDate,
			TotalAmount:    total,
			PaidAmount:     in.InitialPaid,
			DueAmount:      round2(total - in.InitialPaid),
			DeliveryStatus: in.DeliveryStatus,
			Notes:          in.Notes,
			Items:          items,
		}
		sale.RecalcStatus()
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		if in.InitialPaid > 0 {
			method := in.PaymentMethod
			if method == "" {
				method = models.PaymentMethodCash
			}
			payment := models.Payment{
				UserID:          in.UserID,
				SaleID:          sale.ID,
				Amount:          in.InitialPaid,
				Method:          method,
				ReferenceNumber: utils.GenReceiptNo(s.ReceiptPrefix, in.SaleDate),
				Notes:           "Received at sale time",
				PaymentDate:     in.SaleDate,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}

		sale.Customer = &customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}
