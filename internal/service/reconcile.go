package service

import (
	"context"
	"math"

	"github.com/Shubharvey/brickbook-sub001/internal/models"
)

// BalanceDrift reports a customer whose cached advance balance no longer
// matches the sum of their ledger entries.
type BalanceDrift struct {
	CustomerID    uint    `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	CachedBalance float64 `json:"cached_balance"`
	LedgerBalance float64 `json:"ledger_balance"`
	Drift         float64 `json:"drift"`
}

// Reconcile recomputes every customer balance from the ledger and returns the
// mismatches. The cached column stays authoritative for reads; this exists to
// surface drift if a write path ever bypasses the settlement service.
func (s *Service) Reconcile(ctx context.Context, userID uint) ([]BalanceDrift, int64, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	drifts := []BalanceDrift{}
	for _, customer := range customers {
		var ledgerBalance float64
		err := s.db.WithContext(ctx).Model(&models.AdvancePayment{}).
			Where("customer_id = ?", customer.ID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&ledgerBalance).Error
		if err != nil {
			return nil, 0, err
		}

		diff := round2(customer.AdvanceBalance - ledgerBalance)
		if math.Abs(diff) >= 0.01 {
			drifts = append(drifts, BalanceDrift{
				CustomerID:    customer.ID,
				CustomerName:  customer.Name,
				CachedBalance: customer.AdvanceBalance,
				LedgerBalance: round2(ledgerBalance),
				Drift:         diff,
			})
		}
	}
	return drifts, int64(len(customers)), nil
}

// LedgerEntries returns a customer's advance history, newest first, after
// verifying ownership.
func (s *Service) LedgerEntries(ctx context.Context, userID, customerID uint) (models.Customer, []models.AdvancePayment, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", customerID, userID).
		First(&customer).Error; err != nil {
		return models.Customer{}, nil, err
	}

	var entries []models.AdvancePayment
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("date desc, id desc").
		Find(&entries).Error; err != nil {
		return models.Customer{}, nil, err
	}
	return customer, entries, nil
}
