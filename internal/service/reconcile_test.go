package service

import (
	"context"
	"testing"

	"github.com/Shubharvey/brickbook-sub001/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_Consistent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 900)
	sale := createPartialSale(t, svc, user.ID, customer.ID)

	_, err := svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		SaleID:     sale.ID,
		Amount:     300,
	})
	require.NoError(t, err)

	drifts, checked, err := svc.Reconcile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, drifts)
	assert.EqualValues(t, 1, checked)
}

func TestReconcile_DetectsDrift(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 500)

	// Simulate a write path that bypassed the ledger.
	require.NoError(t, db.Model(&models.Customer{}).
		Where("id = ?", customer.ID).
		Update("advance_balance", 650).Error)

	drifts, _, err := svc.Reconcile(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, customer.ID, drifts[0].CustomerID)
	assert.InDelta(t, 650, drifts[0].CachedBalance, 0.001)
	assert.InDelta(t, 500, drifts[0].LedgerBalance, 0.001)
	assert.InDelta(t, 150, drifts[0].Drift, 0.001)
}

func TestLedgerEntries(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	other := seedUser(t, db, "other@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 500)
	addAdvance(t, svc, user.ID, customer.ID, 200)

	got, entries, err := svc.LedgerEntries(context.Background(), user.ID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)
	assert.Len(t, entries, 2)

	// Another account cannot read this customer's ledger.
	_, _, err = svc.LedgerEntries(context.Background(), other.ID, customer.ID)
	assert.Error(t, err)
}
