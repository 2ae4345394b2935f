package service

import (
	"context"
	"testing"

	"github.com/Shubharvey/brickbook-sub001/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
		&models.AdvancePayment{},
		&models.Payment{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Name: "Dealer", Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCustomer(t *testing.T, db *gorm.DB, userID uint, name string) models.Customer {
	t.Helper()
	customer := models.Customer{UserID: userID, Name: name, Mobile: "99990000" + name[:2]}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func addAdvance(t *testing.T, svc *Service, userID, customerID uint, amount float64) {
	t.Helper()
	_, err := svc.AddAdvance(context.Background(), AddAdvanceInput{
		UserID:     userID,
		CustomerID: customerID,
		Amount:     amount,
	})
	require.NoError(t, err)
}

// createPartialSale builds a sale of 2000 with 500 received at sale time:
// paid 500, due 1500, status partial.
func createPartialSale(t *testing.T, svc *Service, userID, customerID uint) models.Sale {
	t.Helper()
	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{
		UserID:     userID,
		CustomerID: customerID,
		Items: []SaleItemInput{
			{ProductType: "red bricks", Quantity: 400, UnitPrice: 5},
		},
		InitialPaid: 500,
	})
	require.NoError(t, err)
	require.InDelta(t, 2000, sale.TotalAmount, 0.001)
	require.InDelta(t, 1500, sale.DueAmount, 0.001)
	require.Equal(t, models.SaleStatusPartial, sale.Status)
	return *sale
}

func reloadCustomer(t *testing.T, db *gorm.DB, id uint) models.Customer {
	t.Helper()
	var customer models.Customer
	require.NoError(t, db.First(&customer, id).Error)
	return customer
}

func reloadSale(t *testing.T, db *gorm.DB, id uint) models.Sale {
	t.Helper()
	var sale models.Sale
	require.NoError(t, db.First(&sale, id).Error)
	return sale
}

func ledgerSum(t *testing.T, db *gorm.DB, customerID uint) float64 {
	t.Helper()
	var sum float64
	require.NoError(t, db.Model(&models.AdvancePayment{}).
		Where("customer_id = ?", customerID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error)
	return sum
}

func TestApplyAdvanceToDue_PartialSettlement(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 1000)
	sale := createPartialSale(t, svc, user.ID, customer.ID)

	res, err := svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		SaleID:     sale.ID,
		Amount:     1000,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0, res.Customer.AdvanceBalance, 0.001)
	assert.InDelta(t, 1500, res.Sale.PaidAmount, 0.001)
	assert.InDelta(t, 500, res.Sale.DueAmount, 0.001)
	assert.Equal(t, models.SaleStatusPartial, res.Sale.Status)

	assert.InDelta(t, -1000, res.AdvancePayment.Amount, 0.001)
	assert.Equal(t, models.AdvanceUsed, res.AdvancePayment.Type)
	require.NotNil(t, res.AdvancePayment.SaleID)
	assert.Equal(t, sale.ID, *res.AdvancePayment.SaleID)

	assert.InDelta(t, 1000, res.Payment.Amount, 0.001)
	assert.Equal(t, models.PaymentMethodAdvanceDeduction, res.Payment.Method)
	require.NotNil(t, res.Payment.AdvancePaymentID)
	assert.Equal(t, res.AdvancePayment.ID, *res.Payment.AdvancePaymentID)

	assert.InDelta(t, 1000, res.Summary.AmountDeducted, 0.001)
	assert.InDelta(t, 0, res.Summary.RemainingAdvance, 0.001)
	assert.InDelta(t, 500, res.Summary.RemainingDue, 0.001)

	// Persisted state matches the returned records.
	assert.InDelta(t, 0, reloadCustomer(t, db, customer.ID).AdvanceBalance, 0.001)
	persisted := reloadSale(t, db, sale.ID)
	assert.InDelta(t, 1500, persisted.PaidAmount, 0.001)
	assert.InDelta(t, 500, persisted.DueAmount, 0.001)
}

func TestApplyAdvanceToDue_ExhaustsDue(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 2000)
	sale := createPartialSale(t, svc, user.ID, customer.ID)

	res, err := svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		SaleID:     sale.ID,
		Amount:     1500,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0, res.Sale.DueAmount, 0.001)
	assert.Equal(t, models.SaleStatusPaid, res.Sale.Status)
	assert.InDelta(t, 500, res.Customer.AdvanceBalance, 0.001)
}

func TestApplyAdvanceToDue_InsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 300)
	sale := createPartialSale(t, svc, user.ID, customer.ID)

	_, err := svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		SaleID:     sale.ID,
		Amount:     500,
	})

	var insufficient *InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.InDelta(t, 300, insufficient.Available, 0.001)
	assert.InDelta(t, 500, insufficient.Requested, 0.001)

	// No side effects: balance, sale and ledger untouched.
	assert.InDelta(t, 300, reloadCustomer(t, db, customer.ID).AdvanceBalance, 0.001)
	persisted := reloadSale(t, db, sale.ID)
	assert.InDelta(t, 500, persisted.PaidAmount, 0.001)
	assert.InDelta(t, 1500, persisted.DueAmount, 0.001)

	var usageEntries int64
	db.Model(&models.AdvancePayment{}).Where("type = ?", models.AdvanceUsed).Count(&usageEntries)
	assert.Zero(t, usageEntries)
}

func TestApplyAdvanceToDue_ExcessPayment(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 5000)
	sale := createPartialSale(t, svc, user.ID, customer.ID)

	_, err := svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		SaleID:     sale.ID,
		Amount:     2000, // due is only 1500
	})

	var excess *ExcessPaymentError
	require.ErrorAs(t, err, &excess)
	assert.InDelta(t, 1500, excess.Due, 0.001)
	assert.InDelta(t, 2000, excess.Requested, 0.001)

	assert.InDelta(t, 5000, reloadCustomer(t, db, customer.ID).AdvanceBalance, 0.001)
	assert.InDelta(t, 1500, reloadSale(t, db, sale.ID).DueAmount, 0.001)
}

func TestApplyAdvanceToDue_InvalidAmount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	for _, amount := range []float64{0, -50} {
		_, err := svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
			UserID: 1, CustomerID: 1, SaleID: 1, Amount: amount,
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestApplyAdvanceToDue_SaleOfDifferentCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customerA := seedCustomer(t, db, user.ID, "Ravi")
	customerB := seedCustomer(t, db, user.ID, "Suresh")
	addAdvance(t, svc, user.ID, customerB.ID, 1000)
	sale := createPartialSale(t, svc, user.ID, customerA.ID)

	_, err := svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
		UserID:     user.ID,
		CustomerID: customerB.ID,
		SaleID:     sale.ID,
		Amount:     500,
	})
	assert.ErrorIs(t, err, ErrSaleCustomerMismatch)
}

func TestApplyAdvanceToDue_SaleNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 1000)

	_, err := svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		SaleID:     9999,
		Amount:     500,
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestApplyAdvanceToDue_ForeignSaleHidden(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	owner := seedUser(t, db, "owner@example.com")
	intruder := seedUser(t, db, "intruder@example.com")
	customer := seedCustomer(t, db, owner.ID, "Ravi")
	addAdvance(t, svc, owner.ID, customer.ID, 1000)
	sale := createPartialSale(t, svc, owner.ID, customer.ID)

	// Another account must not be able to settle against this sale.
	_, err := svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
		UserID:     intruder.ID,
		CustomerID: customer.ID,
		SaleID:     sale.ID,
		Amount:     500,
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.InDelta(t, 1000, reloadCustomer(t, db, customer.ID).AdvanceBalance, 0.001)
}

func TestApplyAdvanceToDue_DuplicateRequestID(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 1000)
	sale := createPartialSale(t, svc, user.ID, customer.ID)

	in := DeductionInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		SaleID:     sale.ID,
		Amount:     400,
		RequestID:  "req-123",
	}

	_, err := svc.ApplyAdvanceToDue(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.ApplyAdvanceToDue(context.Background(), in)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// Applied once, not twice.
	assert.InDelta(t, 600, reloadCustomer(t, db, customer.ID).AdvanceBalance, 0.001)
	assert.InDelta(t, 1100, reloadSale(t, db, sale.ID).DueAmount, 0.001)
}

func TestApplyAdvanceToDue_SubCentAmountNormalized(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 500)
	sale := createPartialSale(t, svc, user.ID, customer.ID)

	res, err := svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		SaleID:     sale.ID,
		Amount:     100.004,
	})
	require.NoError(t, err)

	// The sub-cent part is dropped before anything is stored, so the ledger
	// entry, receipt and cached balance all carry the same 100.00.
	assert.InDelta(t, -100, res.AdvancePayment.Amount, 1e-9)
	assert.InDelta(t, 100, res.Payment.Amount, 1e-9)
	assert.InDelta(t, 100, res.Summary.AmountDeducted, 1e-9)

	final := reloadCustomer(t, db, customer.ID)
	assert.InDelta(t, 400, final.AdvanceBalance, 1e-9)
	assert.InDelta(t, final.AdvanceBalance, ledgerSum(t, db, customer.ID), 1e-9)
	assert.InDelta(t, 600, reloadSale(t, db, sale.ID).PaidAmount, 1e-9)

	// An amount that rounds to zero is invalid, not a free no-op entry.
	_, err = svc.AddAdvance(context.Background(), AddAdvanceInput{
		UserID: user.ID, CustomerID: customer.ID, Amount: 0.004,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestApplyAdvanceToDue_DuplicateAfterBalanceDrained(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 1000)
	sale := createPartialSale(t, svc, user.ID, customer.ID)

	in := DeductionInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		SaleID:     sale.ID,
		Amount:     400,
		RequestID:  "retry-9",
	}
	_, err := svc.ApplyAdvanceToDue(context.Background(), in)
	require.NoError(t, err)

	// Drain the balance below the retried amount.
	_, err = svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		SaleID:     sale.ID,
		Amount:     500,
	})
	require.NoError(t, err)

	// The retry is reported as a duplicate, not as an insufficient balance.
	_, err = svc.ApplyAdvanceToDue(context.Background(), in)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	assert.InDelta(t, 100, reloadCustomer(t, db, customer.ID).AdvanceBalance, 0.001)
}

func TestBalanceConservation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	addAdvance(t, svc, user.ID, customer.ID, 1200)
	sale := createPartialSale(t, svc, user.ID, customer.ID)

	amounts := []float64{250, 400.50, 149.50}
	var applied float64
	for _, amount := range amounts {
		_, err := svc.ApplyAdvanceToDue(context.Background(), DeductionInput{
			UserID:     user.ID,
			CustomerID: customer.ID,
			SaleID:     sale.ID,
			Amount:     amount,
		})
		require.NoError(t, err)
		applied += amount
	}

	final := reloadCustomer(t, db, customer.ID)
	assert.InDelta(t, 1200-applied, final.AdvanceBalance, 0.001)

	// The ledger is the balance: entries sum to the cached column.
	assert.InDelta(t, final.AdvanceBalance, ledgerSum(t, db, customer.ID), 0.001)

	persisted := reloadSale(t, db, sale.ID)
	assert.InDelta(t, 500+applied, persisted.PaidAmount, 0.001)
	assert.GreaterOrEqual(t, persisted.DueAmount, 0.0)
}

func TestAddAdvance(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")

	res, err := svc.AddAdvance(context.Background(), AddAdvanceInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		Amount:     750,
		Reference:  "UPI-88211",
	})
	require.NoError(t, err)

	assert.InDelta(t, 750, res.Customer.AdvanceBalance, 0.001)
	assert.InDelta(t, 750, res.AdvancePayment.Amount, 0.001)
	assert.Equal(t, models.AdvanceAdded, res.AdvancePayment.Type)
	assert.Nil(t, res.AdvancePayment.SaleID)

	_, err = svc.AddAdvance(context.Background(), AddAdvanceInput{
		UserID: user.ID, CustomerID: customer.ID, Amount: -10,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.AddAdvance(context.Background(), AddAdvanceInput{
		UserID: user.ID, CustomerID: 9999, Amount: 100,
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecordPayment(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")
	sale := createPartialSale(t, svc, user.ID, customer.ID)

	payment, err := svc.RecordPayment(context.Background(), PaymentInput{
		UserID: user.ID,
		SaleID: sale.ID,
		Amount: 700,
		Method: models.PaymentMethodUPI,
	})
	require.NoError(t, err)

	assert.InDelta(t, 700, payment.Amount, 0.001)
	assert.Equal(t, models.PaymentMethodUPI, payment.Method)
	assert.NotEmpty(t, payment.ReferenceNumber)
	assert.Nil(t, payment.AdvancePaymentID)

	persisted := reloadSale(t, db, sale.ID)
	assert.InDelta(t, 1200, persisted.PaidAmount, 0.001)
	assert.InDelta(t, 800, persisted.DueAmount, 0.001)
	assert.Equal(t, models.SaleStatusPartial, persisted.Status)

	// Overpayment on the direct path clamps the due at zero.
	_, err = svc.RecordPayment(context.Background(), PaymentInput{
		UserID: user.ID,
		SaleID: sale.ID,
		Amount: 1000,
	})
	require.NoError(t, err)

	persisted = reloadSale(t, db, sale.ID)
	assert.InDelta(t, 0, persisted.DueAmount, 0.001)
	assert.Equal(t, models.SaleStatusPaid, persisted.Status)

	_, err = svc.RecordPayment(context.Background(), PaymentInput{
		UserID: user.ID, SaleID: 9999, Amount: 10,
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.RecordPayment(context.Background(), PaymentInput{
		UserID: user.ID, SaleID: sale.ID, Amount: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCreateSale_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")

	tests := []struct {
		name  string
		items []SaleItemInput
		check func(t *testing.T, err error)
	}{
		{
			name:  "no items",
			items: nil,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNoItems)
			},
		},
		{
			name:  "missing product type",
			items: []SaleItemInput{{Quantity: 10, UnitPrice: 5}},
			check: func(t *testing.T, err error) {
				var invalid *InvalidItemError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, 0, invalid.Index)
			},
		},
		{
			name: "zero quantity",
			items: []SaleItemInput{
				{ProductType: "cement", Quantity: 10, UnitPrice: 400},
				{ProductType: "sand", Quantity: 0, UnitPrice: 50},
			},
			check: func(t *testing.T, err error) {
				var invalid *InvalidItemError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, 1, invalid.Index)
			},
		},
		{
			name:  "negative unit price",
			items: []SaleItemInput{{ProductType: "cement", Quantity: 1, UnitPrice: -5}},
			check: func(t *testing.T, err error) {
				var invalid *InvalidItemError
				require.ErrorAs(t, err, &invalid)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSale(context.Background(), CreateSaleInput{
				UserID:     user.ID,
				CustomerID: customer.ID,
				Items:      tt.items,
			})
			tt.check(t, err)
		})
	}
}

func TestCreateSale_PaymentTrail(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	user := seedUser(t, db, "dealer@example.com")
	customer := seedCustomer(t, db, user.ID, "Ravi")

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{
		UserID:     user.ID,
		CustomerID: customer.ID,
		Items: []SaleItemInput{
			{ProductType: "cement", Quantity: 20, UnitPrice: 380},
			{ProductType: "sand", Quantity: 2, UnitPrice: 1200},
		},
		InitialPaid:   5000,
		PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	assert.InDelta(t, 10000, sale.TotalAmount, 0.001)
	assert.InDelta(t, 5000, sale.PaidAmount, 0.001)
	assert.InDelta(t, 5000, sale.DueAmount, 0.001)
	assert.Equal(t, models.SaleStatusPartial, sale.Status)
	assert.NotEmpty(t, sale.InvoiceNo)
	require.Len(t, sale.Items, 2)

	// Cash received at sale time is backed by a receipt row.
	var payments []models.Payment
	require.NoError(t, db.Where("sale_id = ?", sale.ID).Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.InDelta(t, 5000, payments[0].Amount, 0.001)
	assert.Equal(t, models.PaymentMethodCash, payments[0].Method)

	// Paying more up front than the total is refused.
	_, err = svc.CreateSale(context.Background(), CreateSaleInput{
		UserID:      user.ID,
		CustomerID:  customer.ID,
		Items:       []SaleItemInput{{ProductType: "cement", Quantity: 1, UnitPrice: 100}},
		InitialPaid: 200,
	})
	var excess *ExcessPaymentError
	assert.ErrorAs(t, err, &excess)
}
