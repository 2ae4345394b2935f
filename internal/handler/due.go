package handler

import (
	"net/http"

	"github.com/Shubharvey/brickbook-sub001/internal/models"
	"github.com/Shubharvey/brickbook-sub001/internal/service"
	"github.com/Shubharvey/brickbook-sub001/pkg/database"

	"github.com/gin-gonic/gin"
)

type DueHandler struct {
	Svc *service.Service
}

// ListDues returns every sale with an outstanding due, grouped per customer.
func (h *DueHandler) ListDues(c *gin.Context) {
	userID := c.GetUint("userID")

	var sales []models.Sale
	if err := database.DB.Preload("Customer").
		Where("user_id = ? AND due_amount > 0", userID).
		Order("sale_date asc").
		Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dues"})
		return
	}

	type customerDues struct {
		Customer *models.Customer `json:"customer"`
		Sales    []models.Sale    `json:"sales"`
		TotalDue float64          `json:"totalDue"`
	}

	grouped := map[uint]*customerDues{}
	order := []uint{}
	var totalDue float64
	for _, sale := range sales {
		totalDue += sale.DueAmount
		group, ok := grouped[sale.CustomerID]
		if !ok {
			group = &customerDues{Customer: sale.Customer}
			grouped[sale.CustomerID] = group
			order = append(order, sale.CustomerID)
		}
		sale.Customer = nil
		group.Sales = append(group.Sales, sale)
		group.TotalDue += sale.DueAmount
	}

	result := make([]*customerDues, 0, len(order))
	for _, customerID := range order {
		result = append(result, grouped[customerID])
	}

	c.JSON(http.StatusOK, gin.H{
		"dues": result,
		"summary": gin.H{
			"totalDue":   totalDue,
			"totalSales": len(sales),
		},
	})
}

type AdvanceDeductionRequest struct {
	SaleID      uint    `json:"saleId" binding:"required"`
	CustomerID  uint    `json:"customerId" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	RequestID   string  `json:"requestId"`
}

// AdvanceDeduction settles part of a sale's due from the customer's prepaid
// balance. All validation and the four writes happen inside the service
// transaction; any failure leaves every record untouched.
func (h *DueHandler) AdvanceDeduction(c *gin.Context) {
	var req AdvanceDeductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, ok := parseOptionalDate(c, req.Date)
	if !ok {
		return
	}

	result, err := h.Svc.ApplyAdvanceToDue(c.Request.Context(), service.DeductionInput{
		UserID:      c.GetUint("userID"),
		CustomerID:  req.CustomerID,
		SaleID:      req.SaleID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		RequestID:   req.RequestID,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"advancePayment": result.AdvancePayment,
			"customer":       result.Customer,
			"sale":           result.Sale,
			"payment":        result.Payment,
		},
		"summary": result.Summary,
	})
}
