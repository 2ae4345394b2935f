package handler

import (
	"net/http"
	"time"

	"github.com/Shubharvey/brickbook-sub001/internal/models"
	"github.com/Shubharvey/brickbook-sub001/internal/service"
	"github.com/Shubharvey/brickbook-sub001/pkg/database"

	"github.com/gin-gonic/gin"
)

type AdvanceHandler struct {
	Svc *service.Service
}

// ListAdvances returns the customers holding a prepaid balance, largest
// first. Balances come straight from the cached column; ledger entries are
// audit history, not the read path.
func (h *AdvanceHandler) ListAdvances(c *gin.Context) {
	userID := c.GetUint("userID")

	customers := []models.Customer{}
	if err := database.DB.
		Where("user_id = ? AND advance_balance > 0", userID).
		Order("advance_balance desc").
		Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch advance balances"})
		return
	}

	var totalAdvance float64
	for _, customer := range customers {
		totalAdvance += customer.AdvanceBalance
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"summary": gin.H{
			"totalAdvance":   totalAdvance,
			"totalCustomers": len(customers),
		},
	})
}

type AddAdvanceRequest struct {
	CustomerID  uint    `json:"customerId" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description"`
	Reference   string  `json:"reference"`
	Notes       string  `json:"notes"`
	Date        string  `json:"date"`
}

func (h *AdvanceHandler) AddAdvance(c *gin.Context) {
	var req AddAdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, ok := parseOptionalDate(c, req.Date)
	if !ok {
		return
	}

	result, err := h.Svc.AddAdvance(c.Request.Context(), service.AddAdvanceInput{
		UserID:      c.GetUint("userID"),
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		Description: req.Description,
		Reference:   req.Reference,
		Notes:       req.Notes,
		Date:        date,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"advancePayment": result.AdvancePayment,
		"customer":       result.Customer,
		"message":        "Advance added successfully",
	})
}

// Reconcile recomputes balances from the ledger and reports drift.
func (h *AdvanceHandler) Reconcile(c *gin.Context) {
	userID := c.GetUint("userID")

	drifts, checked, err := h.Svc.Reconcile(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"consistent":       len(drifts) == 0,
		"customersChecked": checked,
		"discrepancies":    drifts,
	})
}

// parseOptionalDate accepts RFC3339 or YYYY-MM-DD; empty input means "now"
// (resolved by the service). Writes a 400 and returns false on bad input.
func parseOptionalDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
			return time.Time{}, false
		}
	}
	return parsed, true
}
