package handler

import (
	"net/http"

	"github.com/Shubharvey/brickbook-sub001/internal/models"
	"github.com/Shubharvey/brickbook-sub001/internal/service"
	"github.com/Shubharvey/brickbook-sub001/pkg/database"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	Svc *service.Service
}

type RecordPaymentRequest struct {
	SaleID          uint    `json:"saleId" binding:"required"`
	Amount          float64 `json:"amount" binding:"required"`
	Method          string  `json:"method"`
	ReferenceNumber string  `json:"referenceNumber"`
	Notes           string  `json:"notes"`
	Date            string  `json:"date"`
}

func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paymentDate, ok := parseOptionalDate(c, req.Date)
	if !ok {
		return
	}

	payment, err := h.Svc.RecordPayment(c.Request.Context(), service.PaymentInput{
		UserID:          c.GetUint("userID"),
		SaleID:          req.SaleID,
		Amount:          req.Amount,
		Method:          req.Method,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		Date:            paymentDate,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID := c.GetUint("userID")

	query := database.DB.Where("user_id = ?", userID)
	if saleID := c.Query("sale_id"); saleID != "" {
		query = query.Where("sale_id = ?", saleID)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("method = ?", method)
	}

	payments := []models.Payment{}
	if err := query.Preload("Sale").Order("payment_date desc, id desc").Limit(200).Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	var totalCollected float64
	for _, payment := range payments {
		totalCollected += payment.Amount
	}

	c.JSON(http.StatusOK, gin.H{
		"data": payments,
		"summary": gin.H{
			"totalCollected": totalCollected,
			"count":          len(payments),
		},
	})
}
