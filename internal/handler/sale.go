package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Shubharvey/brickbook-sub001/internal/models"
	"github.com/Shubharvey/brickbook-sub001/internal/service"
	"github.com/Shubharvey/brickbook-sub001/pkg/database"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	Svc *service.Service
}

type CreateSaleRequest struct {
	CustomerID     uint                    `json:"customer_id" binding:"required"`
	SaleDate       string                  `json:"sale_date"`
	Items          []service.SaleItemInput `json:"items" binding:"required"`
	InitialPaid    float64                 `json:"initial_paid"`
	PaymentMethod  string                  `json:"payment_method"`
	DeliveryStatus string                  `json:"delivery_status"`
	Notes          string                  `json:"notes"`
}

func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var saleDate time.Time
	if req.SaleDate != "" {
		parsed, err := time.Parse("2006-01-02", req.SaleDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale_date, expected YYYY-MM-DD"})
			return
		}
		saleDate = parsed
	}

	sale, err := h.Svc.CreateSale(c.Request.Context(), service.CreateSaleInput{
		UserID:         c.GetUint("userID"),
		CustomerID:     req.CustomerID,
		SaleDate:       saleDate,
		Items:          req.Items,
		InitialPaid:    req.InitialPaid,
		PaymentMethod:  req.PaymentMethod,
		DeliveryStatus: req.DeliveryStatus,
		Notes:          req.Notes,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) ListSales(c *gin.Context) {
	userID := c.GetUint("userID")

	page := 1
	limit := 20
	if c.Query("page") != "" {
		fmt.Sscanf(c.Query("page"), "%d", &page)
	}
	if c.Query("limit") != "" {
		fmt.Sscanf(c.Query("limit"), "%d", &limit)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Sale{}).Where("user_id = ?", userID)
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if deliveryStatus := c.Query("delivery_status"); deliveryStatus != "" {
		query = query.Where("delivery_status = ?", deliveryStatus)
	}
	if startDateStr := c.Query("start_date"); startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date"})
			return
		}
		query = query.Where("sale_date >= ?", startDate)
	}
	if endDateStr := c.Query("end_date"); endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date"})
			return
		}
		query = query.Where("sale_date < ?", endDate.AddDate(0, 0, 1))
	}

	var total int64
	query.Count(&total)

	var sales []models.Sale
	if err := query.Preload("Customer").Preload("Items").
		Order("sale_date desc, id desc").
		Limit(limit).Offset(offset).
		Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  sales,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	userID := c.GetUint("userID")
	var sale models.Sale
	if err := database.DB.Preload("Customer").Preload("Items").
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&sale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	var payments []models.Payment
	database.DB.Where("sale_id = ?", sale.ID).Order("payment_date desc").Find(&payments)

	c.JSON(http.StatusOK, gin.H{
		"sale":     sale,
		"payments": payments,
	})
}

func (h *SaleHandler) UpdateDeliveryStatus(c *gin.Context) {
	userID := c.GetUint("userID")
	var req struct {
		DeliveryStatus string `json:"delivery_status" binding:"required,oneof=pending in_transit delivered"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delivery_status must be one of pending, in_transit, delivered"})
		return
	}

	result := database.DB.Model(&models.Sale{}).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		Update("delivery_status", req.DeliveryStatus)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update delivery status"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Delivery status updated"})
}
