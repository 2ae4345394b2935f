package handler

import (
	"net/http"

	"github.com/Shubharvey/brickbook-sub001/internal/models"
	"github.com/Shubharvey/brickbook-sub001/internal/service"
	"github.com/Shubharvey/brickbook-sub001/pkg/database"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	Svc *service.Service
}

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Mobile  string `json:"mobile" binding:"required"`
	Address string `json:"address"`
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer := models.Customer{
		UserID:  c.GetUint("userID"),
		Name:    req.Name,
		Mobile:  req.Mobile,
		Address: req.Address,
	}
	if err := database.DB.Create(&customer).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create customer (mobile might be duplicate)"})
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	userID := c.GetUint("userID")
	query := c.Query("q")

	customers := []models.Customer{}
	db := database.DB.Where("user_id = ?", userID)
	if query != "" {
		db = db.Where("name LIKE ? OR mobile LIKE ?", "%"+query+"%", "%"+query+"%")
	}
	if err := db.Order("name asc").Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	userID := c.GetUint("userID")
	var customer models.Customer
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	userID := c.GetUint("userID")
	var req struct {
		Name    string `json:"name" binding:"required"`
		Mobile  string `json:"mobile" binding:"required"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := database.DB.Model(&models.Customer{}).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		Updates(map[string]interface{}{
			"name":    req.Name,
			"mobile":  req.Mobile,
			"address": req.Address,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer updated successfully"})
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	userID := c.GetUint("userID")

	var customer models.Customer
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	// A customer with sales (or a remaining balance) keeps their history.
	var saleCount int64
	database.DB.Model(&models.Sale{}).Where("customer_id = ?", customer.ID).Count(&saleCount)
	if saleCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Customer has sales and cannot be deleted"})
		return
	}
	if customer.AdvanceBalance != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Customer has an advance balance and cannot be deleted"})
		return
	}

	if err := database.DB.Delete(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete customer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

// GetCustomerLedger returns one customer's advance history with a running
// summary of additions and usages.
func (h *CustomerHandler) GetCustomerLedger(c *gin.Context) {
	userID := c.GetUint("userID")
	customerID := parseUintParam(c, "id")
	if customerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer id"})
		return
	}

	customer, entries, err := h.Svc.LedgerEntries(c.Request.Context(), userID, customerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	var totalAdded, totalUsed float64
	for _, entry := range entries {
		if entry.Amount > 0 {
			totalAdded += entry.Amount
		} else {
			totalUsed += -entry.Amount
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"customer": customer,
		"entries":  entries,
		"summary": gin.H{
			"totalAdded":     totalAdded,
			"totalUsed":      totalUsed,
			"currentBalance": customer.AdvanceBalance,
		},
	})
}
