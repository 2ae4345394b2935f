package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Shubharvey/brickbook-sub001/config"
	"github.com/Shubharvey/brickbook-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// writeServiceError maps service-layer failures to the HTTP error taxonomy:
// business-rule violations become 400 with diagnostic fields, missing or
// unowned records 404, duplicate request ids 409, everything else 500.
func writeServiceError(c *gin.Context, err error) {
	var insufficient *service.InsufficientBalanceError
	var excess *service.ExcessPaymentError
	var invalidItem *service.InvalidItemError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            "Insufficient advance balance",
			"availableBalance": insufficient.Available,
			"requiredAmount":   insufficient.Requested,
		})
	case errors.As(err, &excess):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "Payment exceeds due amount",
			"dueAmount":     excess.Due,
			"paymentAmount": excess.Requested,
		})
	case errors.As(err, &invalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrNoItems),
		errors.Is(err, service.ErrSaleCustomerMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Internal error")
		body := gin.H{"error": "Internal server error"}
		if config.AppConfig != nil && config.AppConfig.Server.Env != "production" {
			body["detail"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

func parseUintParam(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
