package handler

import (
	"net/http"

	"github.com/Shubharvey/brickbook-sub001/config"

	"github.com/gin-gonic/gin"
)

type PublicHandler struct{}

func (h *PublicHandler) GetPublicConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"business_name":  config.AppConfig.Defaults.BusinessName,
		"invoice_prefix": config.AppConfig.Defaults.InvoicePrefix,
		"receipt_prefix": config.AppConfig.Defaults.ReceiptPrefix,
	})
}
