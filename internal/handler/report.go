package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/Shubharvey/brickbook-sub001/internal/models"
	"github.com/Shubharvey/brickbook-sub001/pkg/database"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct{}

// GetSalesReport groups sales by period (day, week or month) and computes
// collection efficiency: collected / billed over the selected range.
func (h *ReportHandler) GetSalesReport(c *gin.Context) {
	userID := c.GetUint("userID")
	groupBy := c.DefaultQuery("group_by", "day")
	if groupBy != "day" && groupBy != "week" && groupBy != "month" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_by must be one of day, week, month"})
		return
	}

	query := database.DB.Where("user_id = ?", userID)
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

	var sales []models.Sale
	if err := query.Order("sale_date asc").Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales report"})
		return
	}

	type periodRow struct {
		Period    string  `json:"period"`
		Billed    float64 `json:"billed"`
		Collected float64 `json:"collected"`
		Due       float64 `json:"due"`
		Sales     int     `json:"sales"`
	}

	periods := map[string]*periodRow{}
	keys := []string{}
	var totalBilled, totalCollected, totalDue float64

	for _, sale := range sales {
		var key string
		switch groupBy {
		case "month":
			key = sale.SaleDate.Format("2006-01")
		case "week":
			year, week := sale.SaleDate.ISOWeek()
			key = time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).
				AddDate(0, 0, (week-1)*7).Format("2006-01-02")
		default:
			key = sale.SaleDate.Format("2006-01-02")
		}

		row, ok := periods[key]
		if !ok {
			row = &periodRow{Period: key}
			periods[key] = row
			keys = append(keys, key)
		}
		row.Billed += sale.TotalAmount
		row.Collected += sale.PaidAmount
		row.Due += sale.DueAmount
		row.Sales++

		totalBilled += sale.TotalAmount
		totalCollected += sale.PaidAmount
		totalDue += sale.DueAmount
	}

	sort.Strings(keys)
	rows := make([]*periodRow, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, periods[key])
	}

	var efficiency float64
	if totalBilled > 0 {
		efficiency = totalCollected / totalBilled * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"periods": rows,
		"summary": gin.H{
			"totalBilled":          totalBilled,
			"totalCollected":       totalCollected,
			"totalOutstanding":     totalDue,
			"totalTransactions":    len(sales),
			"collectionEfficiency": efficiency,
		},
	})
}

// GetCustomerReport ranks customers by total business and segments them.
func (h *ReportHandler) GetCustomerReport(c *gin.Context) {
	userID := c.GetUint("userID")

	type customerStats struct {
		models.Customer
		TotalBusiness float64 `json:"total_business"`
		TotalDue      float64 `json:"total_due"`
		Rank          int     `json:"rank"`
		Segment       string  `json:"segment"`
	}

	var customers []models.Customer
	if err := database.DB.Where("user_id = ?", userID).Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}

	stats := make([]customerStats, 0, len(customers))
	for _, customer := range customers {
		var totalBusiness, totalDue float64
		database.DB.Model(&models.Sale{}).Where("customer_id = ?", customer.ID).
			Select("COALESCE(SUM(total_amount), 0)").Scan(&totalBusiness)
		database.DB.Model(&models.Sale{}).Where("customer_id = ?", customer.ID).
			Select("COALESCE(SUM(due_amount), 0)").Scan(&totalDue)

		segment := "new"
		switch {
		case totalBusiness >= 100000:
			segment = "high_value"
		case totalBusiness > 0:
			segment = "regular"
		}

		stats = append(stats, customerStats{
			Customer:      customer,
			TotalBusiness: totalBusiness,
			TotalDue:      totalDue,
			Segment:       segment,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].TotalBusiness > stats[j].TotalBusiness
	})
	for i := range stats {
		stats[i].Rank = i + 1
	}

	c.JSON(http.StatusOK, stats)
}

// GetDashboardStats returns the headline metrics plus a 7-day collection
// chart and the most recent sales.
func (h *ReportHandler) GetDashboardStats(c *gin.Context) {
	userID := c.GetUint("userID")

	var todayCollected float64
	today := time.Now().Format("2006-01-02")
	database.DB.Model(&models.Payment{}).
		Where("user_id = ? AND DATE(payment_date) = ?", userID, today).
		Select("COALESCE(SUM(amount), 0)").Scan(&todayCollected)

	var totalBilled, totalOutstanding, totalAdvance float64
	database.DB.Model(&models.Sale{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&totalBilled)
	database.DB.Model(&models.Sale{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(due_amount), 0)").Scan(&totalOutstanding)
	database.DB.Model(&models.Customer{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(advance_balance), 0)").Scan(&totalAdvance)

	var totalCustomers, totalSales, pendingDeliveries int64
	database.DB.Model(&models.Customer{}).Where("user_id = ?", userID).Count(&totalCustomers)
	database.DB.Model(&models.Sale{}).Where("user_id = ?", userID).Count(&totalSales)
	database.DB.Model(&models.Sale{}).
		Where("user_id = ? AND delivery_status <> ?", userID, models.DeliveryDelivered).
		Count(&pendingDeliveries)

	type chartData struct {
		Labels []string  `json:"labels"`
		Data   []float64 `json:"data"`
	}
	weeklyChart := chartData{Labels: []string{}, Data: []float64{}}
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		dateStr := date.Format("2006-01-02")
		var dailySum float64
		database.DB.Model(&models.Payment{}).
			Where("user_id = ? AND DATE(payment_date) = ?", userID, dateStr).
			Select("COALESCE(SUM(amount), 0)").Scan(&dailySum)
		weeklyChart.Labels = append(weeklyChart.Labels, date.Format("Jan 02"))
		weeklyChart.Data = append(weeklyChart.Data, dailySum)
	}

	var recentSales []models.Sale
	database.DB.Preload("Customer").Where("user_id = ?", userID).
		Order("sale_date desc, id desc").Limit(5).Find(&recentSales)

	c.JSON(http.StatusOK, gin.H{
		"metrics": gin.H{
			"todayCollected":    todayCollected,
			"totalBilled":       totalBilled,
			"totalOutstanding":  totalOutstanding,
			"totalAdvance":      totalAdvance,
			"totalCustomers":    totalCustomers,
			"totalSales":        totalSales,
			"pendingDeliveries": pendingDeliveries,
		},
		"charts": gin.H{
			"weeklyCollection": weeklyChart,
		},
		"recentSales": recentSales,
	})
}
