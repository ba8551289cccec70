package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/el-tafouk/eltafouk-api/config"
	"github.com/el-tafouk/eltafouk-api/models"
)

// lowStockThreshold triggers an inventory alert.
const lowStockThreshold = 5

// startOfDay returns midnight of now's calendar day in now's location, so the
// shop's "today" figures roll over at local midnight rather than UTC.
func startOfDay(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}

// AdminGetStats handles GET /api/v1/admin/stats - dashboard summary
func AdminGetStats(c *gin.Context) {
	db := config.GetDB()

	var totalOrders int64
	if err := db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		writeDatabaseError(c, err, "Failed to count orders")
		return
	}

	var totalBooks int64
	if err := db.Model(&models.Book{}).Count(&totalBooks).Error; err != nil {
		writeDatabaseError(c, err, "Failed to count books")
		return
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		writeDatabaseError(c, err, "Failed to count orders by status")
		return
	}

	counts := make(map[string]int64, len(models.OrderStatusValues))
	for _, value := range models.OrderStatusValues {
		counts[value] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	// Revenue only counts delivered orders.
	var deliveredRevenue int64
	if err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusDelivered).
		Select("COALESCE(SUM(total), 0)").
		Scan(&deliveredRevenue).Error; err != nil {
		writeDatabaseError(c, err, "Failed to sum delivered revenue")
		return
	}

	dayStart := startOfDay(time.Now())

	var todayOrders int64
	if err := db.Model(&models.Order{}).
		Where("created_at >= ?", dayStart).
		Count(&todayOrders).Error; err != nil {
		writeDatabaseError(c, err, "Failed to count today's orders")
		return
	}

	var todayRevenue int64
	if err := db.Model(&models.Order{}).
		Where("created_at >= ? AND status != ?", dayStart, models.OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0)").
		Scan(&todayRevenue).Error; err != nil {
		writeDatabaseError(c, err, "Failed to sum today's revenue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totalOrders":      totalOrders,
			"totalBooks":       totalBooks,
			"statusCounts":     counts,
			"deliveredRevenue": deliveredRevenue,
			"todayOrders":      todayOrders,
			"todayRevenue":     todayRevenue,
		},
	})
}

// AdminInventoryAlerts handles GET /api/v1/admin/inventory/alerts - books at
// or below the restock threshold, most depleted first
func AdminInventoryAlerts(c *gin.Context) {
	db := config.GetDB()

	var books []models.Book
	if err := db.
		Where("stock <= ?", lowStockThreshold).
		Order("stock ASC").
		Find(&books).Error; err != nil {
		writeDatabaseError(c, err, "Failed to load inventory alerts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"threshold": lowStockThreshold,
			"books":     books,
		},
	})
}
