package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/el-tafouk/eltafouk-api/config"
	"github.com/el-tafouk/eltafouk-api/models"
	"github.com/el-tafouk/eltafouk-api/services"
	"github.com/el-tafouk/eltafouk-api/utils"
)

const adminOrdersPageSize = 20

// AdminListOrders handles GET /api/v1/admin/orders - paged order list with
// status filter, free-text search and per-status counts
func AdminListOrders(c *gin.Context) {
	db := config.GetDB()

	status := c.Query("status")
	if status != "" && !models.IsValidOrderStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown order status",
			},
		})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	query := db.Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		needle := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(order_id) LIKE ? OR LOWER(customer_name) LIKE ? OR phone LIKE ?",
			needle, needle, needle,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeDatabaseError(c, err, "Failed to count orders")
		return
	}

	var orders []models.Order
	err = query.
		Order("created_at DESC").
		Limit(adminOrdersPageSize).
		Offset((page - 1) * adminOrdersPageSize).
		Find(&orders).Error
	if err != nil {
		writeDatabaseError(c, err, "Failed to load orders")
		return
	}

	// Per-status counts over the whole table, independent of filters, for the
	// dashboard tabs.
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

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orders":   orders,
			"total":    total,
			"page":     page,
			"pageSize": adminOrdersPageSize,
			"counts":   counts,
		},
	})
}

// AdminGetOrder handles GET /api/v1/admin/orders/:orderId - full order detail
// with the customer's phone unmasked
func AdminGetOrder(c *gin.Context) {
	orderID := utils.NormalizeOrderID(c.Param("orderId"))
	if !utils.IsValidOrderID(orderID) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ORDER_ID",
				"message": "Order ID does not match the expected format",
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	err := db.
		Preload("Items").
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order was not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrderStatusRequest represents the request body for a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminUpdateOrderStatus handles PATCH /api/v1/admin/orders/:orderId
func AdminUpdateOrderStatus(c *gin.Context) {
	orderID := utils.NormalizeOrderID(c.Param("orderId"))
	if !utils.IsValidOrderID(orderID) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ORDER_ID",
				"message": "Order ID does not match the expected format",
			},
		})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.IsValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "status must be one of " + strings.Join(models.OrderStatusValues, ", "),
			},
		})
		return
	}

	details, timeline, err := services.GetOrderService().UpdateOrderStatus(orderID, req.Status)
	if err != nil {
		writeOrderServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"order":    details,
			"timeline": timeline,
		},
	})
}
