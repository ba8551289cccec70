package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/el-tafouk/eltafouk-api/config"
	"github.com/el-tafouk/eltafouk-api/services"
	"github.com/el-tafouk/eltafouk-api/utils"
)

// OrderItemRequest is one requested checkout line.
type OrderItemRequest struct {
	BookID string `json:"bookId" binding:"required"`
	Qty    int    `json:"qty" binding:"required,gte=1"`
}

// CustomerRequest is the customer block of a checkout payload.
type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	City    string `json:"city" binding:"required"`
	Address string `json:"address" binding:"required"`
	Notes   string `json:"notes"`
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	Customer CustomerRequest    `json:"customer" binding:"required"`
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// writeOrderServiceError maps a domain error onto the response envelope.
func writeOrderServiceError(c *gin.Context, err error) {
	var domainErr *services.OrderServiceError
	if errors.As(err, &domainErr) {
		payload := gin.H{
			"code":    domainErr.Code,
			"message": domainErr.Message,
		}
		if domainErr.BookID != "" {
			payload["bookId"] = domainErr.BookID
		}
		c.JSON(domainErr.Status, gin.H{
			"success": false,
			"error":   payload,
		})
		return
	}

	if services.IsTransientDBError(err) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DB_UNAVAILABLE",
				"message": "Service is temporarily unavailable, please retry",
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Something went wrong",
		},
	})
}

// CreateOrder handles POST /api/v1/orders - places a new order
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	phone := utils.NormalizeEgyptPhone(req.Customer.Phone)
	if !utils.IsCanonicalEgyptPhone(phone) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_EGYPT_PHONE",
				"message": "Phone number must be a valid Egyptian mobile number",
			},
		})
		return
	}

	items := make([]services.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = services.OrderItemInput{BookID: item.BookID, Qty: item.Qty}
	}

	result, err := services.GetOrderService().CreateOrder(services.CreateOrderInput{
		Customer: services.CustomerInput{
			Name:    req.Customer.Name,
			Phone:   phone,
			City:    req.Customer.City,
			Address: req.Customer.Address,
			Notes:   req.Customer.Notes,
		},
		Items: items,
	})
	if err != nil {
		writeOrderServiceError(c, err)
		return
	}

	data := gin.H{
		"orderId": result.OrderID,
		"status":  result.Status,
	}

	// When a storefront WhatsApp number is configured, hand back a prefilled
	// chat link so the client can capture the conversation immediately.
	if number := config.GetConfig().WhatsAppNumber; number != "" {
		details, _, err := services.GetOrderService().GetOrderForTracking(result.OrderID)
		if err == nil && details != nil {
			lines := make([]utils.OrderMessageLine, len(details.Items))
			for i, item := range details.Items {
				lines[i] = utils.OrderMessageLine{
					Title:     item.TitleSnapshot,
					Qty:       item.Qty,
					UnitPrice: item.UnitPrice,
				}
			}
			message := utils.BuildOrderMessage(result.OrderID, lines, details.Total)
			data["whatsapp"] = utils.BuildWhatsAppLink(number, message)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// GetOrderTracking handles GET /api/v1/orders/:orderId - public order tracking
func GetOrderTracking(c *gin.Context) {
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

	details, timeline, err := services.GetOrderService().GetOrderForTracking(orderID)
	if err != nil {
		log.WithError(err).Error("Failed to load order for tracking")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order",
			},
		})
		return
	}

	if details == nil {
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
		"data": gin.H{
			"order":    details,
			"timeline": timeline,
		},
	})
}
