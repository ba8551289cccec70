package services

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/el-tafouk/eltafouk-api/metrics"
	"github.com/el-tafouk/eltafouk-api/models"
	"github.com/el-tafouk/eltafouk-api/utils"
)

// maxOrderIDAttempts caps the unique-ID collision retry loop.
const maxOrderIDAttempts = 5

// CustomerInput is the customer snapshot submitted at checkout.
type CustomerInput struct {
	Name    string
	Phone   string
	City    string
	Address string
	Notes   string
}

// OrderItemInput is one requested line. Quantities of repeated bookIds are
// summed during normalization.
type OrderItemInput struct {
	BookID string
	Qty    int
}

// CreateOrderInput is the full checkout payload. The boundary validates shape
// (non-empty fields, qty >= 1, at least one line) before it reaches the service.
type CreateOrderInput struct {
	Customer CustomerInput
	Items    []OrderItemInput
}

// CreateOrderResult is returned to the customer after a successful checkout.
type CreateOrderResult struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// PublicOrderItem is a line in the public order view, built entirely from the
// snapshots frozen at creation time.
type PublicOrderItem struct {
	BookID        string  `json:"bookId"`
	Qty           int     `json:"qty"`
	UnitPrice     int     `json:"unitPrice"`
	TitleSnapshot string  `json:"titleSnapshot"`
	ImageSnapshot *string `json:"imageSnapshot"`
}

// PublicCustomer exposes the customer snapshot with a masked phone number.
type PublicCustomer struct {
	Name        string  `json:"name"`
	PhoneMasked string  `json:"phoneMasked"`
	City        string  `json:"city"`
	Address     string  `json:"address"`
	Notes       *string `json:"notes"`
}

// TimelineView carries the milestone timestamps of an order.
type TimelineView struct {
	CreatedAt   time.Time  `json:"createdAt"`
	ConfirmedAt *time.Time `json:"confirmedAt"`
	ShippedAt   *time.Time `json:"shippedAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	CancelledAt *time.Time `json:"cancelledAt"`
}

// PublicOrderDetails is the tracking view of an order.
type PublicOrderDetails struct {
	OrderID   string            `json:"orderId"`
	Status    string            `json:"status"`
	Channel   string            `json:"channel"`
	CreatedAt time.Time         `json:"createdAt"`
	Timeline  TimelineView      `json:"timeline"`
	Subtotal  int               `json:"subtotal"`
	Shipping  int               `json:"shipping"`
	Total     int               `json:"total"`
	Customer  PublicCustomer    `json:"customer"`
	Items     []PublicOrderItem `json:"items"`
}

// OrderService orchestrates order creation and status transitions. Catalog
// reads go through the CatalogReader interface; the transactional stock
// reservation always runs against the relational store.
type OrderService struct {
	db      *gorm.DB
	catalog CatalogReader
}

var orderServiceInstance *OrderService

// InitOrderService initializes the order service.
func InitOrderService(db *gorm.DB, catalog CatalogReader) *OrderService {
	orderServiceInstance = NewOrderService(db, catalog)
	return orderServiceInstance
}

// GetOrderService returns the initialized order service instance.
func GetOrderService() *OrderService {
	return orderServiceInstance
}

// SetOrderService sets the order service instance (primarily for testing)
func SetOrderService(service *OrderService) {
	orderServiceInstance = service
}

// NewOrderService creates an order service over the given store and catalog.
func NewOrderService(db *gorm.DB, catalog CatalogReader) *OrderService {
	return &OrderService{db: db, catalog: catalog}
}

type preparedLine struct {
	bookID        string
	qty           int
	unitPrice     int
	titleSnapshot string
	imageSnapshot *string
}

type preparedOrder struct {
	customer CustomerInput
	notes    *string
	lines    []preparedLine
	subtotal int
	shipping int
	total    int
}

// normalizeOrderItems deduplicates line requests by bookId, summing quantities
// and preserving first-seen order.
func normalizeOrderItems(items []OrderItemInput) []OrderItemInput {
	indexByBookID := make(map[string]int, len(items))
	normalized := make([]OrderItemInput, 0, len(items))

	for _, item := range items {
		if i, seen := indexByBookID[item.BookID]; seen {
			normalized[i].Qty += item.Qty
			continue
		}
		indexByBookID[item.BookID] = len(normalized)
		normalized = append(normalized, item)
	}

	return normalized
}

func normalizeCustomer(customer CustomerInput) (CustomerInput, *string) {
	normalized := CustomerInput{
		Name:    strings.TrimSpace(customer.Name),
		Phone:   utils.NormalizeEgyptPhone(customer.Phone),
		City:    strings.TrimSpace(customer.City),
		Address: strings.TrimSpace(customer.Address),
	}

	var notes *string
	if trimmed := strings.TrimSpace(customer.Notes); trimmed != "" {
		notes = &trimmed
	}

	return normalized, notes
}

// prepareOrder normalizes the payload and prices every line from the
// authoritative catalog records. Client-supplied prices are never consulted.
func (s *OrderService) prepareOrder(input CreateOrderInput) (*preparedOrder, error) {
	items := normalizeOrderItems(input.Items)
	customer, notes := normalizeCustomer(input.Customer)

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.BookID
	}

	booksByID, err := s.catalog.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	lines := make([]preparedLine, 0, len(items))
	subtotal := 0
	for _, item := range items {
		book, ok := booksByID[item.BookID]
		if !ok {
			return nil, newBookNotFoundError(item.BookID)
		}

		lines = append(lines, preparedLine{
			bookID:        item.BookID,
			qty:           item.Qty,
			unitPrice:     book.Price,
			titleSnapshot: book.Title,
			imageSnapshot: book.Image,
		})
		subtotal += book.Price * item.Qty
	}

	// No shipping-cost model is defined; shipping is a flat zero.
	shipping := 0

	return &preparedOrder{
		customer: customer,
		notes:    notes,
		lines:    lines,
		subtotal: subtotal,
		shipping: shipping,
		total:    subtotal + shipping,
	}, nil
}

// isOrderIDCollision reports whether err is a uniqueness violation on the
// generated order identifier.
func isOrderIDCollision(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed") ||
		strings.Contains(message, "duplicate key value")
}

// createOrderWithUniqueID persists the prepared order inside a single
// transaction, retrying with a freshly generated ID on uniqueness collisions.
// Stock is reserved with a conditional decrement evaluated by the storage
// engine; any line failure rolls back every reservation of this order.
func (s *OrderService) createOrderWithUniqueID(prepared *preparedOrder) (*CreateOrderResult, error) {
	for attempt := 0; attempt < maxOrderIDAttempts; attempt++ {
		orderID := utils.GenerateOrderID()

		var result *CreateOrderResult
		err := s.db.Transaction(func(tx *gorm.DB) error {
			ids := make([]string, len(prepared.lines))
			for i, line := range prepared.lines {
				ids[i] = line.bookID
			}

			// Re-verify inside the transaction; a book may have been deleted
			// since pricing.
			var existingIDs []string
			if err := tx.Model(&models.Book{}).Where("id IN ?", ids).Pluck("id", &existingIDs).Error; err != nil {
				return err
			}
			existing := make(map[string]bool, len(existingIDs))
			for _, id := range existingIDs {
				existing[id] = true
			}
			for _, line := range prepared.lines {
				if !existing[line.bookID] {
					return newBookNotFoundError(line.bookID)
				}
			}

			// Atomic decrement-if-sufficient, one statement per line. Zero
			// affected rows means insufficient stock; aborting rolls back
			// every earlier decrement.
			for _, line := range prepared.lines {
				res := tx.Model(&models.Book{}).
					Where("id = ? AND stock >= ?", line.bookID, line.qty).
					UpdateColumn("stock", gorm.Expr("stock - ?", line.qty))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected != 1 {
					return newOutOfStockError(line.bookID)
				}
			}

			items := make([]models.OrderItem, len(prepared.lines))
			for i, line := range prepared.lines {
				items[i] = models.OrderItem{
					BookID:        line.bookID,
					Qty:           line.qty,
					UnitPrice:     line.unitPrice,
					TitleSnapshot: line.titleSnapshot,
					ImageSnapshot: line.imageSnapshot,
				}
			}

			order := models.Order{
				OrderID:      orderID,
				Status:       models.OrderStatusPending,
				Channel:      models.OrderChannelWhatsApp,
				Subtotal:     prepared.subtotal,
				Shipping:     prepared.shipping,
				Total:        prepared.total,
				CustomerName: prepared.customer.Name,
				Phone:        prepared.customer.Phone,
				City:         prepared.customer.City,
				Address:      prepared.customer.Address,
				Notes:        prepared.notes,
				Items:        items,
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}

			result = &CreateOrderResult{OrderID: order.OrderID, Status: order.Status}
			return nil
		})

		if err == nil {
			return result, nil
		}

		var domainErr *OrderServiceError
		if errors.As(err, &domainErr) {
			return nil, err
		}

		if isOrderIDCollision(err) && attempt < maxOrderIDAttempts-1 {
			metrics.OrderIDCollisionsTotal.Inc()
			log.WithField("order_id", orderID).Warn("Order ID collision, regenerating")
			continue
		}

		return nil, err
	}

	return nil, newOrderIDGenerationFailedError()
}

// CreateOrder runs the full checkout flow: normalization, server-side pricing,
// and transactional persistence with stock reservation. Transient storage
// failures are retried with backoff; domain errors propagate immediately.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*CreateOrderResult, error) {
	startedAt := time.Now()

	result, err := RetryWithBackoff(func() (*CreateOrderResult, error) {
		prepared, err := s.prepareOrder(input)
		if err != nil {
			return nil, err
		}
		return s.createOrderWithUniqueID(prepared)
	}, RetryOptions{})

	if err != nil {
		var domainErr *OrderServiceError
		if errors.As(err, &domainErr) {
			metrics.OrderRejectionsTotal.WithLabelValues(domainErr.Code).Inc()
		}
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	log.WithFields(log.Fields{
		"order_id":    result.OrderID,
		"duration_ms": time.Since(startedAt).Milliseconds(),
	}).Info("Order created")

	return result, nil
}

// GetOrderForTracking returns the public order view plus the canonical
// timeline, or (nil, timeline, nil) when the order does not exist. The
// customer's phone is masked.
func (s *OrderService) GetOrderForTracking(orderID string) (*PublicOrderDetails, []string, error) {
	details, err := s.getPublicOrder(orderID)
	if err != nil {
		return nil, OrderTimeline, err
	}
	return details, OrderTimeline, nil
}

// UpdateOrderStatus applies a status transition with idempotent milestone
// timestamping and returns the refreshed public view plus the canonical
// timeline.
func (s *OrderService) UpdateOrderStatus(orderID, next string) (*PublicOrderDetails, []string, error) {
	var order models.Order
	err := s.db.Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, OrderTimeline, newOrderNotFoundError()
		}
		return nil, OrderTimeline, err
	}

	if !IsStatusTransitionAllowed(order.Status, next) {
		return nil, OrderTimeline, newInvalidStatusTransitionError()
	}

	previous := order.Status
	updates := buildStatusUpdate(&order, next, time.Now())
	if len(updates) > 0 {
		if err := s.db.Model(&order).Updates(updates).Error; err != nil {
			return nil, OrderTimeline, err
		}

		metrics.OrderStatusTransitionsTotal.WithLabelValues(next).Inc()
		log.WithFields(log.Fields{
			"order_id": orderID,
			"from":     previous,
			"to":       next,
		}).Info("Order status updated")
	}

	details, err := s.getPublicOrder(orderID)
	if err != nil {
		return nil, OrderTimeline, err
	}
	if details == nil {
		return nil, OrderTimeline, newOrderNotFoundError()
	}
	return details, OrderTimeline, nil
}

// getPublicOrder loads an order with its items and builds the public view.
// Returns (nil, nil) when the order does not exist.
func (s *OrderService) getPublicOrder(orderID string) (*PublicOrderDetails, error) {
	order, err := s.loadOrder(orderID)
	if err != nil || order == nil {
		return nil, err
	}
	return buildPublicOrderDetails(order), nil
}

func (s *OrderService) loadOrder(orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id ASC")
		}).
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func buildPublicOrderDetails(order *models.Order) *PublicOrderDetails {
	items := make([]PublicOrderItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = PublicOrderItem{
			BookID:        item.BookID,
			Qty:           item.Qty,
			UnitPrice:     item.UnitPrice,
			TitleSnapshot: item.TitleSnapshot,
			ImageSnapshot: item.ImageSnapshot,
		}
	}

	return &PublicOrderDetails{
		OrderID:   order.OrderID,
		Status:    order.Status,
		Channel:   order.Channel,
		CreatedAt: order.CreatedAt,
		Timeline: TimelineView{
			CreatedAt:   order.CreatedAt,
			ConfirmedAt: order.ConfirmedAt,
			ShippedAt:   order.ShippedAt,
			DeliveredAt: order.DeliveredAt,
			CancelledAt: order.CancelledAt,
		},
		Subtotal: order.Subtotal,
		Shipping: order.Shipping,
		Total:    order.Total,
		Customer: PublicCustomer{
			Name:        order.CustomerName,
			PhoneMasked: utils.MaskPhone(order.Phone),
			City:        order.City,
			Address:     order.Address,
			Notes:       order.Notes,
		},
		Items: items,
	}
}
