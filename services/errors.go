package services

import "net/http"

// Domain error codes surfaced by the order service. Each maps to a fixed HTTP
// status at the boundary and is never retried.
const (
	CodeBookNotFound            = "BOOK_NOT_FOUND"
	CodeOutOfStock              = "OUT_OF_STOCK"
	CodeOrderNotFound           = "ORDER_NOT_FOUND"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeOrderIDGenerationFailed = "ORDER_ID_GENERATION_FAILED"
)

// OrderServiceError is a domain error with a stable machine-readable code and,
// where relevant, the offending book id.
type OrderServiceError struct {
	Code    string
	Status  int
	BookID  string
	Message string
}

func (e *OrderServiceError) Error() string {
	return e.Message
}

func newBookNotFoundError(bookID string) *OrderServiceError {
	return &OrderServiceError{
		Code:    CodeBookNotFound,
		Status:  http.StatusNotFound,
		BookID:  bookID,
		Message: "Book was not found.",
	}
}

func newOutOfStockError(bookID string) *OrderServiceError {
	return &OrderServiceError{
		Code:    CodeOutOfStock,
		Status:  http.StatusConflict,
		BookID:  bookID,
		Message: "Requested quantity is out of stock.",
	}
}

func newOrderNotFoundError() *OrderServiceError {
	return &OrderServiceError{
		Code:    CodeOrderNotFound,
		Status:  http.StatusNotFound,
		Message: "Order was not found.",
	}
}

func newInvalidStatusTransitionError() *OrderServiceError {
	return &OrderServiceError{
		Code:    CodeInvalidStatusTransition,
		Status:  http.StatusConflict,
		Message: "Invalid order status transition.",
	}
}

func newOrderIDGenerationFailedError() *OrderServiceError {
	return &OrderServiceError{
		Code:    CodeOrderIDGenerationFailed,
		Status:  http.StatusInternalServerError,
		Message: "Failed to generate a unique order ID.",
	}
}
