package services

import (
	"time"

	"github.com/el-tafouk/eltafouk-api/models"
)

// OrderTimeline is the canonical milestone ordering returned alongside public
// order views. CANCELLED is a side branch and has no position in it.
var OrderTimeline = []string{
	models.OrderStatusPending,
	models.OrderStatusConfirmed,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
}

func timelineIndex(status string) int {
	for i, s := range OrderTimeline {
		if s == status {
			return i
		}
	}
	return -1
}

// IsStatusTransitionAllowed reports whether an order may move from current to
// next. Same-status requests are permitted no-ops; DELIVERED and CANCELLED are
// terminal; CANCELLED is reachable from any non-terminal status; otherwise only
// the single next linear step is legal.
func IsStatusTransitionAllowed(current, next string) bool {
	if current == next {
		return true
	}

	if current == models.OrderStatusDelivered || current == models.OrderStatusCancelled {
		return false
	}

	if next == models.OrderStatusCancelled {
		return current == models.OrderStatusPending ||
			current == models.OrderStatusConfirmed ||
			current == models.OrderStatusShipped
	}

	currentIndex := timelineIndex(current)
	nextIndex := timelineIndex(next)

	if currentIndex < 0 || nextIndex < 0 {
		return false
	}

	return nextIndex == currentIndex+1
}

// buildStatusUpdate returns the column updates for an allowed transition. A
// no-op transition yields an empty map. Milestone timestamps are set only when
// not already present, so re-reaching a status never overwrites the original
// time.
func buildStatusUpdate(order *models.Order, next string, now time.Time) map[string]interface{} {
	if order.Status == next {
		return map[string]interface{}{}
	}

	updates := map[string]interface{}{
		"status": next,
	}

	switch next {
	case models.OrderStatusConfirmed:
		if order.ConfirmedAt == nil {
			updates["confirmed_at"] = now
		}
	case models.OrderStatusShipped:
		if order.ShippedAt == nil {
			updates["shipped_at"] = now
		}
	case models.OrderStatusDelivered:
		if order.DeliveredAt == nil {
			updates["delivered_at"] = now
		}
	case models.OrderStatusCancelled:
		if order.CancelledAt == nil {
			updates["cancelled_at"] = now
		}
	}

	return updates
}
