package handlers

import "storefront/internal/models"

// Per-item order statuses.
const (
	StatusPending         = "Pending"
	StatusProcessing      = "Processing"
	StatusShipped         = "Shipped"
	StatusDelivered       = "Delivered"
	StatusCancelled       = "Cancelled"
	StatusReturnRequested = "Return Requested"
	StatusReturned        = "Returned"
	StatusRejected        = "Rejected"
)

// statusTransitions is the administrator-driven state machine. Cancelled,
// Returned and Rejected are terminal.
var statusTransitions = map[string][]string{
	StatusPending:         {StatusProcessing},
	StatusProcessing:      {StatusShipped},
	StatusShipped:         {StatusDelivered},
	StatusDelivered:       {StatusCancelled, StatusReturnRequested},
	StatusReturnRequested: {StatusReturned, StatusRejected},
	StatusCancelled:       {},
	StatusReturned:        {},
	StatusRejected:        {},
}

func canTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// canCustomerCancel models the policy that an item may be cancelled any time
// before delivery. After delivery only a return request is permitted.
func canCustomerCancel(status string) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusShipped:
		return true
	}
	return false
}

func canCustomerRequestReturn(status string) bool {
	return status == StatusDelivered
}

// isSettled reports whether an item no longer counts toward the order's
// remaining value: it was cancelled outright or its return completed.
func isSettled(status string) bool {
	return status == StatusCancelled || status == StatusReturned
}

// deriveOrderStatus rolls item statuses up into the aggregate order status.
// The aggregate is always derived, never set directly: if every item is
// settled the order is Cancelled; otherwise the most advanced remaining item
// wins (Delivered over Shipped over Processing).
func deriveOrderStatus(items []models.OrderItem) string {
	allSettled := true
	hasDelivered := false
	hasShipped := false

	for _, item := range items {
		if isSettled(item.Status) {
			continue
		}
		allSettled = false
		switch item.Status {
		case StatusDelivered, StatusReturnRequested, StatusRejected:
			hasDelivered = true
		case StatusShipped:
			hasShipped = true
		}
	}

	switch {
	case len(items) == 0 || allSettled:
		return StatusCancelled
	case hasDelivered:
		return StatusDelivered
	case hasShipped:
		return StatusShipped
	default:
		return StatusProcessing
	}
}
