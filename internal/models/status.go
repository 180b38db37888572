package models

var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
}

var statusLabels = map[OrderStatus]string{
	OrderStatusPending:    "Pending Confirmation",
	OrderStatusConfirmed:  "Confirmed",
	OrderStatusProcessing: "Processing",
	OrderStatusShipped:    "Shipped",
	OrderStatusDelivered:  "Delivered",
	OrderStatusCancelled:  "Cancelled",
}

func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the human readable status used in customer notifications.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// CanTransition reports whether the admin workflow allows moving an order from one
// status to another. Storage does not consult it.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
