package service

import "time"

// Stateless payload builders consumed by the call sites that invoke the
// relay's Send*Update methods. Message selection is deterministic from the
// fixed tables below; unknown statuses fall back to a generic message.

var orderStatusMessages = map[string]string{
	"pending":   "Your order has been received",
	"confirmed": "Your order has been confirmed",
	"preparing": "Your order is being prepared",
	"shipped":   "Your order is on the way",
	"delivered": "Your order has been delivered",
	"cancelled": "Your order has been cancelled",
}

var cashbackStatusMessages = map[string]string{
	"pending":  "Your cashback is being reviewed",
	"approved": "Your cashback has been approved",
	"rejected": "Your cashback request was declined",
	"paid":     "Your cashback has been paid out",
}

// OrderStatusMessage returns the customer-facing text for an order status.
func OrderStatusMessage(status string) string {
	if msg, ok := orderStatusMessages[status]; ok {
		return msg
	}
	return "Your order has been updated"
}

// CashbackStatusMessage returns the customer-facing text for a cashback status.
func CashbackStatusMessage(status string) string {
	if msg, ok := cashbackStatusMessages[status]; ok {
		return msg
	}
	return "Your cashback has been updated"
}

// BuildOrderStatusUpdate builds an order timeline entry. Location is optional.
func BuildOrderStatusUpdate(status, location string) map[string]interface{} {
	update := map[string]interface{}{
		"status":    status,
		"message":   OrderStatusMessage(status),
		"timestamp": time.Now(),
	}
	if location != "" {
		update["location"] = location
	}
	return update
}

// BuildProductAvailabilityUpdate builds a product availability delta. When
// the stock hits zero an estimated restock date is included.
func BuildProductAvailabilityUpdate(quantity int, price float64, priceChanged bool) map[string]interface{} {
	update := map[string]interface{}{
		"in_stock":      quantity > 0,
		"quantity":      quantity,
		"price":         price,
		"price_changed": priceChanged,
	}
	if quantity == 0 {
		update["estimated_restock_date"] = time.Now().Add(7 * 24 * time.Hour)
	}
	return update
}

// BuildCashbackStatusUpdate builds a cashback status transition with a
// single-entry timeline.
func BuildCashbackStatusUpdate(oldStatus, newStatus string, approvedAmount float64) map[string]interface{} {
	return map[string]interface{}{
		"old_status":      oldStatus,
		"new_status":      newStatus,
		"approved_amount": approvedAmount,
		"message":         CashbackStatusMessage(newStatus),
		"timeline": []map[string]interface{}{
			{
				"status":    newStatus,
				"message":   CashbackStatusMessage(newStatus),
				"timestamp": time.Now(),
			},
		},
	}
}
