// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderStatusQueue is the durable queue carrying OrderStatusChangedEvent.
const OrderStatusQueue = "order.status_changed"

// OrderStatusChangedEvent is published when a staff member moves a
// room-service order to another status.  It carries enough context for
// an audit trail without querying the primary database.
type OrderStatusChangedEvent struct {
	OrderID    uint64 `json:"order_id"`
	RoomNumber string `json:"room_number"`
	From       string `json:"from"`
	To         string `json:"to"`
	StaffID    uint64 `json:"staff_id"`
	RequestID  string `json:"request_id,omitempty"`
	ChangedAt  string `json:"changed_at"`
}
