package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses as stored in room_service_orders.status.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// OrderStatuses lists every known order status in workflow order.
var OrderStatuses = []string{OrderPending, OrderConfirmed, OrderPreparing, OrderDelivered, OrderCancelled}

// IsOrderStatus reports whether s is one of OrderStatuses.
func IsOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Payment methods accepted by the guest ordering flow.
const (
	PaymentRoomCharge = "room_charge"
	PaymentCard       = "card"
	PaymentCash       = "cash"
)

// Order is a room-service order placed by a guest.  Orders are created by
// the guest-facing ordering flow and only their status is changed from the
// back office; they are never hard-deleted.
//
// Fields:
//  ID            – primary key identifier.
//  RoomNumber    – room the order is delivered to.
//  GuestName     – name given by the guest.
//  Phone         – contact phone number.
//  Status        – one of OrderStatuses.
//  PaymentMethod – room_charge, card or cash (free text in older rows).
//  DeliveryAt    – requested delivery time (nil means "as soon as possible").
//  CreatedAt     – creation timestamp.
//  TotalAmount   – order total, VAT included.
//  Notes         – free text from the guest.
//  ItemsSummary  – "name xQty" entries joined with ", " (read-only aggregate).
type Order struct {
	ID            uint64          // room_service_orders.id
	RoomNumber    string          // room_service_orders.room_number
	GuestName     string          // room_service_orders.guest_name
	Phone         string          // room_service_orders.phone
	Status        string          // room_service_orders.status
	PaymentMethod string          // room_service_orders.payment_method
	DeliveryAt    *time.Time      // room_service_orders.delivery_datetime (nullable)
	CreatedAt     time.Time       // room_service_orders.created_at
	TotalAmount   decimal.Decimal // room_service_orders.total_amount
	Notes         string          // room_service_orders.notes
	ItemsSummary  string          // GROUP_CONCAT over room_service_order_items
}

// OrderItem is one line of an order.  Items are owned by their order.
type OrderItem struct {
	ID        uint64          // room_service_order_items.id
	OrderID   uint64          // room_service_order_items.order_id
	ItemName  string          // room_service_order_items.item_name
	Quantity  int             // room_service_order_items.quantity
	UnitPrice decimal.Decimal // room_service_order_items.unit_price
}

var orderStatusLabels = map[string]string{
	OrderPending:   "En attente",
	OrderConfirmed: "Confirmée",
	OrderPreparing: "En préparation",
	OrderDelivered: "Livrée",
	OrderCancelled: "Annulée",
}

var paymentLabels = map[string]string{
	PaymentRoomCharge: "Note de chambre",
	PaymentCard:       "Carte bancaire",
	PaymentCash:       "Espèces",
}

// OrderStatusLabel returns the French label of a status, or the raw value
// when it is unknown.
func OrderStatusLabel(s string) string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return s
}

// PaymentLabel returns the French label of a payment method, or the raw
// value when it is unknown.
func PaymentLabel(s string) string {
	if l, ok := paymentLabels[s]; ok {
		return l
	}
	return s
}
