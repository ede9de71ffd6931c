package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

const (
	PaymentCashOnDelivery = "cashondelivery"
	PaymentPrepaid        = "prepaid"
)

// OrderStatuses is the allow-list accepted by status updates.
var OrderStatuses = []string{StatusPending, StatusShipped, StatusDelivered, StatusCancelled}

// Spellings written by older schema generations.
var statusAliases = map[string]string{
	"canceled": StatusCancelled,
	"new":      StatusPending,
}

var statusTransitions = map[string][]string{
	StatusPending: {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered, StatusCancelled},
}

// ParseStatus accepts only the exact lowercase spellings in OrderStatuses.
func ParseStatus(value string) (string, bool) {
	for _, allowed := range OrderStatuses {
		if value == allowed {
			return value, true
		}
	}
	return value, false
}

// NormalizeStatus lower-cases the value and maps legacy spellings onto the
// canonical vocabulary. ok is false when the result is not an allowed status.
// Reads use it to fold stored data; writes go through ParseStatus unless
// aliases are switched on.
func NormalizeStatus(value string) (string, bool) {
	status := strings.ToLower(strings.TrimSpace(value))
	if alias, ok := statusAliases[status]; ok {
		status = alias
	}
	for _, allowed := range OrderStatuses {
		if status == allowed {
			return status, true
		}
	}
	return status, false
}

// CanTransition follows the natural lifecycle: pending→shipped|cancelled,
// shipped→delivered|cancelled, delivered and cancelled are terminal. Writing
// the current status again is always allowed.
func CanTransition(from, to string) bool {
	from, _ = NormalizeStatus(from)
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is a snapshot of the product at order time, not a live reference.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size" json:"size"`
	Color     string             `bson:"color,omitempty" json:"color,omitempty"`
	Images    StringList         `bson:"images,omitempty" json:"images,omitempty"`
}

// Order defines the persisted order document.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	ShippingAddress Address            `bson:"shippingAddress" json:"shippingAddress"`
	Status          string             `bson:"status" json:"status"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	CarrierOrderID  string             `bson:"carrierOrderId,omitempty" json:"carrierOrderId,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderSummaryItem and OrderSummary form the per-user order view.
type OrderSummaryItem struct {
	Name     string     `json:"name"`
	Price    float64    `json:"price"`
	Quantity int        `json:"quantity"`
	Size     string     `json:"size"`
	Images   StringList `json:"images"`
}

type OrderSummary struct {
	OrderID     primitive.ObjectID `json:"orderId"`
	Items       []OrderSummaryItem `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func (o Order) Summary() OrderSummary {
	items := make([]OrderSummaryItem, 0, len(o.Items))
	for _, item := range o.Items {
		images := item.Images
		if images == nil {
			images = StringList{}
		}
		items = append(items, OrderSummaryItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			Size:     item.Size,
			Images:   images,
		})
	}
	return OrderSummary{
		OrderID:     o.ID,
		Items:       items,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
	}
}
