package order

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a sand order.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusConfirmed    Status = "CONFIRMED"
	StatusInProduction Status = "IN_PRODUCTION"
	StatusQC           Status = "QC"
	StatusReady        Status = "READY"
	StatusDispatched   Status = "DISPATCHED"
	StatusDelivered    Status = "DELIVERED"
	StatusCompleted    Status = "COMPLETED"
	StatusInvoiced     Status = "INVOICED"
)

// validTransitions defines the allowed status state machine. The chain is
// monotonic, with two sanctioned exceptions: READY→DISPATCHED happens when a
// redirected truck is put on the order, and QC→IN_PRODUCTION is the loop-back
// after a failed lab test.
var validTransitions = map[Status][]Status{
	StatusPending:      {StatusConfirmed},
	StatusConfirmed:    {StatusInProduction},
	StatusInProduction: {StatusQC},
	StatusQC:           {StatusReady, StatusInProduction},
	StatusReady:        {StatusDispatched},
	StatusDispatched:   {StatusDelivered},
	StatusDelivered:    {StatusCompleted},
	StatusCompleted:    {StatusInvoiced},
	StatusInvoiced:     {},
}

// CanTransition returns true if moving from current to next is allowed.
func CanTransition(current, next Status) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// OpenStatuses are the statuses under which an order still reserves inventory.
var OpenStatuses = []Status{StatusPending, StatusConfirmed, StatusReady}

// Order represents a customer's sand order.
type Order struct {
	ID               uuid.UUID `json:"id"`
	OrderNumber      string    `json:"order_number"`
	CustomerID       uuid.UUID `json:"customer_id"`
	Status           Status    `json:"status"`
	DeliveryLocation string    `json:"delivery_location"`
	Urgency          string    `json:"urgency,omitempty"` // defaults to "normal" when empty
	Items            []*Item   `json:"items,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Item is a single product line within an order.
type Item struct {
	ID           uuid.UUID `json:"id"`
	OrderID      uuid.UUID `json:"order_id"`
	ProductID    uuid.UUID `json:"product_id"`
	QuantityTons float64   `json:"quantity_tons"`
	UnitPrice    float64   `json:"unit_price"`
}

// TotalTons returns the order's total tonnage across all product lines.
func (o *Order) TotalTons() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.QuantityTons
	}
	return total
}

// ProductIDs returns the distinct product ids requested by the order.
func (o *Order) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(o.Items))
	var ids []uuid.UUID
	for _, item := range o.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
