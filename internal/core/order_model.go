package core

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType separates internal production orders from outgoing customer orders.
type OrderType string

const (
	OrderTypeInternal OrderType = "internal"
	OrderTypeOut      OrderType = "out"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderTypeInternal || t == OrderTypeOut
}

// OrderStatus is the order lifecycle state:
//
//	pending → completed
//	pending → cancelled
//
// completed and cancelled are terminal.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// DiscountType selects how DiscountValue is applied to the order cost.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFlat
}

// PaperUsed is the paper selection of a design-order line. PaperWeightPerPc is always
// copied from the Paper record at calculation time.
type PaperUsed struct {
	SizeInInch       decimal.Decimal `json:"sizeInInch"`
	InventoryType    InventoryType   `json:"inventoryType"`
	PaperWeightPerPc decimal.Decimal `json:"paperWeightPerPc"`
}

// StoneUsage is the number of pieces of one stone consumed by a design-order line.
type StoneUsage struct {
	StoneID  string          `json:"stoneId"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DesignOrderLine is a computed snapshot of one design ordered in some quantity.
type DesignOrderLine struct {
	DesignID         string          `json:"designId"`
	Quantity         decimal.Decimal `json:"quantity"`
	PaperUsed        PaperUsed       `json:"paperUsed"`
	StonesUsed       []StoneUsage    `json:"stonesUsed"`
	CalculatedWeight decimal.Decimal `json:"calculatedWeight"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
}

// HistoryEntry records one field-level change made by an order update.
// OldValue and NewValue hold the JSON encoding of the field before and after.
type HistoryEntry struct {
	Field     string          `json:"field"`
	OldValue  json.RawMessage `json:"oldValue"`
	NewValue  json.RawMessage `json:"newValue"`
	UpdatedBy string          `json:"updatedBy"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Order is the aggregate built at creation and reconciled by partial updates.
// Field json names double as the updateHistory field names.
type Order struct {
	ID                    string            `json:"id"`
	Type                  OrderType         `json:"type"`
	CustomerID            *string           `json:"customerId"`
	CustomerName          string            `json:"customerName"`
	Phone                 string            `json:"phone"`
	DesignOrders          []DesignOrderLine `json:"designOrders"`
	CalculatedWeight      decimal.Decimal   `json:"calculatedWeight"`
	TotalCost             decimal.Decimal   `json:"totalCost"`
	DiscountType          DiscountType      `json:"discountType"`
	DiscountValue         decimal.Decimal   `json:"discountValue"`
	DiscountedAmount      decimal.Decimal   `json:"discountedAmount"`
	FinalAmount           decimal.Decimal   `json:"finalAmount"`
	FinalTotalWeight      *decimal.Decimal  `json:"finalTotalWeight"`
	WeightDiscrepancy     *decimal.Decimal  `json:"weightDiscrepancy"`
	DiscrepancyPercentage *decimal.Decimal  `json:"discrepancyPercentage"`
	Status                OrderStatus       `json:"status"`
	IsFinalized           bool              `json:"isFinalized"`
	FinalizedAt           *time.Time        `json:"finalizedAt"`
	Notes                 string            `json:"notes"`
	UpdateHistory         []HistoryEntry    `json:"updateHistory"`
	CreatedBy             string            `json:"createdBy"`
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
}

// PaperSelector identifies a Paper record by width and inventory type.
type PaperSelector struct {
	SizeInInch    decimal.Decimal
	InventoryType InventoryType
}

// OrderLineInput is one requested design-order line before computation.
type OrderLineInput struct {
	DesignID string
	Quantity decimal.Decimal
	Paper    PaperSelector
}

// CreateOrderInput is the input for creating an order.
type CreateOrderInput struct {
	Type             OrderType
	CustomerID       *string
	CustomerName     string
	Phone            string
	Lines            []OrderLineInput
	DiscountType     DiscountType // empty means percentage
	DiscountValue    decimal.Decimal
	FinalTotalWeight *decimal.Decimal
	IsFinalized      bool
	Notes            string
}

// UpdateOrderInput carries a partial order update. A nil field is absent from the
// update and leaves the stored value untouched.
type UpdateOrderInput struct {
	CustomerID       *string
	CustomerName     *string
	Phone            *string
	Lines            []OrderLineInput // nil means absent; an empty non-nil slice is rejected
	DiscountType     *DiscountType
	DiscountValue    *decimal.Decimal
	FinalTotalWeight *decimal.Decimal
	Status           *OrderStatus
	IsFinalized      *bool
	Notes            *string
}

// OrderFilter narrows ListOrders. Zero values mean no filter.
type OrderFilter struct {
	Status *OrderStatus
	Type   *OrderType
	Limit  int
	Offset int
}
