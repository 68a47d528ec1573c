package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryKind names the table an inventory entry adjusts.
type InventoryKind string

const (
	InventoryKindStone InventoryKind = "stone"
	InventoryKindPaper InventoryKind = "paper"
)

// Valid reports whether k is a known inventory kind.
func (k InventoryKind) Valid() bool {
	return k == InventoryKindStone || k == InventoryKindPaper
}

// InventoryEntry is an append-only record of one stock adjustment.
// QuantityAfter is the item quantity immediately after the adjustment.
type InventoryEntry struct {
	ID             string          `json:"id"`
	ItemKind       InventoryKind   `json:"itemKind"`
	ItemID         string          `json:"itemId"`
	QuantityChange decimal.Decimal `json:"quantityChange"`
	QuantityAfter  decimal.Decimal `json:"quantityAfter"`
	Note           string          `json:"note"`
	CreatedBy      string          `json:"createdBy"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// InventoryEntryInput is a requested stock adjustment. A negative change consumes stock.
type InventoryEntryInput struct {
	ItemKind       InventoryKind
	ItemID         string
	QuantityChange decimal.Decimal
	Note           string
	ActorID        string
}

// InventoryEntryFilter narrows ListEntries. Empty fields mean no filter.
type InventoryEntryFilter struct {
	ItemKind InventoryKind
	ItemID   string
	Limit    int
}
