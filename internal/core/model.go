package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryType distinguishes the sheet-like inventories that share the papers table.
type InventoryType string

const (
	InventoryPaper   InventoryType = "paper"
	InventoryPlastic InventoryType = "plastic"
	InventoryTape    InventoryType = "tape"
)

// Valid reports whether t is a known inventory type.
func (t InventoryType) Valid() bool {
	switch t {
	case InventoryPaper, InventoryPlastic, InventoryTape:
		return true
	}
	return false
}

// Stone is a stone inventory item. WeightPerPiece is preferred over Quantity when a
// design's per-unit stone weight is aggregated.
type Stone struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Number         string          `json:"number"`
	Color          string          `json:"color"`
	Size           string          `json:"size"`
	WeightPerPiece decimal.Decimal `json:"weightPerPiece"`
	Quantity       decimal.Decimal `json:"quantity"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// StoneInput holds the fields required to create a stone.
type StoneInput struct {
	Name           string
	Number         string
	Color          string
	Size           string
	WeightPerPiece decimal.Decimal
	Quantity       decimal.Decimal
}

// Paper is a paper, plastic or tape roll keyed by (Width, InventoryType).
type Paper struct {
	ID             string          `json:"id"`
	Width          decimal.Decimal `json:"width"`
	InventoryType  InventoryType   `json:"inventoryType"`
	WeightPerPiece decimal.Decimal `json:"weightPerPiece"`
	Quantity       decimal.Decimal `json:"quantity"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// PaperInput holds the fields required to create a paper record.
type PaperInput struct {
	Width          decimal.Decimal
	InventoryType  InventoryType
	WeightPerPiece decimal.Decimal
	Quantity       decimal.Decimal
}

// DesignPrice is one entry of a design's price list. The first entry is authoritative.
type DesignPrice struct {
	Currency string          `json:"currency"`
	Price    decimal.Decimal `json:"price"`
}

// DesignStone references a stone used by a design. Stone is populated on reads.
type DesignStone struct {
	StoneID  string          `json:"stoneId"`
	Quantity decimal.Decimal `json:"quantity"`
	Stone    *Stone          `json:"stone,omitempty"`
}

// Design is a product design with its price list and default stone composition.
type Design struct {
	ID            string        `json:"id"`
	Number        string        `json:"number"`
	Name          string        `json:"name"`
	Prices        []DesignPrice `json:"prices"`
	DefaultStones []DesignStone `json:"defaultStones"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// DesignInput holds the editable fields of a design.
type DesignInput struct {
	Number        string
	Name          string
	Prices        []DesignPrice
	DefaultStones []DesignStone
}

// Customer is a customer master record.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

// CustomerInput holds the fields required to create a customer.
type CustomerInput struct {
	Name    string
	Phone   string
	Address string
}
