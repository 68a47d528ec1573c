package core

import (
	"context"
	"time"
)

// Supplier is a vendor of stones, paper and other raw material.
type Supplier struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contactPerson,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Address       *string   `json:"address,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SupplierInput holds the fields required to create a new supplier.
type SupplierInput struct {
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
}

// SupplierService provides supplier master data operations.
type SupplierService interface {
	// CreateSupplier creates a new, active supplier record.
	CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)

	// ListSuppliers returns all active suppliers ordered by name.
	ListSuppliers(ctx context.Context) ([]Supplier, error)

	// GetSupplier returns a supplier by id, active or not.
	GetSupplier(ctx context.Context, id string) (*Supplier, error)
}
