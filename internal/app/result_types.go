package app

import (
	"time"

	"inventory-orders/internal/core"
)

// UserSession is returned by AuthenticateUser and becomes the JWT claims.
type UserSession struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Role     core.Role `json:"role"`
}

// UserResult is the public profile of a user.
type UserResult struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      core.Role `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderResult is returned by order operations.
type OrderResult struct {
	Order *core.Order
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.Order
}

// InventoryEntriesResult is returned by ListInventoryEntries.
type InventoryEntriesResult struct {
	Entries []core.InventoryEntry
}
