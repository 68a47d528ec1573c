package app

import (
	"context"

	"inventory-orders/internal/core"
)

// ApplicationService is the single interface the web adapter calls.
// It decouples presentation from business logic. Implementations must contain
// no HTTP or rendering concerns of any kind.
type ApplicationService interface {
	// Health pings the datastore.
	Health(ctx context.Context) error

	// AuthenticateUser verifies credentials and returns a session on success.
	// Unknown users and wrong passwords both yield core.ErrInvalidCredentials.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns a user profile by ID.
	GetUser(ctx context.Context, userID string) (*UserResult, error)

	// CreateUser hashes the password and provisions a new user.
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResult, error)

	// Master data
	CreateStone(ctx context.Context, input core.StoneInput) (*core.Stone, error)
	GetStone(ctx context.Context, id string) (*core.Stone, error)
	ListStones(ctx context.Context) ([]core.Stone, error)
	CreatePaper(ctx context.Context, input core.PaperInput) (*core.Paper, error)
	ListPapers(ctx context.Context, inventoryType *core.InventoryType) ([]core.Paper, error)
	CreateDesign(ctx context.Context, input core.DesignInput) (*core.Design, error)
	UpdateDesign(ctx context.Context, id string, input core.DesignInput) (*core.Design, error)
	GetDesign(ctx context.Context, id string) (*core.Design, error)
	ListDesigns(ctx context.Context) ([]core.Design, error)
	CreateCustomer(ctx context.Context, input core.CustomerInput) (*core.Customer, error)
	ListCustomers(ctx context.Context) ([]core.Customer, error)
	CreateSupplier(ctx context.Context, input core.SupplierInput) (*core.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*core.Supplier, error)
	ListSuppliers(ctx context.Context) ([]core.Supplier, error)

	// AddInventoryEntry adjusts a stone or paper quantity and records the entry.
	AddInventoryEntry(ctx context.Context, input core.InventoryEntryInput) (*core.InventoryEntry, error)

	// ListInventoryEntries returns inventory entries, newest first.
	ListInventoryEntries(ctx context.Context, filter core.InventoryEntryFilter) (*InventoryEntriesResult, error)

	// CreateOrder computes every design-order line and persists a pending order.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)

	// UpdateOrder applies a partial update and records field-level history.
	UpdateOrder(ctx context.Context, req UpdateOrderRequest) (*OrderResult, error)

	// GetOrder returns a single order by ID.
	GetOrder(ctx context.Context, id string) (*OrderResult, error)

	// ListOrders returns orders newest first, optionally filtered.
	ListOrders(ctx context.Context, filter core.OrderFilter) (*OrderListResult, error)
}
