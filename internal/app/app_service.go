package app

import (
	"context"
	"errors"
	"fmt"

	"inventory-orders/internal/core"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the core services the application façade delegates to.
type Services struct {
	Users     core.UserService
	Catalog   core.CatalogService
	Customers core.CustomerService
	Suppliers core.SupplierService
	Inventory core.InventoryService
	Orders    core.OrderService
}

type appService struct {
	db  Pinger
	svc Services
	log *zap.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(db Pinger, svc Services, log *zap.Logger) ApplicationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &appService{db: db, svc: svc, log: log}
}

func (s *appService) Health(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// ── Users ────────────────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.svc.Users.GetByUsername(ctx, username)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info("login rejected", zap.String("username", username))
		return nil, core.ErrInvalidCredentials
	}
	return &UserSession{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func (s *appService) GetUser(ctx context.Context, userID string) (*UserResult, error) {
	user, err := s.svc.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResult(user), nil
}

func (s *appService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResult, error) {
	if len(req.Password) < 8 {
		return nil, core.NewValidationError("password", "must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, core.NewValidationError("password", "must be at most 72 bytes")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.svc.Users.CreateUser(ctx, core.UserInput{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	})
	if err != nil {
		return nil, err
	}
	return toUserResult(user), nil
}

func toUserResult(u *core.User) *UserResult {
	return &UserResult{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// ── Master data ──────────────────────────────────────────────────────────────

func (s *appService) CreateStone(ctx context.Context, input core.StoneInput) (*core.Stone, error) {
	return s.svc.Catalog.CreateStone(ctx, input)
}

func (s *appService) GetStone(ctx context.Context, id string) (*core.Stone, error) {
	return s.svc.Catalog.GetStone(ctx, id)
}

func (s *appService) ListStones(ctx context.Context) ([]core.Stone, error) {
	return s.svc.Catalog.ListStones(ctx)
}

func (s *appService) CreatePaper(ctx context.Context, input core.PaperInput) (*core.Paper, error) {
	return s.svc.Catalog.CreatePaper(ctx, input)
}

func (s *appService) ListPapers(ctx context.Context, inventoryType *core.InventoryType) ([]core.Paper, error) {
	return s.svc.Catalog.ListPapers(ctx, inventoryType)
}

func (s *appService) CreateDesign(ctx context.Context, input core.DesignInput) (*core.Design, error) {
	return s.svc.Catalog.CreateDesign(ctx, input)
}

// UpdateDesign edits a design. Orders already computed from it keep their snapshot.
func (s *appService) UpdateDesign(ctx context.Context, id string, input core.DesignInput) (*core.Design, error) {
	return s.svc.Catalog.UpdateDesign(ctx, id, input)
}

func (s *appService) GetDesign(ctx context.Context, id string) (*core.Design, error) {
	return s.svc.Catalog.GetDesign(ctx, id)
}

func (s *appService) ListDesigns(ctx context.Context) ([]core.Design, error) {
	return s.svc.Catalog.ListDesigns(ctx)
}

func (s *appService) CreateCustomer(ctx context.Context, input core.CustomerInput) (*core.Customer, error) {
	return s.svc.Customers.CreateCustomer(ctx, input)
}

func (s *appService) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	return s.svc.Customers.ListCustomers(ctx)
}

func (s *appService) CreateSupplier(ctx context.Context, input core.SupplierInput) (*core.Supplier, error) {
	return s.svc.Suppliers.CreateSupplier(ctx, input)
}

func (s *appService) GetSupplier(ctx context.Context, id string) (*core.Supplier, error) {
	return s.svc.Suppliers.GetSupplier(ctx, id)
}

func (s *appService) ListSuppliers(ctx context.Context) ([]core.Supplier, error) {
	return s.svc.Suppliers.ListSuppliers(ctx)
}

// ── Inventory ────────────────────────────────────────────────────────────────

func (s *appService) AddInventoryEntry(ctx context.Context, input core.InventoryEntryInput) (*core.InventoryEntry, error) {
	entry, err := s.svc.Inventory.AddEntry(ctx, input)
	if err != nil {
		return nil, err
	}
	s.log.Info("inventory adjusted",
		zap.String("kind", string(entry.ItemKind)),
		zap.String("item_id", entry.ItemID),
		zap.String("change", entry.QuantityChange.String()),
		zap.String("actor", input.ActorID),
	)
	return entry, nil
}

func (s *appService) ListInventoryEntries(ctx context.Context, filter core.InventoryEntryFilter) (*InventoryEntriesResult, error) {
	entries, err := s.svc.Inventory.ListEntries(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &InventoryEntriesResult{Entries: entries}, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	order, err := s.svc.Orders.CreateOrder(ctx, req.Order, req.ActorID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) UpdateOrder(ctx context.Context, req UpdateOrderRequest) (*OrderResult, error) {
	order, err := s.svc.Orders.UpdateOrder(ctx, req.OrderID, req.Changes, req.ActorID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) GetOrder(ctx context.Context, id string) (*OrderResult, error) {
	order, err := s.svc.Orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) ListOrders(ctx context.Context, filter core.OrderFilter) (*OrderListResult, error) {
	orders, err := s.svc.Orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}
