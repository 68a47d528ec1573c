package core_test

import (
	"context"
	"fmt"
	"sync"

	"inventory-orders/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// fakeCatalog is an in-memory DesignLookup and PaperLookup.
type fakeCatalog struct {
	designs     map[string]*core.Design
	papers      []core.Paper
	designCalls int
	paperCalls  int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{designs: map[string]*core.Design{}}
}

func (c *fakeCatalog) GetDesign(_ context.Context, id string) (*core.Design, error) {
	c.designCalls++
	d, ok := c.designs[id]
	if !ok {
		return nil, core.NewNotFoundError("design", id)
	}
	cp := *d
	return &cp, nil
}

func (c *fakeCatalog) FindPaper(_ context.Context, width decimal.Decimal, inventoryType core.InventoryType) (*core.Paper, error) {
	c.paperCalls++
	for _, p := range c.papers {
		if p.Width.Equal(width) && p.InventoryType == inventoryType {
			cp := p
			return &cp, nil
		}
	}
	return nil, core.NewNotFoundError("paper", fmt.Sprintf("%s/%s", inventoryType, width))
}

// standardCatalog holds design D1 (one stone of 2g, price 50) and 9" paper weighing 20g.
func standardCatalog() *fakeCatalog {
	c := newFakeCatalog()
	c.papers = []core.Paper{
		{ID: "P9", Width: dec("9"), InventoryType: core.InventoryPaper, WeightPerPiece: dec("20")},
		{ID: "T9", Width: dec("9"), InventoryType: core.InventoryTape, WeightPerPiece: dec("5")},
	}
	c.designs["D1"] = &core.Design{
		ID:     "D1",
		Number: "D-001",
		Prices: []core.DesignPrice{{Currency: "INR", Price: dec("50")}, {Currency: "USD", Price: dec("1")}},
		DefaultStones: []core.DesignStone{
			{StoneID: "S1", Quantity: dec("3"), Stone: &core.Stone{ID: "S1", WeightPerPiece: dec("2"), Quantity: dec("900")}},
		},
	}
	return c
}

type fakeCustomers struct {
	customers map[string]*core.Customer
}

func (f *fakeCustomers) GetCustomer(_ context.Context, id string) (*core.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, core.NewNotFoundError("customer", id)
	}
	return c, nil
}

// fakeOrderStore keeps orders in memory and appends history the way the SQL store does.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]core.Order
	err    error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]core.Order{}}
}

func (s *fakeOrderStore) Create(_ context.Context, o *core.Order) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.orders[o.ID] = *o
	out := *o
	return &out, nil
}

func (s *fakeOrderStore) Get(_ context.Context, id string) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, core.NewNotFoundError("order", id)
	}
	return &o, nil
}

func (s *fakeOrderStore) Update(_ context.Context, o *core.Order, history []core.HistoryEntry) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	prev, ok := s.orders[o.ID]
	if !ok {
		return nil, core.NewNotFoundError("order", o.ID)
	}
	next := *o
	next.UpdateHistory = append(append([]core.HistoryEntry{}, prev.UpdateHistory...), history...)
	s.orders[o.ID] = next
	return &next, nil
}

func (s *fakeOrderStore) List(_ context.Context, filter core.OrderFilter) ([]core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Order
	for _, o := range s.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && o.Type != *filter.Type {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

type publishedEvent struct {
	routingKey string
	payload    core.OrderEvent
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, payload any) error {
	if ev, ok := payload.(core.OrderEvent); ok {
		p.events = append(p.events, publishedEvent{routingKey: routingKey, payload: ev})
	}
	return p.err
}

func (p *fakePublisher) keys() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.routingKey)
	}
	return out
}

type fakeLocker struct {
	held     map[string]bool
	released int
}

func (l *fakeLocker) LockOrder(_ context.Context, orderID string) (func(context.Context) error, error) {
	if l.held[orderID] {
		return nil, core.ErrOrderLocked
	}
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}
