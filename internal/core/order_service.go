package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Order event routing keys.
const (
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderFinalized = "order.finalized"
)

// OrderEvent is the payload published after an order is persisted.
type OrderEvent struct {
	Event         string      `json:"event"`
	OrderID       string      `json:"orderId"`
	Type          OrderType   `json:"type"`
	Status        OrderStatus `json:"status"`
	IsFinalized   bool        `json:"isFinalized"`
	FinalAmount   string      `json:"finalAmount"`
	ChangedFields []string    `json:"changedFields,omitempty"`
	ActorID       string      `json:"actorId"`
	OccurredAt    time.Time   `json:"occurredAt"`
}

// EventPublisher delivers order events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// OrderLocker serializes concurrent updates of one order. The returned release
// function must be called once the update has been persisted.
type OrderLocker interface {
	LockOrder(ctx context.Context, orderID string) (release func(context.Context) error, err error)
}

// CustomerLookup resolves a customer by id.
type CustomerLookup interface {
	GetCustomer(ctx context.Context, id string) (*Customer, error)
}

// OrderService creates and reconciles orders.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput, actorID string) (*Order, error)
	// UpdateOrder applies a partial update, recomputing only the aggregates whose inputs
	// are present, and appends one history entry per changed field.
	UpdateOrder(ctx context.Context, id string, input UpdateOrderInput, actorID string) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
}

// OrderServiceOptions carries the optional collaborators of an OrderService.
type OrderServiceOptions struct {
	Publisher                EventPublisher // nil disables events
	Locker                   OrderLocker    // nil keeps last-write-wins updates
	ClampNegativeFinalAmount bool
	Now                      func() time.Time
}

type orderService struct {
	store     OrderStore
	designs   DesignLookup
	papers    PaperLookup
	customers CustomerLookup
	log       *zap.Logger
	opts      OrderServiceOptions
}

func NewOrderService(store OrderStore, designs DesignLookup, papers PaperLookup, customers CustomerLookup, log *zap.Logger, opts OrderServiceOptions) OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &orderService{
		store:     store,
		designs:   designs,
		papers:    papers,
		customers: customers,
		log:       log,
		opts:      opts,
	}
}

func (s *orderService) now() time.Time {
	return s.opts.Now().UTC()
}

// computeLines computes every line or fails as a whole.
func (s *orderService) computeLines(ctx context.Context, inputs []OrderLineInput) ([]DesignOrderLine, error) {
	lines := make([]DesignOrderLine, 0, len(inputs))
	for i, in := range inputs {
		line, err := ComputeDesignOrderLine(ctx, s.designs, s.papers, in)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return nil, NewValidationError(fmt.Sprintf("designOrders[%d].%s", i, ve.Field), ve.Message)
			}
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *orderService) discount(totalCost decimal.Decimal, discountType DiscountType, value decimal.Decimal) DiscountResult {
	res := ApplyDiscount(totalCost, discountType, value)
	if s.opts.ClampNegativeFinalAmount && res.FinalAmount.IsNegative() {
		res.FinalAmount = decimal.Zero
	}
	return res
}

func validateFinalWeight(w *decimal.Decimal) error {
	if w != nil && w.IsNegative() {
		return NewValidationError("finalTotalWeight", "must not be negative")
	}
	return nil
}

func validateDiscount(discountType DiscountType, value decimal.Decimal) error {
	if !discountType.Valid() {
		return NewValidationError("discountType", fmt.Sprintf("unknown discount type %q", discountType))
	}
	if value.IsNegative() {
		return NewValidationError("discountValue", "must not be negative")
	}
	return nil
}

func (s *orderService) CreateOrder(ctx context.Context, input CreateOrderInput, actorID string) (*Order, error) {
	if !input.Type.Valid() {
		return nil, NewValidationError("type", fmt.Sprintf("must be %q or %q", OrderTypeInternal, OrderTypeOut))
	}
	if len(input.Lines) == 0 {
		return nil, NewValidationError("designOrders", "at least one design order is required")
	}
	if input.DiscountType == "" {
		input.DiscountType = DiscountPercentage
	}
	if err := validateDiscount(input.DiscountType, input.DiscountValue); err != nil {
		return nil, err
	}
	if err := validateFinalWeight(input.FinalTotalWeight); err != nil {
		return nil, err
	}

	name, phone := strings.TrimSpace(input.CustomerName), strings.TrimSpace(input.Phone)
	if input.CustomerID != nil {
		c, err := s.customers.GetCustomer(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if name == "" {
			name = c.Name
		}
		if phone == "" {
			phone = c.Phone
		}
	}
	if name == "" {
		return nil, NewValidationError("customerName", "is required")
	}

	lines, err := s.computeLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	totals := RecomputeOrderAggregates(lines)
	payment := s.discount(totals.TotalCost, input.DiscountType, input.DiscountValue)

	o := &Order{
		ID:               uuid.NewString(),
		Type:             input.Type,
		CustomerID:       input.CustomerID,
		CustomerName:     name,
		Phone:            phone,
		DesignOrders:     lines,
		CalculatedWeight: totals.CalculatedWeight,
		TotalCost:        totals.TotalCost,
		DiscountType:     input.DiscountType,
		DiscountValue:    input.DiscountValue,
		DiscountedAmount: payment.DiscountedAmount,
		FinalAmount:      payment.FinalAmount,
		Status:           OrderStatusPending,
		Notes:            input.Notes,
		UpdateHistory:    []HistoryEntry{},
		CreatedBy:        actorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if rec, ok := ReconcileWeight(o.CalculatedWeight, input.FinalTotalWeight, nil); ok {
		setReconciliation(o, rec)
	}
	FinalizeOrder(o, input.IsFinalized, now)

	created, err := s.store.Create(ctx, o)
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("type", string(created.Type)),
		zap.String("actor", actorID),
		zap.Int("lines", len(created.DesignOrders)),
	)
	s.publish(ctx, EventOrderCreated, created, nil, actorID)
	if created.IsFinalized {
		s.publish(ctx, EventOrderFinalized, created, nil, actorID)
	}
	return created, nil
}

func setReconciliation(o *Order, rec WeightReconciliation) {
	final, diff, pct := rec.EffectiveFinalWeight, rec.WeightDiscrepancy, rec.DiscrepancyPercentage
	o.FinalTotalWeight = &final
	o.WeightDiscrepancy = &diff
	o.DiscrepancyPercentage = &pct
}

func (s *orderService) UpdateOrder(ctx context.Context, id string, input UpdateOrderInput, actorID string) (*Order, error) {
	if err := validateFinalWeight(input.FinalTotalWeight); err != nil {
		return nil, err
	}
	if s.opts.Locker != nil {
		release, err := s.opts.Locker.LockOrder(ctx, id)
		if err != nil {
			if errors.Is(err, ErrOrderLocked) {
				s.log.Warn("order update rejected, lock held", zap.String("order_id", id), zap.String("actor", actorID))
			}
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn("failed to release order lock", zap.String("order_id", id), zap.Error(err))
			}
		}()
	}

	old, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *old
	changes := map[string]any{}

	if input.CustomerID != nil {
		customerID := strings.TrimSpace(*input.CustomerID)
		if customerID == "" {
			updated.CustomerID = nil
		} else {
			c, err := s.customers.GetCustomer(ctx, customerID)
			if err != nil {
				return nil, err
			}
			updated.CustomerID = &c.ID
			if input.CustomerName == nil {
				updated.CustomerName = c.Name
				changes["customerName"] = updated.CustomerName
			}
			if input.Phone == nil {
				updated.Phone = c.Phone
				changes["phone"] = updated.Phone
			}
		}
		changes["customerId"] = updated.CustomerID
	}
	if input.CustomerName != nil {
		name := strings.TrimSpace(*input.CustomerName)
		if name == "" {
			return nil, NewValidationError("customerName", "must not be empty")
		}
		updated.CustomerName = name
		changes["customerName"] = name
	}
	if input.Phone != nil {
		updated.Phone = strings.TrimSpace(*input.Phone)
		changes["phone"] = updated.Phone
	}
	if input.Notes != nil {
		updated.Notes = *input.Notes
		changes["notes"] = updated.Notes
	}

	if input.Lines != nil {
		if len(input.Lines) == 0 {
			return nil, NewValidationError("designOrders", "at least one design order is required")
		}
		lines, err := s.computeLines(ctx, input.Lines)
		if err != nil {
			return nil, err
		}
		totals := RecomputeOrderAggregates(lines)
		updated.DesignOrders = lines
		updated.CalculatedWeight = totals.CalculatedWeight
		updated.TotalCost = totals.TotalCost
		changes["designOrders"] = updated.DesignOrders
		changes["calculatedWeight"] = updated.CalculatedWeight
		changes["totalCost"] = updated.TotalCost
	}

	if input.DiscountType != nil || input.DiscountValue != nil || input.Lines != nil {
		if input.DiscountType != nil {
			updated.DiscountType = *input.DiscountType
		}
		if input.DiscountValue != nil {
			updated.DiscountValue = *input.DiscountValue
		}
		if err := validateDiscount(updated.DiscountType, updated.DiscountValue); err != nil {
			return nil, err
		}
		payment := s.discount(updated.TotalCost, updated.DiscountType, updated.DiscountValue)
		updated.DiscountedAmount = payment.DiscountedAmount
		updated.FinalAmount = payment.FinalAmount
		changes["discountType"] = updated.DiscountType
		changes["discountValue"] = updated.DiscountValue
		changes["discountedAmount"] = updated.DiscountedAmount
		changes["finalAmount"] = updated.FinalAmount
	}

	if input.Status != nil {
		if err := ValidateStatusTransition(old.Status, *input.Status); err != nil {
			return nil, err
		}
		updated.Status = *input.Status
		changes["status"] = updated.Status
	}

	// Completion only triggers reconciliation on the actual transition. A stored
	// manual weight is re-reconciled when the lines change the calculated weight.
	var completing *OrderStatus
	if input.Status != nil && *input.Status == OrderStatusCompleted && old.Status != OrderStatusCompleted {
		completing = input.Status
	}
	finalWeight := input.FinalTotalWeight
	if finalWeight == nil && input.Lines != nil && old.FinalTotalWeight != nil {
		finalWeight = old.FinalTotalWeight
	}
	if rec, ok := ReconcileWeight(updated.CalculatedWeight, finalWeight, completing); ok {
		setReconciliation(&updated, rec)
		changes["finalTotalWeight"] = updated.FinalTotalWeight
		changes["weightDiscrepancy"] = updated.WeightDiscrepancy
		changes["discrepancyPercentage"] = updated.DiscrepancyPercentage
	}

	now := s.now()
	finalized := false
	if input.IsFinalized != nil {
		finalized = FinalizeOrder(&updated, *input.IsFinalized, now)
		if finalized {
			changes["isFinalized"] = updated.IsFinalized
			changes["finalizedAt"] = updated.FinalizedAt
		}
	}

	history, err := AppendUpdateHistory(old, changes, actorID, now)
	if err != nil {
		return nil, err
	}
	updated.UpdatedAt = now

	saved, err := s.store.Update(ctx, &updated, history)
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(history))
	for _, h := range history {
		fields = append(fields, h.Field)
	}
	s.log.Info("order updated",
		zap.String("order_id", saved.ID),
		zap.String("actor", actorID),
		zap.Strings("changed_fields", fields),
	)
	s.publish(ctx, EventOrderUpdated, saved, fields, actorID)
	if finalized {
		s.publish(ctx, EventOrderFinalized, saved, fields, actorID)
	}
	return saved, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.store.Get(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", *filter.Status))
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, NewValidationError("type", fmt.Sprintf("unknown order type %q", *filter.Type))
	}
	return s.store.List(ctx, filter)
}

// publish is best-effort: a delivery failure is logged and never fails the request.
func (s *orderService) publish(ctx context.Context, event string, o *Order, fields []string, actorID string) {
	if s.opts.Publisher == nil {
		return
	}
	payload := OrderEvent{
		Event:         event,
		OrderID:       o.ID,
		Type:          o.Type,
		Status:        o.Status,
		IsFinalized:   o.IsFinalized,
		FinalAmount:   o.FinalAmount.String(),
		ChangedFields: fields,
		ActorID:       actorID,
		OccurredAt:    s.now(),
	}
	if err := s.opts.Publisher.Publish(ctx, event, payload); err != nil {
		s.log.Warn("failed to publish order event",
			zap.String("event", event),
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
}
