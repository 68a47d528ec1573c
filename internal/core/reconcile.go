package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DesignLookup resolves a design with its DefaultStones[i].Stone populated.
// It returns a *NotFoundError when the design does not exist.
type DesignLookup interface {
	GetDesign(ctx context.Context, id string) (*Design, error)
}

// PaperLookup resolves a paper by width and inventory type.
// It returns a *NotFoundError when no such paper exists.
type PaperLookup interface {
	FindPaper(ctx context.Context, width decimal.Decimal, inventoryType InventoryType) (*Paper, error)
}

// ComputeDesignOrderLine prices and weighs one design-order line from the current master data.
// Paper weight always comes from the Paper record, never from caller input.
func ComputeDesignOrderLine(ctx context.Context, designs DesignLookup, papers PaperLookup, in OrderLineInput) (DesignOrderLine, error) {
	if in.DesignID == "" {
		return DesignOrderLine{}, NewValidationError("designId", "is required")
	}
	if !in.Quantity.IsPositive() {
		return DesignOrderLine{}, NewValidationError("quantity", "must be greater than zero")
	}
	if !in.Paper.SizeInInch.IsPositive() {
		return DesignOrderLine{}, NewValidationError("paperUsed.sizeInInch", "must be greater than zero")
	}
	invType := in.Paper.InventoryType
	if invType == "" {
		invType = InventoryPaper
	}
	if !invType.Valid() {
		return DesignOrderLine{}, NewValidationError("paperUsed.inventoryType", fmt.Sprintf("unknown inventory type %q", invType))
	}

	paper, err := papers.FindPaper(ctx, in.Paper.SizeInInch, invType)
	if err != nil {
		return DesignOrderLine{}, err
	}
	design, err := designs.GetDesign(ctx, in.DesignID)
	if err != nil {
		return DesignOrderLine{}, err
	}

	// Each distinct stone contributes its per-piece weight once, independent of the
	// design stone's own quantity.
	stoneWeight := decimal.Zero
	stonesUsed := make([]StoneUsage, 0, len(design.DefaultStones))
	for _, ds := range design.DefaultStones {
		stoneWeight = stoneWeight.Add(stoneUnitWeight(ds.Stone))
		stonesUsed = append(stonesUsed, StoneUsage{
			StoneID:  ds.StoneID,
			Quantity: ds.Quantity.Mul(in.Quantity),
		})
	}

	unitPrice := decimal.Zero
	if len(design.Prices) > 0 {
		unitPrice = design.Prices[0].Price
	}

	return DesignOrderLine{
		DesignID: design.ID,
		Quantity: in.Quantity,
		PaperUsed: PaperUsed{
			SizeInInch:       paper.Width,
			InventoryType:    paper.InventoryType,
			PaperWeightPerPc: paper.WeightPerPiece,
		},
		StonesUsed:       stonesUsed,
		CalculatedWeight: paper.WeightPerPiece.Add(stoneWeight).Mul(in.Quantity),
		UnitPrice:        unitPrice,
		TotalPrice:       unitPrice.Mul(in.Quantity),
	}, nil
}

// stoneUnitWeight prefers WeightPerPiece and falls back to Quantity when it is unset or zero.
func stoneUnitWeight(s *Stone) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	if s.WeightPerPiece.IsPositive() {
		return s.WeightPerPiece
	}
	return s.Quantity
}

// OrderTotals are the aggregates derived from an order's design-order lines.
type OrderTotals struct {
	CalculatedWeight decimal.Decimal
	TotalCost        decimal.Decimal
}

// RecomputeOrderAggregates sums line weights and prices.
func RecomputeOrderAggregates(lines []DesignOrderLine) OrderTotals {
	totals := OrderTotals{CalculatedWeight: decimal.Zero, TotalCost: decimal.Zero}
	for _, l := range lines {
		totals.CalculatedWeight = totals.CalculatedWeight.Add(l.CalculatedWeight)
		totals.TotalCost = totals.TotalCost.Add(l.TotalPrice)
	}
	return totals
}

// DiscountResult holds the derived payment amounts of an order.
type DiscountResult struct {
	DiscountedAmount decimal.Decimal
	FinalAmount      decimal.Decimal
}

// ApplyDiscount derives the discount and final amount. Any type other than flat is
// treated as percentage. FinalAmount is not clamped and may be negative.
func ApplyDiscount(totalCost decimal.Decimal, discountType DiscountType, discountValue decimal.Decimal) DiscountResult {
	discounted := discountValue
	if discountType != DiscountFlat {
		discounted = totalCost.Mul(discountValue).Div(hundred)
	}
	return DiscountResult{
		DiscountedAmount: discounted,
		FinalAmount:      totalCost.Sub(discounted),
	}
}

// WeightReconciliation compares the weighed order against its calculated weight.
type WeightReconciliation struct {
	EffectiveFinalWeight  decimal.Decimal
	WeightDiscrepancy     decimal.Decimal
	DiscrepancyPercentage decimal.Decimal
}

// ReconcileWeight runs only when finalTotalWeight is supplied or the status is being set
// to completed; otherwise it reports ok=false and the stored fields stay untouched.
// Completion without a weighed value reconciles against calculatedWeight itself.
func ReconcileWeight(calculatedWeight decimal.Decimal, finalTotalWeight *decimal.Decimal, statusBeingSetTo *OrderStatus) (WeightReconciliation, bool) {
	var effective decimal.Decimal
	switch {
	case finalTotalWeight != nil:
		effective = *finalTotalWeight
	case statusBeingSetTo != nil && *statusBeingSetTo == OrderStatusCompleted:
		effective = calculatedWeight
	default:
		return WeightReconciliation{}, false
	}

	discrepancy := effective.Sub(calculatedWeight)
	pct := decimal.Zero
	if calculatedWeight.IsPositive() {
		pct = discrepancy.Div(calculatedWeight).Mul(hundred)
	}
	return WeightReconciliation{
		EffectiveFinalWeight:  effective,
		WeightDiscrepancy:     discrepancy,
		DiscrepancyPercentage: pct,
	}, true
}

// FinalizeOrder marks an outgoing order finalized. It is a no-op unless requested is true,
// the order is of type out and not yet finalized. It reports whether o changed.
func FinalizeOrder(o *Order, requested bool, now time.Time) bool {
	if !requested || o.IsFinalized || o.Type != OrderTypeOut {
		return false
	}
	o.IsFinalized = true
	at := now
	o.FinalizedAt = &at
	return true
}

var allowedStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusCompleted, OrderStatusCancelled},
}

// ValidateStatusTransition accepts from == to as a no-op and otherwise only the
// transitions out of pending.
func ValidateStatusTransition(from, to OrderStatus) error {
	if !to.Valid() {
		return NewValidationError("status", fmt.Sprintf("unknown status %q", to))
	}
	if from == to {
		return nil
	}
	for _, allowed := range allowedStatusTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, to)
}

// AppendUpdateHistory returns one entry per key of newFieldValues whose JSON encoding
// differs from the same key of old's JSON encoding. Keys are visited in sorted order.
// old must encode to a JSON object; a key missing from it compares as null.
func AppendUpdateHistory(old any, newFieldValues map[string]any, actorID string, now time.Time) ([]HistoryEntry, error) {
	raw, err := json.Marshal(old)
	if err != nil {
		return nil, fmt.Errorf("encode previous record: %w", err)
	}
	var oldFields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &oldFields); err != nil {
		return nil, fmt.Errorf("decode previous record: %w", err)
	}

	keys := make([]string, 0, len(newFieldValues))
	for k := range newFieldValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var entries []HistoryEntry
	for _, key := range keys {
		newRaw, err := json.Marshal(newFieldValues[key])
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", key, err)
		}
		oldRaw, ok := oldFields[key]
		if !ok {
			oldRaw = json.RawMessage("null")
		}
		if bytes.Equal(oldRaw, newRaw) {
			continue
		}
		entries = append(entries, HistoryEntry{
			Field:     key,
			OldValue:  oldRaw,
			NewValue:  newRaw,
			UpdatedBy: actorID,
			UpdatedAt: now,
		})
	}
	return entries, nil
}
