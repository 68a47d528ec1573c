package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderStore persists orders. Update replaces the mutable columns and appends history
// to the stored log without rewriting earlier entries.
type OrderStore interface {
	Create(ctx context.Context, o *Order) (*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, o *Order, history []HistoryEntry) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]Order, error)
}

type pgOrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore constructs an OrderStore backed by PostgreSQL.
func NewOrderStore(pool *pgxpool.Pool) OrderStore {
	return &pgOrderStore{pool: pool}
}

const orderColumns = `
	id, type, customer_id, customer_name, phone, design_orders,
	calculated_weight, total_cost, discount_type, discount_value, discounted_amount, final_amount,
	final_total_weight, weight_discrepancy, discrepancy_percentage,
	status, is_finalized, finalized_at, notes, update_history, created_by, created_at, updated_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID, &o.Type, &o.CustomerID, &o.CustomerName, &o.Phone, &o.DesignOrders,
		&o.CalculatedWeight, &o.TotalCost, &o.DiscountType, &o.DiscountValue, &o.DiscountedAmount, &o.FinalAmount,
		&o.FinalTotalWeight, &o.WeightDiscrepancy, &o.DiscrepancyPercentage,
		&o.Status, &o.IsFinalized, &o.FinalizedAt, &o.Notes, &o.UpdateHistory, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
}

func encodeJSONB(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte("[]"), nil
	}
	return b, nil
}

func (s *pgOrderStore) Create(ctx context.Context, o *Order) (*Order, error) {
	lines, err := encodeJSONB(o.DesignOrders)
	if err != nil {
		return nil, fmt.Errorf("encode design orders: %w", err)
	}
	history, err := encodeJSONB(o.UpdateHistory)
	if err != nil {
		return nil, fmt.Errorf("encode update history: %w", err)
	}

	out := &Order{}
	err = scanOrder(s.pool.QueryRow(ctx, `
		INSERT INTO orders (
			id, type, customer_id, customer_name, phone, design_orders,
			calculated_weight, total_cost, discount_type, discount_value, discounted_amount, final_amount,
			final_total_weight, weight_discrepancy, discrepancy_percentage,
			status, is_finalized, finalized_at, notes, update_history, created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6::jsonb,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18, $19, $20::jsonb, $21, $22, $23
		)
		RETURNING `+orderColumns,
		o.ID, o.Type, o.CustomerID, o.CustomerName, o.Phone, lines,
		o.CalculatedWeight, o.TotalCost, o.DiscountType, o.DiscountValue, o.DiscountedAmount, o.FinalAmount,
		o.FinalTotalWeight, o.WeightDiscrepancy, o.DiscrepancyPercentage,
		o.Status, o.IsFinalized, o.FinalizedAt, o.Notes, history, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	), out)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	return out, nil
}

func (s *pgOrderStore) Get(ctx context.Context, id string) (*Order, error) {
	o := &Order{}
	err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("order", id)
		}
		return nil, fmt.Errorf("failed to fetch order %s: %w", id, err)
	}
	return o, nil
}

func (s *pgOrderStore) Update(ctx context.Context, o *Order, history []HistoryEntry) (*Order, error) {
	lines, err := encodeJSONB(o.DesignOrders)
	if err != nil {
		return nil, fmt.Errorf("encode design orders: %w", err)
	}
	appended, err := encodeJSONB(history)
	if err != nil {
		return nil, fmt.Errorf("encode update history: %w", err)
	}

	out := &Order{}
	err = scanOrder(s.pool.QueryRow(ctx, `
		UPDATE orders SET
			customer_id = $2, customer_name = $3, phone = $4, design_orders = $5::jsonb,
			calculated_weight = $6, total_cost = $7,
			discount_type = $8, discount_value = $9, discounted_amount = $10, final_amount = $11,
			final_total_weight = $12, weight_discrepancy = $13, discrepancy_percentage = $14,
			status = $15, is_finalized = $16, finalized_at = $17, notes = $18,
			update_history = update_history || $19::jsonb,
			updated_at = $20
		WHERE id = $1
		RETURNING `+orderColumns,
		o.ID, o.CustomerID, o.CustomerName, o.Phone, lines,
		o.CalculatedWeight, o.TotalCost,
		o.DiscountType, o.DiscountValue, o.DiscountedAmount, o.FinalAmount,
		o.FinalTotalWeight, o.WeightDiscrepancy, o.DiscrepancyPercentage,
		o.Status, o.IsFinalized, o.FinalizedAt, o.Notes,
		appended,
		o.UpdatedAt,
	), out)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("order", o.ID)
		}
		return nil, fmt.Errorf("failed to update order %s: %w", o.ID, err)
	}
	return out, nil
}

func (s *pgOrderStore) List(ctx context.Context, filter OrderFilter) ([]Order, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR type = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, filter.Status, filter.Type, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
