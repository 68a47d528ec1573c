package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InventoryService records stock adjustments against stones and papers.
type InventoryService interface {
	// AddEntry atomically applies the quantity change and appends an inventory entry.
	// A change that would drive the quantity below zero is rejected.
	AddEntry(ctx context.Context, input InventoryEntryInput) (*InventoryEntry, error)
	// ListEntries returns entries newest first.
	ListEntries(ctx context.Context, filter InventoryEntryFilter) ([]InventoryEntry, error)
}

type inventoryService struct {
	pool *pgxpool.Pool
}

func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

// inventoryTables maps each kind to its table. Values are constants, never user input.
var inventoryTables = map[InventoryKind]string{
	InventoryKindStone: "stones",
	InventoryKindPaper: "papers",
}

func (s *inventoryService) AddEntry(ctx context.Context, input InventoryEntryInput) (*InventoryEntry, error) {
	table, ok := inventoryTables[input.ItemKind]
	if !ok {
		return nil, NewValidationError("kind", fmt.Sprintf("unknown inventory kind %q", input.ItemKind))
	}
	if input.ItemID == "" {
		return nil, NewValidationError("itemId", "is required")
	}
	if input.QuantityChange.IsZero() {
		return nil, NewValidationError("quantityChange", "must not be zero")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The guard in the WHERE clause makes the increment and the non-negative check one statement.
	var after decimal.Decimal
	err = tx.QueryRow(ctx, `
		UPDATE `+table+`
		SET quantity = quantity + $2
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING quantity`,
		input.ItemID, input.QuantityChange,
	).Scan(&after)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to adjust %s quantity: %w", input.ItemKind, err)
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, input.ItemID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", input.ItemKind, err)
		}
		if !exists {
			return nil, NewNotFoundError(string(input.ItemKind), input.ItemID)
		}
		return nil, NewValidationError("quantityChange", "would make the quantity negative")
	}

	e := &InventoryEntry{}
	err = tx.QueryRow(ctx, `
		INSERT INTO inventory_entries (id, item_kind, item_id, quantity_change, quantity_after, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, item_kind, item_id, quantity_change, quantity_after, note, created_by, created_at`,
		uuid.NewString(), input.ItemKind, input.ItemID, input.QuantityChange, after, input.Note, input.ActorID,
	).Scan(&e.ID, &e.ItemKind, &e.ItemID, &e.QuantityChange, &e.QuantityAfter, &e.Note, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert inventory entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit inventory entry: %w", err)
	}
	return e, nil
}

func (s *inventoryService) ListEntries(ctx context.Context, filter InventoryEntryFilter) ([]InventoryEntry, error) {
	if filter.ItemKind != "" && !filter.ItemKind.Valid() {
		return nil, NewValidationError("kind", fmt.Sprintf("unknown inventory kind %q", filter.ItemKind))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, item_kind, item_id, quantity_change, quantity_after, note, created_by, created_at
		FROM inventory_entries
		WHERE ($1::text = '' OR item_kind = $1)
		  AND ($2::text = '' OR item_id = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, string(filter.ItemKind), filter.ItemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory entries: %w", err)
	}
	defer rows.Close()

	entries := []InventoryEntry{}
	for rows.Next() {
		var e InventoryEntry
		if err := rows.Scan(&e.ID, &e.ItemKind, &e.ItemID, &e.QuantityChange, &e.QuantityAfter,
			&e.Note, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
