package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type supplierService struct {
	pool *pgxpool.Pool
}

// NewSupplierService constructs a SupplierService backed by PostgreSQL.
func NewSupplierService(pool *pgxpool.Pool) SupplierService {
	return &supplierService{pool: pool}
}

const supplierColumns = `id, name, contact_person, phone, email, address, is_active, created_at`

func scanSupplier(row pgx.Row, v *Supplier) error {
	return row.Scan(&v.ID, &v.Name, &v.ContactPerson, &v.Phone, &v.Email, &v.Address, &v.IsActive, &v.CreatedAt)
}

// CreateSupplier inserts a new supplier. Empty optional fields are stored as NULL.
func (s *supplierService) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("name", "is required")
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	v := &Supplier{}
	err := scanSupplier(s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (id, name, contact_person, phone, email, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+supplierColumns,
		uuid.NewString(), input.Name, toPtr(input.ContactPerson), toPtr(input.Phone),
		toPtr(input.Email), toPtr(input.Address),
	), v)
	if err != nil {
		return nil, fmt.Errorf("create supplier %q: %w", input.Name, err)
	}
	return v, nil
}

// ListSuppliers returns all active suppliers, ordered by name.
func (s *supplierService) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE is_active = true
		ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("get suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := []Supplier{}
	for rows.Next() {
		var v Supplier
		if err := scanSupplier(rows, &v); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, v)
	}
	return suppliers, rows.Err()
}

// GetSupplier returns a supplier by id.
func (s *supplierService) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	v := &Supplier{}
	err := scanSupplier(s.pool.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id), v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("supplier", id)
		}
		return nil, fmt.Errorf("get supplier %s: %w", id, err)
	}
	return v, nil
}
