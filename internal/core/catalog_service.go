package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CatalogService manages the stone, paper and design master data that orders are priced from.
// It satisfies DesignLookup and PaperLookup.
type CatalogService interface {
	// Stones
	CreateStone(ctx context.Context, input StoneInput) (*Stone, error)
	GetStone(ctx context.Context, id string) (*Stone, error)
	ListStones(ctx context.Context) ([]Stone, error)

	// Papers, plastics and tapes
	CreatePaper(ctx context.Context, input PaperInput) (*Paper, error)
	ListPapers(ctx context.Context, inventoryType *InventoryType) ([]Paper, error)
	FindPaper(ctx context.Context, width decimal.Decimal, inventoryType InventoryType) (*Paper, error)

	// Designs
	CreateDesign(ctx context.Context, input DesignInput) (*Design, error)
	UpdateDesign(ctx context.Context, id string, input DesignInput) (*Design, error)
	// GetDesign returns the design with every DefaultStones[i].Stone expanded.
	GetDesign(ctx context.Context, id string) (*Design, error)
	ListDesigns(ctx context.Context) ([]Design, error)
}

type catalogService struct {
	pool *pgxpool.Pool
}

// NewCatalogService constructs a CatalogService backed by PostgreSQL.
func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ── Stones ───────────────────────────────────────────────────────────────────

const stoneColumns = `id, name, number, color, size, weight_per_piece, quantity, created_at`

func scanStone(row pgx.Row, st *Stone) error {
	return row.Scan(&st.ID, &st.Name, &st.Number, &st.Color, &st.Size, &st.WeightPerPiece, &st.Quantity, &st.CreatedAt)
}

func (s *catalogService) CreateStone(ctx context.Context, input StoneInput) (*Stone, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("name", "is required")
	}
	if input.WeightPerPiece.IsNegative() {
		return nil, NewValidationError("weightPerPiece", "must not be negative")
	}
	if input.Quantity.IsNegative() {
		return nil, NewValidationError("quantity", "must not be negative")
	}

	st := &Stone{}
	err := scanStone(s.pool.QueryRow(ctx, `
		INSERT INTO stones (id, name, number, color, size, weight_per_piece, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+stoneColumns,
		uuid.NewString(), input.Name, input.Number, input.Color, input.Size, input.WeightPerPiece, input.Quantity,
	), st)
	if err != nil {
		return nil, fmt.Errorf("create stone %q: %w", input.Name, err)
	}
	return st, nil
}

func (s *catalogService) GetStone(ctx context.Context, id string) (*Stone, error) {
	st := &Stone{}
	err := scanStone(s.pool.QueryRow(ctx, `SELECT `+stoneColumns+` FROM stones WHERE id = $1`, id), st)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("stone", id)
		}
		return nil, fmt.Errorf("get stone %s: %w", id, err)
	}
	return st, nil
}

func (s *catalogService) ListStones(ctx context.Context) ([]Stone, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+stoneColumns+` FROM stones ORDER BY name, number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stones: %w", err)
	}
	defer rows.Close()

	stones := []Stone{}
	for rows.Next() {
		var st Stone
		if err := scanStone(rows, &st); err != nil {
			return nil, fmt.Errorf("failed to scan stone: %w", err)
		}
		stones = append(stones, st)
	}
	return stones, rows.Err()
}

// ── Papers ───────────────────────────────────────────────────────────────────

const paperColumns = `id, width, inventory_type, weight_per_piece, quantity, created_at`

func scanPaper(row pgx.Row, p *Paper) error {
	return row.Scan(&p.ID, &p.Width, &p.InventoryType, &p.WeightPerPiece, &p.Quantity, &p.CreatedAt)
}

func (s *catalogService) CreatePaper(ctx context.Context, input PaperInput) (*Paper, error) {
	if !input.Width.IsPositive() {
		return nil, NewValidationError("width", "must be greater than zero")
	}
	if input.InventoryType == "" {
		input.InventoryType = InventoryPaper
	}
	if !input.InventoryType.Valid() {
		return nil, NewValidationError("inventoryType", fmt.Sprintf("unknown inventory type %q", input.InventoryType))
	}
	if input.WeightPerPiece.IsNegative() {
		return nil, NewValidationError("weightPerPiece", "must not be negative")
	}
	if input.Quantity.IsNegative() {
		return nil, NewValidationError("quantity", "must not be negative")
	}

	p := &Paper{}
	err := scanPaper(s.pool.QueryRow(ctx, `
		INSERT INTO papers (id, width, inventory_type, weight_per_piece, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+paperColumns,
		uuid.NewString(), input.Width, input.InventoryType, input.WeightPerPiece, input.Quantity,
	), p)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewValidationError("width", fmt.Sprintf("%s of width %s already exists", input.InventoryType, input.Width))
		}
		return nil, fmt.Errorf("create paper: %w", err)
	}
	return p, nil
}

func (s *catalogService) ListPapers(ctx context.Context, inventoryType *InventoryType) ([]Paper, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+paperColumns+`
		FROM papers
		WHERE ($1::text IS NULL OR inventory_type = $1)
		ORDER BY inventory_type, width`,
		inventoryType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers: %w", err)
	}
	defer rows.Close()

	papers := []Paper{}
	for rows.Next() {
		var p Paper
		if err := scanPaper(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

func (s *catalogService) FindPaper(ctx context.Context, width decimal.Decimal, inventoryType InventoryType) (*Paper, error) {
	p := &Paper{}
	err := scanPaper(s.pool.QueryRow(ctx, `
		SELECT `+paperColumns+`
		FROM papers
		WHERE width = $1 AND inventory_type = $2`,
		width, inventoryType,
	), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("paper", fmt.Sprintf("%s/%s", inventoryType, width))
		}
		return nil, fmt.Errorf("find paper: %w", err)
	}
	return p, nil
}

// ── Designs ──────────────────────────────────────────────────────────────────

const designColumns = `id, number, name, prices, default_stones, created_at, updated_at`

func scanDesign(row pgx.Row, d *Design) error {
	return row.Scan(&d.ID, &d.Number, &d.Name, &d.Prices, &d.DefaultStones, &d.CreatedAt, &d.UpdatedAt)
}

// validateDesign checks the input and confirms every referenced stone exists.
func (s *catalogService) validateDesign(ctx context.Context, input DesignInput) ([]byte, []byte, error) {
	if strings.TrimSpace(input.Number) == "" {
		return nil, nil, NewValidationError("number", "is required")
	}
	for i, p := range input.Prices {
		if p.Price.IsNegative() {
			return nil, nil, NewValidationError(fmt.Sprintf("prices[%d].price", i), "must not be negative")
		}
	}
	stones := make([]DesignStone, 0, len(input.DefaultStones))
	for i, ds := range input.DefaultStones {
		if ds.StoneID == "" {
			return nil, nil, NewValidationError(fmt.Sprintf("defaultStones[%d].stoneId", i), "is required")
		}
		if ds.Quantity.IsNegative() {
			return nil, nil, NewValidationError(fmt.Sprintf("defaultStones[%d].quantity", i), "must not be negative")
		}
		if _, err := s.GetStone(ctx, ds.StoneID); err != nil {
			return nil, nil, err
		}
		stones = append(stones, DesignStone{StoneID: ds.StoneID, Quantity: ds.Quantity})
	}

	prices := input.Prices
	if prices == nil {
		prices = []DesignPrice{}
	}
	pricesJSON, err := json.Marshal(prices)
	if err != nil {
		return nil, nil, fmt.Errorf("encode prices: %w", err)
	}
	stonesJSON, err := json.Marshal(stones)
	if err != nil {
		return nil, nil, fmt.Errorf("encode default stones: %w", err)
	}
	return pricesJSON, stonesJSON, nil
}

func (s *catalogService) CreateDesign(ctx context.Context, input DesignInput) (*Design, error) {
	pricesJSON, stonesJSON, err := s.validateDesign(ctx, input)
	if err != nil {
		return nil, err
	}

	d := &Design{}
	err = scanDesign(s.pool.QueryRow(ctx, `
		INSERT INTO designs (id, number, name, prices, default_stones)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb)
		RETURNING `+designColumns,
		uuid.NewString(), input.Number, input.Name, pricesJSON, stonesJSON,
	), d)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewValidationError("number", fmt.Sprintf("design %q already exists", input.Number))
		}
		return nil, fmt.Errorf("create design %q: %w", input.Number, err)
	}
	return s.expandStones(ctx, d)
}

func (s *catalogService) UpdateDesign(ctx context.Context, id string, input DesignInput) (*Design, error) {
	pricesJSON, stonesJSON, err := s.validateDesign(ctx, input)
	if err != nil {
		return nil, err
	}

	d := &Design{}
	err = scanDesign(s.pool.QueryRow(ctx, `
		UPDATE designs
		SET number = $2, name = $3, prices = $4::jsonb, default_stones = $5::jsonb, updated_at = now()
		WHERE id = $1
		RETURNING `+designColumns,
		id, input.Number, input.Name, pricesJSON, stonesJSON,
	), d)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("design", id)
		}
		if isUniqueViolation(err) {
			return nil, NewValidationError("number", fmt.Sprintf("design %q already exists", input.Number))
		}
		return nil, fmt.Errorf("update design %s: %w", id, err)
	}
	return s.expandStones(ctx, d)
}

func (s *catalogService) GetDesign(ctx context.Context, id string) (*Design, error) {
	d := &Design{}
	err := scanDesign(s.pool.QueryRow(ctx, `SELECT `+designColumns+` FROM designs WHERE id = $1`, id), d)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("design", id)
		}
		return nil, fmt.Errorf("get design %s: %w", id, err)
	}
	return s.expandStones(ctx, d)
}

func (s *catalogService) ListDesigns(ctx context.Context) ([]Design, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+designColumns+` FROM designs ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query designs: %w", err)
	}
	defer rows.Close()

	designs := []Design{}
	for rows.Next() {
		var d Design
		if err := scanDesign(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan design: %w", err)
		}
		designs = append(designs, d)
	}
	return designs, rows.Err()
}

// expandStones loads the stones referenced by d.DefaultStones in one query.
// A stone deleted since the design was saved stays nil.
func (s *catalogService) expandStones(ctx context.Context, d *Design) (*Design, error) {
	if len(d.DefaultStones) == 0 {
		return d, nil
	}
	ids := make([]string, 0, len(d.DefaultStones))
	for _, ds := range d.DefaultStones {
		ids = append(ids, ds.StoneID)
	}

	rows, err := s.pool.Query(ctx, `SELECT `+stoneColumns+` FROM stones WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query design stones: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*Stone, len(ids))
	for rows.Next() {
		st := &Stone{}
		if err := scanStone(rows, st); err != nil {
			return nil, fmt.Errorf("failed to scan design stone: %w", err)
		}
		byID[st.ID] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read design stones: %w", err)
	}

	for i := range d.DefaultStones {
		d.DefaultStones[i].Stone = byID[d.DefaultStones[i].StoneID]
	}
	return d, nil
}
