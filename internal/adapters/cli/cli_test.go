package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"inventory-orders/internal/app"
	"inventory-orders/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApp struct {
	app.ApplicationService

	filter  core.OrderFilter
	created app.CreateUserRequest
}

func (f *fakeApp) ListOrders(_ context.Context, filter core.OrderFilter) (*app.OrderListResult, error) {
	f.filter = filter
	return &app.OrderListResult{Orders: []core.Order{{
		ID: "o1", Type: core.OrderTypeOut, Status: core.OrderStatusPending, CustomerName: "Asha",
		CalculatedWeight: decimal.NewFromInt(220), FinalAmount: decimal.NewFromInt(450),
	}}}, nil
}

func (f *fakeApp) GetOrder(_ context.Context, id string) (*app.OrderResult, error) {
	if id != "o1" {
		return nil, core.NewNotFoundError("order", id)
	}
	return &app.OrderResult{Order: &core.Order{ID: "o1", Type: core.OrderTypeInternal}}, nil
}

func (f *fakeApp) ListStones(context.Context) ([]core.Stone, error) {
	return []core.Stone{{Number: "ST-1", Name: "Crystal", Quantity: decimal.NewFromInt(900)}}, nil
}

func (f *fakeApp) ListPapers(context.Context, *core.InventoryType) ([]core.Paper, error) {
	return []core.Paper{{Width: decimal.NewFromInt(9), InventoryType: core.InventoryTape, Quantity: decimal.NewFromInt(12)}}, nil
}

func (f *fakeApp) CreateUser(_ context.Context, req app.CreateUserRequest) (*app.UserResult, error) {
	f.created = req
	return &app.UserResult{ID: "u9", Username: req.Username, Role: req.Role}, nil
}

func TestRun_Orders(t *testing.T) {
	svc := &fakeApp{}
	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), svc, []string{"orders", "pending"}, nil, &out))
	require.NotNil(t, svc.filter.Status)
	assert.Equal(t, core.OrderStatusPending, *svc.filter.Status)
	assert.Contains(t, out.String(), "Asha")
	assert.Contains(t, out.String(), "450.00")
	assert.Contains(t, out.String(), "1 order(s)")
}

func TestRun_Order(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), &fakeApp{}, []string{"order", "o1"}, nil, &out))
	assert.Contains(t, out.String(), `"type": "internal"`)

	err := Run(context.Background(), &fakeApp{}, []string{"order", "missing"}, nil, &out)
	assert.True(t, core.IsNotFound(err))

	assert.ErrorIs(t, Run(context.Background(), &fakeApp{}, []string{"order"}, nil, &out), ErrUsage)
}

func TestRun_Stock(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), &fakeApp{}, []string{"stock"}, nil, &out))
	assert.Contains(t, out.String(), "Crystal")
	assert.Contains(t, out.String(), `9"`)
	assert.Contains(t, out.String(), "tape")
}

func TestRun_UserAdd(t *testing.T) {
	svc := &fakeApp{}
	var out bytes.Buffer

	err := Run(context.Background(), svc, []string{"useradd", "ravi", "ravi@example.com", "manager"}, strings.NewReader("s3cret-pass\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", svc.created.Password)
	assert.Equal(t, core.RoleManager, svc.created.Role)
	assert.Contains(t, out.String(), "Created manager user ravi")
}

func TestRun_Unknown(t *testing.T) {
	assert.ErrorIs(t, Run(context.Background(), &fakeApp{}, []string{"propose"}, nil, &bytes.Buffer{}), ErrUsage)
	assert.ErrorIs(t, Run(context.Background(), &fakeApp{}, nil, nil, &bytes.Buffer{}), ErrUsage)
}
