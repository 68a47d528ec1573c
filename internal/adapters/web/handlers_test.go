package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inventory-orders/internal/app"
	"inventory-orders/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret-with-enough-length-0123456789"

// fakeApp implements the subset of app.ApplicationService the tests exercise.
// Calling any other method panics through the nil embedded interface.
type fakeApp struct {
	app.ApplicationService

	healthErr   error
	createReq   *app.CreateOrderRequest
	updateReq   *app.UpdateOrderRequest
	orderErr    error
	listFilter  *core.OrderFilter
	entryInput  *core.InventoryEntryInput
	createdUser *app.CreateUserRequest
}

func (f *fakeApp) Health(context.Context) error { return f.healthErr }

func (f *fakeApp) AuthenticateUser(_ context.Context, username, password string) (*app.UserSession, error) {
	if username == "meera" && password == "correct horse" {
		return &app.UserSession{UserID: "u1", Username: "meera", Role: core.RoleManager}, nil
	}
	return nil, core.ErrInvalidCredentials
}

func (f *fakeApp) GetUser(_ context.Context, id string) (*app.UserResult, error) {
	return &app.UserResult{ID: id, Username: "meera", Role: core.RoleManager, IsActive: true}, nil
}

func (f *fakeApp) CreateUser(_ context.Context, req app.CreateUserRequest) (*app.UserResult, error) {
	f.createdUser = &req
	return &app.UserResult{ID: "u9", Username: req.Username, Email: req.Email, Role: req.Role, IsActive: true}, nil
}

func (f *fakeApp) CreateOrder(_ context.Context, req app.CreateOrderRequest) (*app.OrderResult, error) {
	f.createReq = &req
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &app.OrderResult{Order: &core.Order{
		ID:        "o1",
		Type:      req.Order.Type,
		Status:    core.OrderStatusPending,
		TotalCost: decimal.NewFromInt(500),
		CreatedBy: req.ActorID,
	}}, nil
}

func (f *fakeApp) UpdateOrder(_ context.Context, req app.UpdateOrderRequest) (*app.OrderResult, error) {
	f.updateReq = &req
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &app.OrderResult{Order: &core.Order{ID: req.OrderID, Status: core.OrderStatusCompleted}}, nil
}

func (f *fakeApp) ListOrders(_ context.Context, filter core.OrderFilter) (*app.OrderListResult, error) {
	f.listFilter = &filter
	return &app.OrderListResult{}, nil
}

func (f *fakeApp) AddInventoryEntry(_ context.Context, input core.InventoryEntryInput) (*core.InventoryEntry, error) {
	f.entryInput = &input
	return &core.InventoryEntry{ID: "e1", ItemKind: input.ItemKind, ItemID: input.ItemID, QuantityChange: input.QuantityChange}, nil
}

func newTestServer(t *testing.T, svc *fakeApp) http.Handler {
	t.Helper()
	return NewHandler(svc, Options{JWTSecret: testSecret, JWTExpiry: time.Hour}, zap.NewNop())
}

// authCookie signs a session cookie for the given role.
func authCookie(t *testing.T, role core.Role) *http.Cookie {
	t.Helper()
	h := &Handler{jwtSecret: testSecret, jwtExpiry: time.Hour}
	signed, err := h.signToken(&app.UserSession{UserID: "u-" + string(role), Username: string(role), Role: role}, time.Now())
	require.NoError(t, err)
	return &http.Cookie{Name: authCookieName, Value: signed}
}

func doRequest(t *testing.T, srv http.Handler, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	svc := &fakeApp{}
	srv := newTestServer(t, svc)

	rec := doRequest(t, srv, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	svc.healthErr = errors.New("down")
	rec = doRequest(t, srv, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t, &fakeApp{})

	rec := doRequest(t, srv, http.MethodPost, "/api/auth/login", `{"username":"meera","password":"correct horse"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, authCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	me := doRequest(t, srv, http.MethodGet, "/api/auth/me", "", cookies[0])
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"id":"u1"`)

	rec = doRequest(t, srv, http.MethodPost, "/api/auth/login", `{"username":"meera","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/auth/login", `{"username":"meera"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password", decodeError(t, rec).Field)
}

func TestRequireAuth(t *testing.T) {
	srv := newTestServer(t, &fakeApp{})

	rec := doRequest(t, srv, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/orders", "", &http.Cookie{Name: authCookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := &Handler{jwtSecret: "another-secret", jwtExpiry: time.Hour}
	forged, err := other.signToken(&app.UserSession{UserID: "u1", Role: core.RoleAdmin}, time.Now())
	require.NoError(t, err)
	rec = doRequest(t, srv, http.MethodGet, "/api/orders", "", &http.Cookie{Name: authCookieName, Value: forged})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := (&Handler{jwtSecret: testSecret, jwtExpiry: time.Minute}).signToken(
		&app.UserSession{UserID: "u1", Role: core.RoleAdmin}, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	rec = doRequest(t, srv, http.MethodGet, "/api/orders", "", &http.Cookie{Name: authCookieName, Value: expired})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRolePolicy(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		role   core.Role
		want   int
	}{
		{"employee creates order", http.MethodPost, "/api/orders", `{"type":"internal","designId":"D1"}`, core.RoleEmployee, http.StatusCreated},
		{"employee cannot update order", http.MethodPut, "/api/orders/o1", `{"notes":"x"}`, core.RoleEmployee, http.StatusForbidden},
		{"manager updates order", http.MethodPut, "/api/orders/o1", `{"notes":"x"}`, core.RoleManager, http.StatusOK},
		{"admin updates order", http.MethodPut, "/api/orders/o1", `{"notes":"x"}`, core.RoleAdmin, http.StatusOK},
		{"employee cannot adjust inventory", http.MethodPost, "/api/inventory/stones/S1/entries", `{"quantityChange":5}`, core.RoleEmployee, http.StatusForbidden},
		{"manager cannot create users", http.MethodPost, "/api/users", `{"username":"ravi","email":"r@example.com","password":"longenough","role":"employee"}`, core.RoleManager, http.StatusForbidden},
		{"admin creates users", http.MethodPost, "/api/users", `{"username":"ravi","email":"r@example.com","password":"longenough","role":"employee"}`, core.RoleAdmin, http.StatusCreated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeApp{})
			rec := doRequest(t, srv, tc.method, tc.path, tc.body, authCookie(t, tc.role))
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)
			}
		})
	}
}

func TestCreateOrder_DesignOrders(t *testing.T) {
	svc := &fakeApp{}
	srv := newTestServer(t, svc)

	body := `{
		"type": "out",
		"customerName": "Asha",
		"phone": "99",
		"designOrders": [
			{"designId": "D1", "quantity": 10, "paperUsed": {"sizeInInch": "9", "paperWeightPerPc": 999}},
			{"designId": "D2", "quantity": "2.5", "paperUsed": {"sizeInInch": 12, "inventoryType": "tape"}}
		],
		"discountType": "flat",
		"discountValue": 50,
		"isFinalized": true
	}`
	rec := doRequest(t, srv, http.MethodPost, "/api/orders", body, authCookie(t, core.RoleEmployee))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NotNil(t, svc.createReq)
	assert.Equal(t, "u-employee", svc.createReq.ActorID)
	in := svc.createReq.Order
	assert.Equal(t, core.OrderTypeOut, in.Type)
	assert.Equal(t, core.DiscountFlat, in.DiscountType)
	assert.True(t, in.DiscountValue.Equal(decimal.NewFromInt(50)))
	assert.True(t, in.IsFinalized)
	require.Len(t, in.Lines, 2)
	assert.Equal(t, "D1", in.Lines[0].DesignID)
	assert.True(t, in.Lines[0].Paper.SizeInInch.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, core.InventoryType(""), in.Lines[0].Paper.InventoryType)
	assert.True(t, in.Lines[1].Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, core.InventoryTape, in.Lines[1].Paper.InventoryType)

	var order core.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "o1", order.ID)
	assert.True(t, order.TotalCost.Equal(decimal.NewFromInt(500)))
	assert.Contains(t, rec.Body.String(), `"totalCost":"500"`)
}

func TestCreateOrder_LegacySingleDesign(t *testing.T) {
	svc := &fakeApp{}
	srv := newTestServer(t, svc)

	body := `{"type":"internal","designId":"D1","quantity":4,"paperUsed":{"sizeInInch":9,"inventoryType":"plastic"}}`
	rec := doRequest(t, srv, http.MethodPost, "/api/orders", body, authCookie(t, core.RoleManager))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	lines := svc.createReq.Order.Lines
	require.Len(t, lines, 1)
	assert.Equal(t, "D1", lines[0].DesignID)
	assert.True(t, lines[0].Quantity.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, core.InventoryPlastic, lines[0].Paper.InventoryType)
}

func TestCreateOrder_BodyValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing type", `{"designId":"D1"}`, "type"},
		{"bad type", `{"type":"wholesale"}`, "type"},
		{"bad discount type", `{"type":"out","discountType":"bogus"}`, "discountType"},
		{"line without design", `{"type":"out","designOrders":[{"quantity":1,"paperUsed":{"sizeInInch":9}}]}`, "designOrders[0].designId"},
		{"bad inventory type", `{"type":"out","designOrders":[{"designId":"D1","quantity":1,"paperUsed":{"sizeInInch":9,"inventoryType":"cloth"}}]}`, "designOrders[0].paperUsed.inventoryType"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeApp{}
			rec := doRequest(t, newTestServer(t, svc), http.MethodPost, "/api/orders", tc.body, authCookie(t, core.RoleAdmin))
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			resp := decodeError(t, rec)
			assert.Equal(t, "VALIDATION_ERROR", resp.Code)
			assert.Equal(t, tc.field, resp.Field)
			assert.Nil(t, svc.createReq)
		})
	}

	rec := doRequest(t, newTestServer(t, &fakeApp{}), http.MethodPost, "/api/orders", `{"type":`, authCookie(t, core.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", core.NewValidationError("designOrders[0].quantity", "must be greater than zero"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", core.NewNotFoundError("design", "D404"), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("compute line: %w", core.NewNotFoundError("paper", "paper/11")), http.StatusNotFound, "NOT_FOUND"},
		{"invalid transition", fmt.Errorf("%w: completed to pending", core.ErrInvalidStatusTransition), http.StatusConflict, "INVALID_TRANSITION"},
		{"locked", core.ErrOrderLocked, http.StatusConflict, "ORDER_LOCKED"},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeApp{orderErr: tc.err}
			rec := doRequest(t, newTestServer(t, svc), http.MethodPut, "/api/orders/o1", `{"status":"pending"}`, authCookie(t, core.RoleAdmin))
			assert.Equal(t, tc.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tc.code, resp.Code)
			assert.NotEmpty(t, resp.RequestID)
			if tc.code == "INTERNAL_ERROR" {
				assert.NotContains(t, resp.Error, "connection refused")
			}
		})
	}
}

func TestUpdateOrder_PassesOnlyPresentFields(t *testing.T) {
	svc := &fakeApp{}
	srv := newTestServer(t, svc)

	rec := doRequest(t, srv, http.MethodPut, "/api/orders/o7", `{"status":"completed","finalTotalWeight":"1250.5"}`, authCookie(t, core.RoleManager))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req := svc.updateReq
	require.NotNil(t, req)
	assert.Equal(t, "o7", req.OrderID)
	assert.Equal(t, "u-manager", req.ActorID)
	require.NotNil(t, req.Changes.Status)
	assert.Equal(t, core.OrderStatusCompleted, *req.Changes.Status)
	require.NotNil(t, req.Changes.FinalTotalWeight)
	assert.True(t, req.Changes.FinalTotalWeight.Equal(decimal.RequireFromString("1250.5")))
	assert.Nil(t, req.Changes.Lines)
	assert.Nil(t, req.Changes.DiscountType)
	assert.Nil(t, req.Changes.DiscountValue)
	assert.Nil(t, req.Changes.IsFinalized)
	assert.Nil(t, req.Changes.Notes)

	rec = doRequest(t, srv, http.MethodPut, "/api/orders/o7", `{"designOrders":[]}`, authCookie(t, core.RoleManager))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, svc.updateReq.Changes.Lines)
	assert.Empty(t, svc.updateReq.Changes.Lines)
}

func TestListOrders_QueryParsing(t *testing.T) {
	svc := &fakeApp{}
	srv := newTestServer(t, svc)

	rec := doRequest(t, srv, http.MethodGet, "/api/orders?status=pending&type=out&limit=1000&offset=20", "", authCookie(t, core.RoleEmployee))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	require.NotNil(t, svc.listFilter)
	assert.Equal(t, core.OrderStatusPending, *svc.listFilter.Status)
	assert.Equal(t, core.OrderTypeOut, *svc.listFilter.Type)
	assert.Equal(t, maxOrderListLimit, svc.listFilter.Limit)
	assert.Equal(t, 20, svc.listFilter.Offset)

	rec = doRequest(t, srv, http.MethodGet, "/api/orders?status=shipped", "", authCookie(t, core.RoleEmployee))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decodeError(t, rec).Field)
}

func TestAddInventoryEntry(t *testing.T) {
	svc := &fakeApp{}
	srv := newTestServer(t, svc)

	rec := doRequest(t, srv, http.MethodPost, "/api/inventory/papers/P9/entries", `{"quantityChange":-25,"note":"cut"}`, authCookie(t, core.RoleAdmin))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, svc.entryInput)
	assert.Equal(t, core.InventoryKindPaper, svc.entryInput.ItemKind)
	assert.Equal(t, "P9", svc.entryInput.ItemID)
	assert.True(t, svc.entryInput.QuantityChange.Equal(decimal.NewFromInt(-25)))
	assert.Equal(t, "u-admin", svc.entryInput.ActorID)

	rec = doRequest(t, srv, http.MethodPost, "/api/inventory/glue/G1/entries", `{"quantityChange":1}`, authCookie(t, core.RoleAdmin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestBodyLimit(t *testing.T) {
	srv := NewHandler(&fakeApp{}, Options{JWTSecret: testSecret, BodyLimit: 64}, zap.NewNop())
	big := fmt.Sprintf(`{"type":"out","notes":%q}`, strings.Repeat("x", 256))

	rec := doRequest(t, srv, http.MethodPost, "/api/orders", big, authCookie(t, core.RoleAdmin))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "REQUEST_TOO_LARGE", decodeError(t, rec).Code)
}

func TestSchemaEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeApp{})

	rec := doRequest(t, srv, http.MethodGet, "/api/schemas/create-order", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var schema struct {
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schema))
	assert.Contains(t, schema.Required, "type")
	assert.NotContains(t, schema.Required, "notes")
	assert.Contains(t, schema.Properties, "designOrders")
	assert.Contains(t, string(schema.Properties["type"]), `"out"`)
	assert.Contains(t, string(schema.Properties["discountValue"]), `"number"`)

	rec = doRequest(t, srv, http.MethodGet, "/api/schemas/update-order", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/schemas/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	srv := NewHandler(&fakeApp{}, Options{JWTSecret: testSecret, AllowedOrigins: []string{"https://app.example.com"}}, zap.NewNop())

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
