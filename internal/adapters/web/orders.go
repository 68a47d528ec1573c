package web

import (
	"net/http"
	"strconv"

	"inventory-orders/internal/app"
	"inventory-orders/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	defaultOrderListLimit = 50
	maxOrderListLimit     = 200
)

// paperUsedBody selects the paper for a design-order line. Any client-sent
// paperWeightPerPc is ignored; the weight always comes from the paper record.
type paperUsedBody struct {
	SizeInInch    decimal.Decimal `json:"sizeInInch" jsonschema_description:"Paper width in inches; must be positive"`
	InventoryType string          `json:"inventoryType,omitempty" validate:"omitempty,oneof=paper plastic tape" jsonschema:"enum=paper,enum=plastic,enum=tape" jsonschema_description:"Defaults to paper"`
}

type designOrderBody struct {
	DesignID  string          `json:"designId" validate:"required" jsonschema_description:"Design to produce"`
	Quantity  decimal.Decimal `json:"quantity" jsonschema_description:"Pieces to produce; must be positive"`
	PaperUsed paperUsedBody   `json:"paperUsed"`
}

// createOrderBody is the POST /api/orders payload. The legacy single-design form
// (designId, quantity, paperUsed) is accepted when designOrders is absent.
type createOrderBody struct {
	Type             string            `json:"type" validate:"required,oneof=internal out" jsonschema:"enum=internal,enum=out"`
	CustomerID       *string           `json:"customerId,omitempty" jsonschema_description:"Fills customerName and phone from the customer record when they are absent"`
	CustomerName     string            `json:"customerName,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	DesignOrders     []designOrderBody `json:"designOrders,omitempty" validate:"omitempty,dive"`
	DesignID         string            `json:"designId,omitempty" jsonschema_description:"Legacy single-design form"`
	Quantity         *decimal.Decimal  `json:"quantity,omitempty" jsonschema_description:"Legacy single-design form"`
	PaperUsed        *paperUsedBody    `json:"paperUsed,omitempty" jsonschema_description:"Legacy single-design form"`
	DiscountType     string            `json:"discountType,omitempty" validate:"omitempty,oneof=percentage flat" jsonschema:"enum=percentage,enum=flat"`
	DiscountValue    decimal.Decimal   `json:"discountValue,omitempty"`
	FinalTotalWeight *decimal.Decimal  `json:"finalTotalWeight,omitempty"`
	IsFinalized      bool              `json:"isFinalized,omitempty" jsonschema_description:"Only honored for type=out"`
	Notes            string            `json:"notes,omitempty"`
}

// updateOrderBody is the PUT /api/orders/{id} payload. Absent fields are left untouched.
type updateOrderBody struct {
	CustomerID       *string           `json:"customerId,omitempty"`
	CustomerName     *string           `json:"customerName,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	DesignOrders     []designOrderBody `json:"designOrders,omitempty" validate:"omitempty,dive" jsonschema_description:"Replaces every line; weight and cost are recomputed"`
	DiscountType     *string           `json:"discountType,omitempty" validate:"omitempty,oneof=percentage flat" jsonschema:"enum=percentage,enum=flat"`
	DiscountValue    *decimal.Decimal  `json:"discountValue,omitempty"`
	FinalTotalWeight *decimal.Decimal  `json:"finalTotalWeight,omitempty"`
	Status           *string           `json:"status,omitempty" validate:"omitempty,oneof=pending completed cancelled" jsonschema:"enum=pending,enum=completed,enum=cancelled"`
	IsFinalized      *bool             `json:"isFinalized,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
}

func (b designOrderBody) toInput() core.OrderLineInput {
	return core.OrderLineInput{
		DesignID: b.DesignID,
		Quantity: b.Quantity,
		Paper: core.PaperSelector{
			SizeInInch:    b.PaperUsed.SizeInInch,
			InventoryType: core.InventoryType(b.PaperUsed.InventoryType),
		},
	}
}

func linesFromBody(bodies []designOrderBody) []core.OrderLineInput {
	if bodies == nil {
		return nil
	}
	lines := make([]core.OrderLineInput, 0, len(bodies))
	for _, b := range bodies {
		lines = append(lines, b.toInput())
	}
	return lines
}

// normalizedLines returns designOrders, or the legacy single line when only
// designId was sent.
func (b createOrderBody) normalizedLines() []core.OrderLineInput {
	if len(b.DesignOrders) > 0 || b.DesignID == "" {
		return linesFromBody(b.DesignOrders)
	}
	legacy := designOrderBody{DesignID: b.DesignID}
	if b.Quantity != nil {
		legacy.Quantity = *b.Quantity
	}
	if b.PaperUsed != nil {
		legacy.PaperUsed = *b.PaperUsed
	}
	return []core.OrderLineInput{legacy.toInput()}
}

func (b createOrderBody) toInput() core.CreateOrderInput {
	return core.CreateOrderInput{
		Type:             core.OrderType(b.Type),
		CustomerID:       b.CustomerID,
		CustomerName:     b.CustomerName,
		Phone:            b.Phone,
		Lines:            b.normalizedLines(),
		DiscountType:     core.DiscountType(b.DiscountType),
		DiscountValue:    b.DiscountValue,
		FinalTotalWeight: b.FinalTotalWeight,
		IsFinalized:      b.IsFinalized,
		Notes:            b.Notes,
	}
}

func (b updateOrderBody) toInput() core.UpdateOrderInput {
	in := core.UpdateOrderInput{
		CustomerID:       b.CustomerID,
		CustomerName:     b.CustomerName,
		Phone:            b.Phone,
		Lines:            linesFromBody(b.DesignOrders),
		DiscountValue:    b.DiscountValue,
		FinalTotalWeight: b.FinalTotalWeight,
		IsFinalized:      b.IsFinalized,
		Notes:            b.Notes,
	}
	if b.DiscountType != nil {
		dt := core.DiscountType(*b.DiscountType)
		in.DiscountType = &dt
	}
	if b.Status != nil {
		st := core.OrderStatus(*b.Status)
		in.Status = &st
	}
	return in
}

// createOrder handles POST /api/orders.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var body createOrderBody
	if !h.decodeAndValidate(w, r, &body) {
		return
	}

	result, err := h.svc.CreateOrder(r.Context(), app.CreateOrderRequest{
		ActorID: actorID(r),
		Order:   body.toInput(),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Order)
}

// updateOrder handles PUT /api/orders/{id}.
func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var body updateOrderBody
	if !h.decodeAndValidate(w, r, &body) {
		return
	}

	result, err := h.svc.UpdateOrder(r.Context(), app.UpdateOrderRequest{
		ActorID: actorID(r),
		OrderID: chi.URLParam(r, "id"),
		Changes: body.toInput(),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// getOrder handles GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// listOrders handles GET /api/orders?status=&type=&limit=&offset=.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := parseOrderFilter(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.svc.ListOrders(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	orders := result.Orders
	if orders == nil {
		orders = []core.Order{}
	}
	writeJSON(w, orders)
}

func parseOrderFilter(r *http.Request) (core.OrderFilter, error) {
	q := r.URL.Query()
	filter := core.OrderFilter{Limit: defaultOrderListLimit}

	if s := q.Get("status"); s != "" {
		st := core.OrderStatus(s)
		if !st.Valid() {
			return filter, core.NewValidationError("status", "must be one of: pending, completed, cancelled")
		}
		filter.Status = &st
	}
	if s := q.Get("type"); s != "" {
		t := core.OrderType(s)
		if !t.Valid() {
			return filter, core.NewValidationError("type", "must be one of: internal, out")
		}
		filter.Type = &t
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return filter, core.NewValidationError("limit", "must be a positive integer")
		}
		filter.Limit = min(n, maxOrderListLimit)
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return filter, core.NewValidationError("offset", "must be a non-negative integer")
		}
		filter.Offset = n
	}
	return filter, nil
}
