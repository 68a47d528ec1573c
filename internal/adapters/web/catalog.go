package web

import (
	"net/http"

	"inventory-orders/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type stoneBody struct {
	Name           string          `json:"name" validate:"required"`
	Number         string          `json:"number" validate:"required"`
	Color          string          `json:"color,omitempty"`
	Size           string          `json:"size,omitempty"`
	WeightPerPiece decimal.Decimal `json:"weightPerPiece"`
	Quantity       decimal.Decimal `json:"quantity"`
}

type paperBody struct {
	Width          decimal.Decimal `json:"width"`
	InventoryType  string          `json:"inventoryType" validate:"required,oneof=paper plastic tape"`
	WeightPerPiece decimal.Decimal `json:"weightPerPiece"`
	Quantity       decimal.Decimal `json:"quantity"`
}

type designPriceBody struct {
	Currency string          `json:"currency" validate:"required"`
	Price    decimal.Decimal `json:"price"`
}

type designStoneBody struct {
	StoneID  string          `json:"stoneId" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

type designBody struct {
	Number        string            `json:"number" validate:"required"`
	Name          string            `json:"name,omitempty"`
	Prices        []designPriceBody `json:"prices" validate:"omitempty,dive"`
	DefaultStones []designStoneBody `json:"defaultStones" validate:"omitempty,dive"`
}

func (b designBody) toInput() core.DesignInput {
	in := core.DesignInput{Number: b.Number, Name: b.Name}
	for _, p := range b.Prices {
		in.Prices = append(in.Prices, core.DesignPrice{Currency: p.Currency, Price: p.Price})
	}
	for _, s := range b.DefaultStones {
		in.DefaultStones = append(in.DefaultStones, core.DesignStone{StoneID: s.StoneID, Quantity: s.Quantity})
	}
	return in
}

type customerBody struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type supplierBody struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contactPerson,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Address       string `json:"address,omitempty"`
}

// ── Stones ────────────────────────────────────────────────────────────────────

func (h *Handler) createStone(w http.ResponseWriter, r *http.Request) {
	var body stoneBody
	if !h.decodeAndValidate(w, r, &body) {
		return
	}
	stone, err := h.svc.CreateStone(r.Context(), core.StoneInput{
		Name:           body.Name,
		Number:         body.Number,
		Color:          body.Color,
		Size:           body.Size,
		WeightPerPiece: body.WeightPerPiece,
		Quantity:       body.Quantity,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, stone)
}

func (h *Handler) getStone(w http.ResponseWriter, r *http.Request) {
	stone, err := h.svc.GetStone(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stone)
}

func (h *Handler) listStones(w http.ResponseWriter, r *http.Request) {
	stones, err := h.svc.ListStones(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, nonNil(stones))
}

// ── Papers ────────────────────────────────────────────────────────────────────

func (h *Handler) createPaper(w http.ResponseWriter, r *http.Request) {
	var body paperBody
	if !h.decodeAndValidate(w, r, &body) {
		return
	}
	paper, err := h.svc.CreatePaper(r.Context(), core.PaperInput{
		Width:          body.Width,
		InventoryType:  core.InventoryType(body.InventoryType),
		WeightPerPiece: body.WeightPerPiece,
		Quantity:       body.Quantity,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, paper)
}

// listPapers handles GET /api/papers?inventoryType=.
func (h *Handler) listPapers(w http.ResponseWriter, r *http.Request) {
	var filter *core.InventoryType
	if s := r.URL.Query().Get("inventoryType"); s != "" {
		t := core.InventoryType(s)
		if !t.Valid() {
			h.writeServiceError(w, r, core.NewValidationError("inventoryType", "must be one of: paper, plastic, tape"))
			return
		}
		filter = &t
	}
	papers, err := h.svc.ListPapers(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, nonNil(papers))
}

// ── Designs ───────────────────────────────────────────────────────────────────

func (h *Handler) createDesign(w http.ResponseWriter, r *http.Request) {
	var body designBody
	if !h.decodeAndValidate(w, r, &body) {
		return
	}
	design, err := h.svc.CreateDesign(r.Context(), body.toInput())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, design)
}

func (h *Handler) updateDesign(w http.ResponseWriter, r *http.Request) {
	var body designBody
	if !h.decodeAndValidate(w, r, &body) {
		return
	}
	design, err := h.svc.UpdateDesign(r.Context(), chi.URLParam(r, "id"), body.toInput())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, design)
}

func (h *Handler) getDesign(w http.ResponseWriter, r *http.Request) {
	design, err := h.svc.GetDesign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, design)
}

func (h *Handler) listDesigns(w http.ResponseWriter, r *http.Request) {
	designs, err := h.svc.ListDesigns(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, nonNil(designs))
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var body customerBody
	if !h.decodeAndValidate(w, r, &body) {
		return
	}
	customer, err := h.svc.CreateCustomer(r.Context(), core.CustomerInput{
		Name:    body.Name,
		Phone:   body.Phone,
		Address: body.Address,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, customer)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, nonNil(customers))
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var body supplierBody
	if !h.decodeAndValidate(w, r, &body) {
		return
	}
	supplier, err := h.svc.CreateSupplier(r.Context(), core.SupplierInput{
		Name:          body.Name,
		ContactPerson: body.ContactPerson,
		Phone:         body.Phone,
		Email:         body.Email,
		Address:       body.Address,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, supplier)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	supplier, err := h.svc.GetSupplier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, supplier)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.svc.ListSuppliers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, nonNil(suppliers))
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
