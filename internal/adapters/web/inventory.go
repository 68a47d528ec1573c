package web

import (
	"net/http"
	"strconv"

	"inventory-orders/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type inventoryEntryBody struct {
	QuantityChange decimal.Decimal `json:"quantityChange"`
	Note           string          `json:"note,omitempty"`
}

// inventoryKindFromPath maps the {kind} path segment (stones, papers) to an item kind.
func inventoryKindFromPath(segment string) (core.InventoryKind, bool) {
	switch segment {
	case "stones":
		return core.InventoryKindStone, true
	case "papers":
		return core.InventoryKindPaper, true
	}
	return "", false
}

// addInventoryEntry handles POST /api/inventory/{stones|papers}/{id}/entries.
func (h *Handler) addInventoryEntry(w http.ResponseWriter, r *http.Request) {
	kind, ok := inventoryKindFromPath(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, r, "route not found", "NOT_FOUND", http.StatusNotFound)
		return
	}

	var body inventoryEntryBody
	if !h.decodeAndValidate(w, r, &body) {
		return
	}

	entry, err := h.svc.AddInventoryEntry(r.Context(), core.InventoryEntryInput{
		ItemKind:       kind,
		ItemID:         chi.URLParam(r, "id"),
		QuantityChange: body.QuantityChange,
		Note:           body.Note,
		ActorID:        actorID(r),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, entry)
}

// listInventoryEntries handles GET /api/inventory/entries?kind=&itemId=&limit=.
func (h *Handler) listInventoryEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.InventoryEntryFilter{
		ItemKind: core.InventoryKind(q.Get("kind")),
		ItemID:   q.Get("itemId"),
	}
	if filter.ItemKind != "" && !filter.ItemKind.Valid() {
		h.writeServiceError(w, r, core.NewValidationError("kind", "must be one of: stone, paper"))
		return
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			h.writeServiceError(w, r, core.NewValidationError("limit", "must be a positive integer"))
			return
		}
		filter.Limit = n
	}

	result, err := h.svc.ListInventoryEntries(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, nonNil(result.Entries))
}
