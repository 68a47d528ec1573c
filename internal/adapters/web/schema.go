package web

import (
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

// buildSchemas reflects the JSON Schema of every published request body.
func buildSchemas() map[string]*jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		Mapper:         decimalSchema,
	}
	return map[string]*jsonschema.Schema{
		"create-order": reflector.Reflect(&createOrderBody{}),
		"update-order": reflector.Reflect(&updateOrderBody{}),
		"design":       reflector.Reflect(&designBody{}),
	}
}

// decimalSchema describes decimal.Decimal as a number or a numeric string,
// both of which it unmarshals from.
func decimalSchema(t reflect.Type) *jsonschema.Schema {
	if t != reflect.TypeOf(decimal.Decimal{}) {
		return nil
	}
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "number"},
			{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`},
		},
	}
}

// schema handles GET /api/schemas/{name}.
func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	s, ok := h.schemas[chi.URLParam(r, "name")]
	if !ok {
		writeError(w, r, "unknown schema", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, s)
}
