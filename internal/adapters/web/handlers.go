package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"inventory-orders/internal/app"
	"inventory-orders/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"go.uber.org/zap"
)

// Options configures the HTTP adapter.
type Options struct {
	JWTSecret      string
	JWTExpiry      time.Duration
	AllowedOrigins []string
	BodyLimit      int64
	Development    bool
}

// Handler holds the ApplicationService and everything the routes share.
type Handler struct {
	svc           app.ApplicationService
	router        chi.Router
	log           *zap.Logger
	validate      *validator.Validate
	schemas       map[string]*jsonschema.Schema
	jwtSecret     string
	jwtExpiry     time.Duration
	secureCookies bool
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options, log *zap.Logger) http.Handler {
	if opts.JWTExpiry <= 0 {
		opts.JWTExpiry = time.Hour
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 1 << 20
	}

	h := &Handler{
		svc:           svc,
		log:           log,
		validate:      newValidator(),
		schemas:       buildSchemas(),
		jwtSecret:     opts.JWTSecret,
		jwtExpiry:     opts.JWTExpiry,
		secureCookies: !opts.Development,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	if c := CORS(opts.AllowedOrigins, opts.Development); c != nil {
		r.Use(c)
	}

	// ── Public ───────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Get("/api/schemas/{name}", h.schema)
	r.With(RequestBodyLimit(opts.BodyLimit)).Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(opts.BodyLimit))

		r.Get("/api/auth/me", h.me)

		// Master data reads are open to every role.
		r.Get("/api/stones", h.listStones)
		r.Get("/api/stones/{id}", h.getStone)
		r.Get("/api/papers", h.listPapers)
		r.Get("/api/designs", h.listDesigns)
		r.Get("/api/designs/{id}", h.getDesign)
		r.Get("/api/customers", h.listCustomers)
		r.Get("/api/suppliers", h.listSuppliers)
		r.Get("/api/suppliers/{id}", h.getSupplier)
		r.Get("/api/inventory/entries", h.listInventoryEntries)

		// ── Orders ───────────────────────────────────────────────────────────
		r.Get("/api/orders", h.listOrders)
		r.Post("/api/orders", h.createOrder)
		r.Get("/api/orders/{id}", h.getOrder)
		r.With(RequireRole(core.RoleAdmin, core.RoleManager)).Put("/api/orders/{id}", h.updateOrder)

		// ── Master data writes ───────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(core.RoleAdmin, core.RoleManager))
			r.Post("/api/stones", h.createStone)
			r.Post("/api/papers", h.createPaper)
			r.Post("/api/designs", h.createDesign)
			r.Put("/api/designs/{id}", h.updateDesign)
			r.Post("/api/customers", h.createCustomer)
			r.Post("/api/suppliers", h.createSupplier)
			r.Post("/api/inventory/{kind}/{id}/entries", h.addInventoryEntry)
		})

		r.With(RequireRole(core.RoleAdmin)).Post("/api/users", h.createUser)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, "route not found", "NOT_FOUND", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, "method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
	})

	h.router = r
	return r
}

// health reports whether the datastore is reachable.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	if err := h.svc.Health(r.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		writeJSONStatus(w, http.StatusServiceUnavailable, response{Status: "degraded", Database: "unreachable"})
		return
	}
	writeJSON(w, response{Status: "ok", Database: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// decodeAndValidate decodes the body into v and runs struct validation on it.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if !decodeJSON(w, r, v) {
		return false
	}
	if err := h.validateStruct(v); err != nil {
		h.writeServiceError(w, r, err)
		return false
	}
	return true
}
