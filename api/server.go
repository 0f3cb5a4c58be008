/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RequestLog: Structured request logging (zap)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the billing frontend

ROUTE GROUPS:
  /api/inward, /api/outward   Ledger ingest
  /api/customers/*            Per-customer bills, periods and alerts
  /api/months/*               Month-wide totals
  /api/quality/*              Background ledger scan
  /api/scenarios/*            Demo ledgers (dev only, resets the store)

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Request logger
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions carries router-level settings.
type RouterOptions struct {
	AllowedOrigins []string
	Scanner        *QualityScanner
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Post("/inward", h.CreateInward)
		r.Post("/outward", h.CreateOutward)

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Get("/{customer}/bill", h.GetCustomerBill)
			r.Get("/{customer}/alerts", h.GetAlerts)
			r.Get("/{customer}/lots/{lot}/periods", h.GetLotPeriods)
			r.Get("/{customer}/lots/{lot}/bill", h.GetLotBill)
		})

		r.Get("/months/{month}", h.GetMonthSummary)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetStore)
		})

		if opts.Scanner != nil {
			r.Route("/quality", func(r chi.Router) {
				r.Get("/scan", opts.Scanner.GetLastScan)
				r.Post("/scan", opts.Scanner.TriggerScan)
			})
		}
	})

	return r
}
