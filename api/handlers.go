/*
handlers.go - HTTP API handlers for the billing engine

PURPOSE:
  Exposes the billing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to coldstore.BillingService.

ENDPOINTS:
  Ingest:
    POST   /api/inward                                Record a received lot
    POST   /api/outward                               Record a dispatch

  Billing:
    GET    /api/customers                             Customers with lots
    GET    /api/customers/{customer}/bill             Month-keyed bill
    GET    /api/customers/{customer}/alerts           Data-quality issues
    GET    /api/customers/{customer}/lots/{lot}/periods  Period schedule
    GET    /api/customers/{customer}/lots/{lot}/bill  Single-lot bill
    GET    /api/months/{month}                        Month total (YYYY-MM)

  Demo (scenarios.go):
    GET    /api/scenarios                             Available demo ledgers
    POST   /api/scenarios/load                        Reset and load one

  All billing reads accept ?as_of=YYYY-MM-DD (default: today).

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: invalid input (dates, month, record)
  - 404: unknown customer or lot
  - 500: internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/coldstore-billing/coldstore"
	"github.com/warp/coldstore-billing/generic"
	"github.com/warp/coldstore-billing/pkg/logger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   coldstore.Store
	Billing *coldstore.BillingService
	Log     *logger.Logger

	// Today supplies the default as-of date.
	Today func() generic.TimePoint

	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler over store.
func NewHandler(store coldstore.Store, log *logger.Logger, workers int) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		Store:   store,
		Billing: coldstore.NewBillingService(store, log, workers),
		Log:     log.WithComponent("api"),
		Today:   generic.Today,
	}
}

// =============================================================================
// INGEST HANDLERS
// =============================================================================

// CreateInward records a received lot.
// POST /api/inward
func (h *Handler) CreateInward(w http.ResponseWriter, r *http.Request) {
	var req InwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := generic.ParseDate(req.ReceivedDate); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid received_date format (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.SaveInward(r.Context(), req.record()); err != nil {
		h.writeServiceError(w, "Failed to save inward lot", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, req)
}

// CreateOutward records a dispatch.
// POST /api/outward
func (h *Handler) CreateOutward(w http.ResponseWriter, r *http.Request) {
	var req OutwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := generic.ParseDate(req.DispatchDate); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid dispatch_date format (use YYYY-MM-DD)", err)
		return
	}

	rec, err := h.Store.SaveOutward(r.Context(), req.record())
	if err != nil {
		h.writeServiceError(w, "Failed to save outward event", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, OutwardDTO{
		ID:           rec.ID,
		LotNumber:    rec.LotNumber,
		Customer:     rec.Customer,
		DispatchDate: rec.DispatchDate,
		Quantity:     rec.Quantity,
	})
}

// =============================================================================
// BILLING HANDLERS
// =============================================================================

// ListCustomers returns all customers with inward lots.
// GET /api/customers
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.ListCustomers(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list customers", err)
		return
	}
	if customers == nil {
		customers = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

// GetCustomerBill returns the month-keyed bill of a customer.
// GET /api/customers/{customer}/bill
func (h *Handler) GetCustomerBill(w http.ResponseWriter, r *http.Request) {
	customer := chi.URLParam(r, "customer")
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}

	bill, err := h.Billing.CustomerBill(r.Context(), customer, asOf)
	if err != nil {
		h.writeServiceError(w, "Failed to compute bill", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBillDTO(customer, "", bill, asOf))
}

// GetLotBill returns the bill of one lot.
// GET /api/customers/{customer}/lots/{lot}/bill
func (h *Handler) GetLotBill(w http.ResponseWriter, r *http.Request) {
	customer := chi.URLParam(r, "customer")
	lot := chi.URLParam(r, "lot")
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}

	bill, err := h.Billing.LotBill(r.Context(), customer, lot, asOf)
	if err != nil {
		h.writeServiceError(w, "Failed to compute lot bill", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBillDTO(customer, lot, bill, asOf))
}

// GetLotPeriods returns the storage periods of one lot.
// GET /api/customers/{customer}/lots/{lot}/periods
func (h *Handler) GetLotPeriods(w http.ResponseWriter, r *http.Request) {
	customer := chi.URLParam(r, "customer")
	lot := chi.URLParam(r, "lot")
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}

	schedule, err := h.Billing.LotSchedule(r.Context(), customer, lot, asOf)
	if err != nil {
		h.writeServiceError(w, "Failed to generate periods", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toScheduleDTO(schedule, asOf))
}

// GetAlerts returns data-quality issues of a customer's ledger.
// GET /api/customers/{customer}/alerts
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	customer := chi.URLParam(r, "customer")

	issues, err := h.Billing.DataQuality(r.Context(), customer)
	if err != nil {
		h.writeServiceError(w, "Failed to check ledger", err)
		return
	}

	dtos := make([]IssueDTO, 0, len(issues))
	for _, i := range issues {
		dtos = append(dtos, IssueDTO{
			Kind:      string(i.Kind),
			Customer:  i.Customer,
			LotNumber: i.LotNumber,
			Detail:    i.Detail,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"alerts": dtos})
}

// GetMonthSummary totals one billing month across customers.
// GET /api/months/{month}  (month as YYYY-MM)
func (h *Handler) GetMonthSummary(w http.ResponseWriter, r *http.Request) {
	label, err := generic.MonthLabelFromParam(chi.URLParam(r, "month"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}

	summary, err := h.Billing.MonthSearch(r.Context(), label, asOf)
	if err != nil {
		h.writeServiceError(w, "Failed to aggregate month", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toMonthSummaryDTO(summary, asOf))
}

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// asOf reads ?as_of, writing a 400 on a bad value.
func (h *Handler) asOf(w http.ResponseWriter, r *http.Request) (generic.TimePoint, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return h.Today(), true
	}
	tp, err := generic.ParseDate(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid as_of date (use YYYY-MM-DD)", err)
		return generic.TimePoint{}, false
	}
	return tp, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsClientError(err):
		h.writeError(w, http.StatusBadRequest, message, err)
	case generic.IsNotFound(err):
		h.writeError(w, http.StatusNotFound, message, err)
	default:
		h.Log.Errorw(message, "error", err)
		h.writeError(w, http.StatusInternalServerError, message, err)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Log.Warnw("failed to encode response", "status", status, "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	h.writeJSON(w, status, resp)
}
