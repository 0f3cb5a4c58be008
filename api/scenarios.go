/*
scenarios.go - Demo ledgers for testing and demonstrations

PURPOSE:

	Provides pre-built ledgers that populate the store with realistic inward
	and outward records. Each scenario shows one billing rule end to end.

AVAILABLE SCENARIOS:

	early-depletion:  lot emptied two days after receipt (pull-back, NIL range)
	late-depletion:   lot emptied inside its end month (no pull-back)
	month-end:        lot received on Jan 31 (clamped period boundaries)
	dirty-ledger:     junk quantities, orphan and over-drawn dispatches
	multi-customer:   several customers billed in the same month

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Save the scenario's inward records
 3. Save the scenario's outward records

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "early-depletion"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ingest handlers use the same Store methods
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/coldstore-billing/coldstore"
)

// ScenarioDTO describes a demo ledger.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Customers   int    `json:"customers"`
	Lots        int    `json:"lots"`
}

type scenario struct {
	ScenarioDTO
	inward  []coldstore.InwardRecord
	outward []coldstore.OutwardRecord
}

// resetter is implemented by stores that can be cleared.
type resetter interface {
	Reset(ctx context.Context) error
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

func inward(customer, lot, received, item, qty, storageRate, labourRate string) coldstore.InwardRecord {
	return coldstore.InwardRecord{
		LotNumber:    lot,
		Customer:     customer,
		ReceivedDate: received,
		Item:         item,
		Quantity:     qty,
		StorageRate:  storageRate,
		LabourRate:   labourRate,
	}
}

func outward(customer, lot, date, qty string) coldstore.OutwardRecord {
	return coldstore.OutwardRecord{
		LotNumber:    lot,
		Customer:     customer,
		DispatchDate: date,
		Quantity:     qty,
	}
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "early-depletion",
			Name:        "Early Depletion",
			Description: "80 bags in on 16 Jan 2026, all out on 18 Jan: billed in February, not March",
		},
		inward: []coldstore.InwardRecord{
			inward("Sharma Traders", "LOT-101", "2026-01-16", "potato", "80", "10", "2"),
		},
		outward: []coldstore.OutwardRecord{
			outward("Sharma Traders", "LOT-101", "2026-01-18", "80"),
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "late-depletion",
			Name:        "Late Depletion",
			Description: "50 bags in on 16 Dec 2025, all out on 6 Jan 2026: stays in February",
		},
		inward: []coldstore.InwardRecord{
			inward("Verma Cold Chain", "LOT-201", "2025-12-16", "onion", "50", "12", "3"),
		},
		outward: []coldstore.OutwardRecord{
			outward("Verma Cold Chain", "LOT-201", "2026-01-06", "50"),
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "month-end",
			Name:        "Month-End Receipt",
			Description: "Lot received 31 Jan: periods end 28 Feb, 31 Mar, 30 Apr",
		},
		inward: []coldstore.InwardRecord{
			inward("Gupta Agro", "LOT-301", "2026-01-31", "apple", "120", "15", "2.5"),
		},
		outward: []coldstore.OutwardRecord{
			outward("Gupta Agro", "LOT-301", "2026-03-10", "40"),
			outward("Gupta Agro", "LOT-301", "2026-04-20", "30"),
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "dirty-ledger",
			Name:        "Dirty Ledger",
			Description: "Junk quantities and rates, an orphan dispatch and an over-drawn lot",
		},
		inward: []coldstore.InwardRecord{
			inward("Khan Foods", "LOT-401", "2026-01-05", "carrot", "sixty", "8", "1"),
			inward("Khan Foods", "LOT-402", "2026-01-05", "carrot", "40", "8", "n/a"),
			inward("Khan Foods", "LOT-403", "05/01/2026", "carrot", "40", "8", "1"),
		},
		outward: []coldstore.OutwardRecord{
			outward("Khan Foods", "LOT-402", "2026-01-20", "30"),
			outward("Khan Foods", "LOT-402", "2026-02-10", "25"),
			outward("Khan Foods", "LOT-999", "2026-02-01", "5"),
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "multi-customer",
			Name:        "Multi-Customer",
			Description: "Three customers with overlapping lots for month-wide totals",
		},
		inward: []coldstore.InwardRecord{
			inward("Sharma Traders", "LOT-101", "2026-01-10", "potato", "200", "10", "2"),
			inward("Sharma Traders", "LOT-102", "2026-02-03", "potato", "150", "10", "2"),
			inward("Verma Cold Chain", "LOT-101", "2026-01-20", "onion", "90", "12", "3"),
			inward("Gupta Agro", "LOT-301", "2026-02-15", "apple", "60", "15", "2.5"),
		},
		outward: []coldstore.OutwardRecord{
			outward("Sharma Traders", "LOT-101", "2026-02-01", "120"),
			outward("Sharma Traders", "LOT-101", "2026-03-05", "80"),
			outward("Verma Cold Chain", "LOT-101", "2026-01-25", "90"),
			outward("Gupta Agro", "LOT-301", "2026-03-20", "10"),
		},
	},
}

func init() {
	for i := range scenarios {
		customers := map[string]bool{}
		for _, rec := range scenarios[i].inward {
			customers[rec.Customer] = true
		}
		scenarios[i].Customers = len(customers)
		scenarios[i].Lots = len(scenarios[i].inward)
	}
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, 0, len(scenarios))
	for _, s := range scenarios {
		dtos = append(dtos, s.ScenarioDTO)
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	s, ok := findScenario(current)
	if !ok {
		h.writeJSON(w, http.StatusOK, nil)
		return
	}
	h.writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario resets the store and loads a predefined ledger.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.resetStore(r.Context()); err != nil {
		h.writeServiceError(w, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	if err := h.loadScenario(r.Context(), s); err != nil {
		h.writeServiceError(w, "Failed to load scenario", err)
		return
	}
	h.currentScenario = s.ID

	h.Log.Infow("scenario loaded", "scenario", s.ID, "lots", len(s.inward), "dispatches", len(s.outward))
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID})
}

// ResetStore clears all ledger data.
// POST /api/scenarios/reset
func (h *Handler) ResetStore(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.resetStore(r.Context()); err != nil {
		h.writeServiceError(w, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) resetStore(ctx context.Context) error {
	rs, ok := h.Store.(resetter)
	if !ok {
		return fmt.Errorf("store %T cannot be reset", h.Store)
	}
	return rs.Reset(ctx)
}

func (h *Handler) loadScenario(ctx context.Context, s scenario) error {
	for _, rec := range s.inward {
		if err := h.Store.SaveInward(ctx, rec); err != nil {
			return fmt.Errorf("inward %s/%s: %w", rec.Customer, rec.LotNumber, err)
		}
	}
	for _, rec := range s.outward {
		if _, err := h.Store.SaveOutward(ctx, rec); err != nil {
			return fmt.Errorf("outward %s/%s: %w", rec.Customer, rec.LotNumber, err)
		}
	}
	return nil
}
