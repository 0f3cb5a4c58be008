/*
scanner.go - Background ledger data-quality scan

PURPOSE:
  Periodically runs the data-quality check for every customer and keeps the
  latest result, so operators see bad ledger rows (unparseable quantities,
  orphan dispatches, over-withdrawals) without asking per customer.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Scans once immediately on Start
  - A failed customer is logged and counted; the scan continues
  - The last completed scan is served by GET /api/quality/scan

USAGE:
  scanner := NewQualityScanner(handler, time.Hour)
  scanner.Start()
  // ... later
  scanner.Stop()

SEE ALSO:
  - coldstore/quality.go: CheckLedger
*/
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/warp/coldstore-billing/coldstore"
	"github.com/warp/coldstore-billing/pkg/logger"
)

// ScanResult is one completed ledger scan.
type ScanResult struct {
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	Customers   int            `json:"customers"`
	Failed      int            `json:"failed"`
	IssueCount  int            `json:"issue_count"`
	ByKind      map[string]int `json:"by_kind"`
	ByCustomer  map[string]int `json:"by_customer"`
	Issues      []IssueDTO     `json:"issues"`
}

// QualityScanner runs the ledger check on an interval.
type QualityScanner struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	log    *logger.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	resultMu sync.RWMutex
	last     *ScanResult
}

// NewQualityScanner creates a scanner. A non-positive interval disables
// the background loop; RunNow still works.
func NewQualityScanner(h *Handler, interval time.Duration) *QualityScanner {
	return &QualityScanner{
		Handler:       h,
		CheckInterval: interval,
		Enabled:       interval > 0,
		log:           h.Log.WithComponent("quality-scan"),
	}
}

// Start begins the background loop.
func (qs *QualityScanner) Start() {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if !qs.Enabled {
		qs.log.Info("disabled, not starting")
		return
	}
	if qs.ticker != nil {
		return
	}

	qs.ticker = time.NewTicker(qs.CheckInterval)
	qs.stop = make(chan struct{})
	qs.wg.Add(1)
	go qs.run(qs.ticker, qs.stop)

	qs.log.Infow("started", "interval", qs.CheckInterval.String())
}

// Stop stops the background loop and waits for an in-flight scan.
func (qs *QualityScanner) Stop() {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if qs.ticker != nil {
		qs.ticker.Stop()
		close(qs.stop)
		qs.wg.Wait()
		qs.ticker = nil
		qs.log.Info("stopped")
	}
}

func (qs *QualityScanner) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer qs.wg.Done()

	qs.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			qs.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow scans every customer and records the result.
func (qs *QualityScanner) RunNow(ctx context.Context) ScanResult {
	res := ScanResult{
		StartedAt:  time.Now().UTC(),
		ByKind:     map[string]int{},
		ByCustomer: map[string]int{},
		Issues:     []IssueDTO{},
	}

	customers, err := qs.Handler.Store.ListCustomers(ctx)
	if err != nil {
		qs.log.Errorw("listing customers", "error", err)
		res.Failed++
	}

	for _, customer := range customers {
		res.Customers++
		issues, err := qs.Handler.Billing.DataQuality(ctx, customer)
		if err != nil {
			qs.log.Errorw("checking ledger", "customer", customer, "error", err)
			res.Failed++
			continue
		}
		res.add(issues)
	}
	res.CompletedAt = time.Now().UTC()

	qs.resultMu.Lock()
	qs.last = &res
	qs.resultMu.Unlock()

	if res.IssueCount > 0 || res.Failed > 0 {
		qs.log.Warnw("scan completed",
			"customers", res.Customers,
			"issues", res.IssueCount,
			"failed", res.Failed,
		)
	} else {
		qs.log.Debugw("scan completed", "customers", res.Customers)
	}
	return res
}

func (r *ScanResult) add(issues []coldstore.Issue) {
	for _, i := range issues {
		r.IssueCount++
		r.ByKind[string(i.Kind)]++
		r.ByCustomer[i.Customer]++
		r.Issues = append(r.Issues, IssueDTO{
			Kind:      string(i.Kind),
			Customer:  i.Customer,
			LotNumber: i.LotNumber,
			Detail:    i.Detail,
		})
	}
}

// LastScan returns the most recent result, or nil before the first scan.
func (qs *QualityScanner) LastScan() *ScanResult {
	qs.resultMu.RLock()
	defer qs.resultMu.RUnlock()
	return qs.last
}

// =============================================================================
// HTTP
// =============================================================================

// GetLastScan returns the latest scan.
// GET /api/quality/scan
func (qs *QualityScanner) GetLastScan(w http.ResponseWriter, r *http.Request) {
	last := qs.LastScan()
	if last == nil {
		qs.Handler.writeError(w, http.StatusNotFound, "No scan has completed yet", nil)
		return
	}
	qs.Handler.writeJSON(w, http.StatusOK, last)
}

// TriggerScan runs a scan synchronously.
// POST /api/quality/scan
func (qs *QualityScanner) TriggerScan(w http.ResponseWriter, r *http.Request) {
	qs.Handler.writeJSON(w, http.StatusOK, qs.RunNow(r.Context()))
}
