/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the engine
  types (decimal amounts, TimePoints) from the wire contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Currency values are plain JSON numbers with no currency symbol. Dates are
  DD.MM.YY inside bills and periods (the invoice format) and YYYY-MM-DD
  everywhere else.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/coldstore-billing/coldstore"
	"github.com/warp/coldstore-billing/generic"
)

// =============================================================================
// INGEST
// =============================================================================

// InwardRequest records a received lot. Numbers are strings so a dirty
// ledger can be imported as-is.
type InwardRequest struct {
	LotNumber    string `json:"lot_number"`
	Customer     string `json:"customer"`
	ReceivedDate string `json:"received_date"`
	Item         string `json:"item"`
	Quantity     string `json:"quantity"`
	StorageRate  string `json:"storage_rate"`
	LabourRate   string `json:"labour_rate"`
}

func (r InwardRequest) record() coldstore.InwardRecord {
	return coldstore.InwardRecord{
		LotNumber:    r.LotNumber,
		Customer:     r.Customer,
		ReceivedDate: r.ReceivedDate,
		Item:         r.Item,
		Quantity:     r.Quantity,
		StorageRate:  r.StorageRate,
		LabourRate:   r.LabourRate,
	}
}

// OutwardRequest records a dispatch.
type OutwardRequest struct {
	ID           string `json:"id,omitempty"`
	LotNumber    string `json:"lot_number"`
	Customer     string `json:"customer"`
	DispatchDate string `json:"dispatch_date"`
	Quantity     string `json:"quantity"`
}

func (r OutwardRequest) record() coldstore.OutwardRecord {
	return coldstore.OutwardRecord{
		ID:           r.ID,
		LotNumber:    r.LotNumber,
		Customer:     r.Customer,
		DispatchDate: r.DispatchDate,
		Quantity:     r.Quantity,
	}
}

// OutwardDTO is a stored dispatch.
type OutwardDTO struct {
	ID           string `json:"id"`
	LotNumber    string `json:"lot_number"`
	Customer     string `json:"customer"`
	DispatchDate string `json:"dispatch_date"`
	Quantity     string `json:"quantity"`
}

// =============================================================================
// PERIODS
// =============================================================================

// DispatchDTO is one dispatch inside a period.
type DispatchDTO struct {
	Date     string `json:"date"`
	Quantity int64  `json:"quantity"`
}

// PeriodDTO is one storage period.
type PeriodDTO struct {
	Index          int           `json:"index"`
	Start          string        `json:"start"`
	End            string        `json:"end"`
	Dispatches     []DispatchDTO `json:"dispatches"`
	Dispatched     int64         `json:"dispatched"`
	QuantityBefore int64         `json:"quantity_before"`
	QuantityAfter  int64         `json:"quantity_after"`
	Rate           float64       `json:"rate"`
	Amount         float64       `json:"amount"`
	DueMonth       string        `json:"due_month"`
	Ongoing        bool          `json:"ongoing"`
}

// ScheduleDTO is the period schedule of a lot.
type ScheduleDTO struct {
	LotNumber    string      `json:"lot_number"`
	Customer     string      `json:"customer"`
	Item         string      `json:"item"`
	ReceivedDate string      `json:"received_date"`
	Quantity     int64       `json:"quantity"`
	State        string      `json:"state"`
	Remaining    int64       `json:"remaining"`
	Overdrawn    int64       `json:"overdrawn"`
	Billed       float64     `json:"billed"`
	AsOf         string      `json:"as_of"`
	Periods      []PeriodDTO `json:"periods"`
}

func toScheduleDTO(s coldstore.Schedule, asOf generic.TimePoint) ScheduleDTO {
	dto := ScheduleDTO{
		LotNumber: s.Lot.LotNumber,
		Customer:  s.Lot.Customer,
		Item:      s.Lot.Item,
		Quantity:  s.Lot.Quantity,
		State:     string(s.State),
		Remaining: s.Remaining(),
		Overdrawn: s.Overdrawn,
		Billed:    s.Billed().InexactFloat64(),
		AsOf:      asOf.String(),
		Periods:   make([]PeriodDTO, 0, len(s.Periods)),
	}
	if !s.Lot.ReceivedDate.IsZero() {
		dto.ReceivedDate = s.Lot.ReceivedDate.String()
	}

	for _, p := range s.Periods {
		due, _ := coldstore.DueMonth(p)
		pd := PeriodDTO{
			Index:          p.Index,
			Start:          p.Period.Start.ShortString(),
			End:            p.Period.End.ShortString(),
			Dispatches:     make([]DispatchDTO, 0, len(p.Dispatches)),
			Dispatched:     p.Dispatched,
			QuantityBefore: p.QuantityBefore,
			QuantityAfter:  p.QuantityAfter,
			Rate:           p.Rate.InexactFloat64(),
			Amount:         p.Amount.InexactFloat64(),
			DueMonth:       due,
			Ongoing:        p.Ongoing,
		}
		for _, d := range p.Dispatches {
			pd.Dispatches = append(pd.Dispatches, DispatchDTO{Date: d.Date, Quantity: d.Quantity})
		}
		dto.Periods = append(dto.Periods, pd)
	}
	return dto
}

// =============================================================================
// BILLS
// =============================================================================

// BillLineDTO is one lot line of a billing month.
type BillLineDTO struct {
	LotNumber      string  `json:"lot_number"`
	Item           string  `json:"item"`
	DateRange      string  `json:"date_range"`
	Quantity       int64   `json:"quantity"`
	Rate           float64 `json:"rate"`
	StorageAmount  float64 `json:"storage_amount"`
	LabourAmount   float64 `json:"labour_amount"`
	Sum            float64 `json:"sum"`
	EarlyDepletion bool    `json:"early_depletion,omitempty"`
}

// BillEntryDTO is one billing month.
type BillEntryDTO struct {
	Month string        `json:"month"`
	Lines []BillLineDTO `json:"lines"`
	Total float64       `json:"total"`
}

// BillDTO is a customer (or single lot) bill in month order.
type BillDTO struct {
	Customer  string         `json:"customer"`
	LotNumber string         `json:"lot_number,omitempty"`
	AsOf      string         `json:"as_of"`
	Months    []BillEntryDTO `json:"months"`
	Total     float64        `json:"total"`
}

func toBillDTO(customer, lotNumber string, bill coldstore.Bill, asOf generic.TimePoint) BillDTO {
	dto := BillDTO{
		Customer:  customer,
		LotNumber: lotNumber,
		AsOf:      asOf.String(),
		Months:    make([]BillEntryDTO, 0, len(bill)),
		Total:     bill.Total().InexactFloat64(),
	}
	for _, e := range bill.Entries() {
		ed := BillEntryDTO{
			Month: e.Month,
			Lines: make([]BillLineDTO, 0, len(e.Lines)),
			Total: e.Total.InexactFloat64(),
		}
		for _, l := range e.Lines {
			ed.Lines = append(ed.Lines, BillLineDTO{
				LotNumber:      l.LotNumber,
				Item:           l.Item,
				DateRange:      l.DateRange,
				Quantity:       l.Quantity,
				Rate:           l.Rate.InexactFloat64(),
				StorageAmount:  l.StorageAmount.InexactFloat64(),
				LabourAmount:   l.LabourAmount.InexactFloat64(),
				Sum:            l.Sum().InexactFloat64(),
				EarlyDepletion: l.EarlyDepletion,
			})
		}
		dto.Months = append(dto.Months, ed)
	}
	return dto
}

// =============================================================================
// MONTH SEARCH
// =============================================================================

// CustomerTotalDTO is one customer's amount for a month.
type CustomerTotalDTO struct {
	Customer string  `json:"customer"`
	Total    float64 `json:"total"`
	Lines    int     `json:"lines"`
}

// MonthSummaryDTO is the month-wide aggregation.
type MonthSummaryDTO struct {
	Month     string             `json:"month"`
	AsOf      string             `json:"as_of"`
	Customers []CustomerTotalDTO `json:"customers"`
	Total     float64            `json:"total"`
}

func toMonthSummaryDTO(s coldstore.MonthSummary, asOf generic.TimePoint) MonthSummaryDTO {
	dto := MonthSummaryDTO{
		Month:     s.Month,
		AsOf:      asOf.String(),
		Customers: make([]CustomerTotalDTO, 0, len(s.Customers)),
		Total:     s.Total.InexactFloat64(),
	}
	for _, c := range s.Customers {
		dto.Customers = append(dto.Customers, CustomerTotalDTO{
			Customer: c.Customer,
			Total:    c.Total.InexactFloat64(),
			Lines:    c.Lines,
		})
	}
	return dto
}

// =============================================================================
// DATA QUALITY / ERRORS
// =============================================================================

// IssueDTO is one data-quality alert.
type IssueDTO struct {
	Kind      string `json:"kind"`
	Customer  string `json:"customer"`
	LotNumber string `json:"lot_number"`
	Detail    string `json:"detail"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
