package coldstore

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTH AGGREGATION - "What is billed in March 2026 across all customers?"
// =============================================================================

// CustomerMonthTotal is one customer's amount for a billing month.
type CustomerMonthTotal struct {
	Customer string
	Total    decimal.Decimal
	Lines    int
}

// MonthSummary is the month-wide aggregation across customers.
type MonthSummary struct {
	Month     string
	Customers []CustomerMonthTotal // by customer name
	Total     decimal.Decimal
}

// SumMonth totals month over the given per-customer bills. Customers with no
// entry or a zero amount for month are left out.
func SumMonth(month string, bills map[string]Bill) MonthSummary {
	summary := MonthSummary{Month: month, Total: decimal.Zero}

	for customer, bill := range bills {
		entry, ok := bill[month]
		if !ok || entry.Total.IsZero() {
			continue
		}
		summary.Customers = append(summary.Customers, CustomerMonthTotal{
			Customer: customer,
			Total:    entry.Total,
			Lines:    len(entry.Lines),
		})
		summary.Total = summary.Total.Add(entry.Total)
	}

	sort.Slice(summary.Customers, func(i, j int) bool {
		return summary.Customers[i].Customer < summary.Customers[j].Customer
	})
	return summary
}
