package procurement

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"procure-dispatch-api-server/internal/models"
)

// Aggregator is the read side: report rollups over the ledger. It never
// mutates anything and every call re-evaluates against current ledger state.
type Aggregator struct {
	ledger Ledger
	dir    Directory
	now    func() time.Time
}

func NewAggregator(ledger Ledger, dir Directory) *Aggregator {
	return &Aggregator{ledger: ledger, dir: dir, now: time.Now}
}

// ReportFilter narrows the report table. Search matches invoice number,
// franchise name or owner name, case-insensitive substring. DateRange is one
// of today, week, month, all (empty means all) evaluated against the invoice
// date.
type ReportFilter struct {
	Search    string
	DateRange string
}

// Report is one reports-table row: the request plus resolved franchise names.
type Report struct {
	models.ProcurementRequest
	FranchiseName string `json:"franchiseName"`
	OwnerName     string `json:"ownerName"`
}

// Totals are aggregate sums over a set of requests.
type Totals struct {
	Count             int     `json:"count"`
	TotalWeight       float64 `json:"totalWeight"`
	TotalQuotedAmount float64 `json:"totalQuotedAmount"`
}

// ListReports returns the filtered rows plus two rollups: filtered covers the
// rows returned, summary covers the full unfiltered set (the summary cards
// must not shrink when the table is filtered).
func (a *Aggregator) ListReports(ctx context.Context, f ReportFilter) (reports []Report, filtered Totals, summary Totals, err error) {
	all, err := a.ledger.List(ctx, Filter{})
	if err != nil {
		return nil, Totals{}, Totals{}, err
	}
	summary = sumTotals(all)

	cutoff, bounded := a.rangeCutoff(f.DateRange)
	needle := strings.ToLower(strings.TrimSpace(f.Search))

	reports = []Report{}
	var matched []models.ProcurementRequest
	for _, req := range all {
		row := Report{ProcurementRequest: req}
		if a.dir != nil {
			if fr, frErr := a.dir.Franchise(ctx, req.FranchiseID); frErr == nil {
				row.FranchiseName = fr.Name
				row.OwnerName = fr.OwnerName
			}
		}
		if bounded {
			if req.Invoice == nil || req.Invoice.InvoiceDate.Before(cutoff) {
				continue
			}
		}
		if needle != "" && !matchesSearch(row, needle) {
			continue
		}
		reports = append(reports, row)
		matched = append(matched, req)
	}
	filtered = sumTotals(matched)
	return reports, filtered, summary, nil
}

func matchesSearch(row Report, needle string) bool {
	if row.Invoice != nil && strings.Contains(strings.ToLower(row.Invoice.InvoiceNumber), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(row.FranchiseName), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(row.OwnerName), needle)
}

// rangeCutoff maps a date-range label to its inclusive lower bound. bounded
// is false for "all" (and unknown labels, which read as all).
func (a *Aggregator) rangeCutoff(dateRange string) (time.Time, bool) {
	now := a.now()
	switch strings.ToLower(dateRange) {
	case "today":
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location()), true
	case "week":
		return now.AddDate(0, 0, -7), true
	case "month":
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}

func sumTotals(reqs []models.ProcurementRequest) Totals {
	weight := decimal.Zero
	amount := decimal.Zero
	for _, req := range reqs {
		weight = weight.Add(decimal.NewFromFloat(req.ActualWeight))
		amount = amount.Add(decimal.NewFromFloat(req.TotalQuotedAmount))
	}
	w, _ := weight.Float64()
	amt, _ := amount.Float64()
	return Totals{Count: len(reqs), TotalWeight: w, TotalQuotedAmount: amt}
}
