package procurement

import (
	"context"

	"procure-dispatch-api-server/internal/models"
)

// Filter narrows List results. Zero values mean no constraint.
type Filter struct {
	FranchiseID     string
	VendorID        string
	Statuses        []Status
	ExcludeTerminal bool
}

// Ledger is the durable store for procurement aggregates and the only place
// state lives. Update must be a compare-and-swap on Revision: it succeeds
// only when the stored revision still equals req.Revision, bumps it by one,
// and fails with a STALE_STATE error otherwise. Get must return an
// independent copy so a failed swap never leaks partial mutations.
type Ledger interface {
	Insert(ctx context.Context, req *models.ProcurementRequest) error
	Get(ctx context.Context, requestID string) (*models.ProcurementRequest, error)
	List(ctx context.Context, f Filter) ([]models.ProcurementRequest, error)
	Update(ctx context.Context, req *models.ProcurementRequest) error
}

// Directory resolves franchise and vendor details for manifests and reports.
type Directory interface {
	Franchise(ctx context.Context, franchiseID string) (*models.Franchise, error)
	Vendor(ctx context.Context, vendorID string) (*models.Vendor, error)
}
