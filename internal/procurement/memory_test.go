package procurement

import (
	"context"
	"sync"

	"procure-dispatch-api-server/internal/models"
)

// memoryLedger is an in-memory Ledger with the same compare-and-swap
// contract as the Mongo implementation. Get hands out deep copies.
type memoryLedger struct {
	mu    sync.Mutex
	order []string
	docs  map[string]*models.ProcurementRequest
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{docs: make(map[string]*models.ProcurementRequest)}
}

func (m *memoryLedger) Insert(_ context.Context, req *models.ProcurementRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.Revision = 1
	m.order = append(m.order, req.RequestID)
	m.docs[req.RequestID] = cloneRequest(req)
	return nil
}

func (m *memoryLedger) Get(_ context.Context, requestID string) (*models.ProcurementRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.docs[requestID]
	if !ok {
		return nil, NotFoundError(requestID)
	}
	return cloneRequest(stored), nil
}

func (m *memoryLedger) List(_ context.Context, f Filter) ([]models.ProcurementRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ProcurementRequest
	for _, id := range m.order {
		req := m.docs[id]
		if f.FranchiseID != "" && req.FranchiseID != f.FranchiseID {
			continue
		}
		if f.VendorID != "" && req.VendorID != f.VendorID {
			continue
		}
		if f.ExcludeTerminal && Status(req.Status).Terminal() {
			continue
		}
		if len(f.Statuses) > 0 {
			match := false
			for _, s := range f.Statuses {
				if Status(req.Status) == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *cloneRequest(req))
	}
	return out, nil
}

func (m *memoryLedger) Update(_ context.Context, req *models.ProcurementRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.docs[req.RequestID]
	if !ok {
		return NotFoundError(req.RequestID)
	}
	if stored.Revision != req.Revision {
		return StaleStateError(req.RequestID)
	}
	req.Revision++
	m.docs[req.RequestID] = cloneRequest(req)
	return nil
}

func cloneRequest(req *models.ProcurementRequest) *models.ProcurementRequest {
	out := *req
	out.Items = append([]models.LineItem(nil), req.Items...)
	out.Settlement = cloneSettlement(req.Settlement)
	out.DeliveryChallan = cloneDocument(req.DeliveryChallan)
	out.GRN = cloneDocument(req.GRN)
	out.Invoice = cloneDocument(req.Invoice)
	out.Bilty = cloneDocument(req.Bilty)
	if req.DocumentSeq != nil {
		out.DocumentSeq = make(map[string]int, len(req.DocumentSeq))
		for k, v := range req.DocumentSeq {
			out.DocumentSeq[k] = v
		}
	}
	return &out
}

func cloneSettlement(s *models.Settlement) *models.Settlement {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

func cloneDocument(d *models.Document) *models.Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Items = append([]models.DocumentItem(nil), d.Items...)
	return &out
}

type memoryDirectory struct {
	franchises map[string]*models.Franchise
	vendors    map[string]*models.Vendor
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{
		franchises: map[string]*models.Franchise{
			"FR-001": {FranchiseID: "FR-001", Name: "Indiranagar Outlet", OwnerName: "Meera Nair"},
			"FR-002": {FranchiseID: "FR-002", Name: "Koramangala Outlet", OwnerName: "Arjun Rao"},
		},
		vendors: map[string]*models.Vendor{
			"VND-001": {VendorID: "VND-001", Name: "Fresh Farms Supply"},
		},
	}
}

func (d *memoryDirectory) Franchise(_ context.Context, franchiseID string) (*models.Franchise, error) {
	if f, ok := d.franchises[franchiseID]; ok {
		return f, nil
	}
	return nil, NotFoundError(franchiseID)
}

func (d *memoryDirectory) Vendor(_ context.Context, vendorID string) (*models.Vendor, error) {
	if v, ok := d.vendors[vendorID]; ok {
		return v, nil
	}
	return nil, NotFoundError(vendorID)
}

func newTestEngine() (*Engine, *memoryLedger) {
	ledger := newMemoryLedger()
	return NewEngine(ledger, newMemoryDirectory()), ledger
}
