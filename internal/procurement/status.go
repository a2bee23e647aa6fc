package procurement

import "strings"

// Status is the canonical lifecycle state of a procurement request. Only
// canonical values are ever persisted; aliases coming in from older clients
// are normalized by ParseStatus at the boundary.
type Status string

const (
	StatusRequested      Status = "REQUESTED"
	StatusQuoted         Status = "QUOTED"
	StatusApproved       Status = "APPROVED"
	StatusPreparing      Status = "PREPARING"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusCompleted      Status = "COMPLETED"
	StatusRejected       Status = "REJECTED"
	StatusCancelled      Status = "CANCELLED"
)

// Aliases used interchangeably by older screens. ASSIGNED is the vendor-side
// label for a freshly created request, BIDDING the admin-side label for a
// quote in flight, NEW the vendor-side label for an approved request.
var statusAliases = map[string]Status{
	"ASSIGNED": StatusRequested,
	"BIDDING":  StatusQuoted,
	"NEW":      StatusApproved,
}

var canonical = map[Status]bool{
	StatusRequested:      true,
	StatusQuoted:         true,
	StatusApproved:       true,
	StatusPreparing:      true,
	StatusReadyForPickup: true,
	StatusCompleted:      true,
	StatusRejected:       true,
	StatusCancelled:      true,
}

// ParseStatus normalizes an incoming status label (case-insensitive, alias
// tolerant) to its canonical value. ok is false for unknown labels.
func ParseStatus(s string) (Status, bool) {
	upper := Status(strings.ToUpper(strings.TrimSpace(s)))
	if canonical[upper] {
		return upper, true
	}
	if alias, found := statusAliases[string(upper)]; found {
		return alias, true
	}
	return "", false
}

// Terminal reports whether no further transitions are accepted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

// transitions is the legal forward table. CANCELLED is handled separately:
// it is reachable from any non-terminal state, admin only.
var transitions = map[Status][]Status{
	StatusRequested:      {StatusQuoted, StatusRejected},
	StatusQuoted:         {StatusApproved, StatusRejected},
	StatusApproved:       {StatusPreparing, StatusRejected},
	StatusPreparing:      {StatusReadyForPickup},
	StatusReadyForPickup: {StatusCompleted},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) bool {
	if to == StatusCancelled {
		return !from.Terminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
