package procurement

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies the failure class so callers can branch on it.
type Code string

const (
	CodeInvalidTransition      Code = "INVALID_TRANSITION"
	CodeStaleState             Code = "STALE_STATE"
	CodeIncompleteQuotation    Code = "INCOMPLETE_QUOTATION"
	CodeConflictingQuotation   Code = "CONFLICTING_QUOTATION"
	CodeInvalidWeight          Code = "INVALID_WEIGHT"
	CodeInvalidReceiptQuantity Code = "INVALID_RECEIPT_QUANTITY"
	CodeNotFound               Code = "NOT_FOUND"
)

// Error is the single error type returned by the engine and the ledger. The
// fields beyond Code carry enough detail (which item, which status was seen,
// which were expected) to render an actionable message upstream.
type Error struct {
	Code      Code
	RequestID string
	Item      string
	Status    Status
	Expected  []Status
	Detail    string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.RequestID != "" {
		fmt.Fprintf(&b, " request=%s", e.RequestID)
	}
	if e.Item != "" {
		fmt.Fprintf(&b, " item=%q", e.Item)
	}
	if e.Status != "" {
		fmt.Fprintf(&b, " status=%s", e.Status)
	}
	if len(e.Expected) > 0 {
		parts := make([]string, len(e.Expected))
		for i, s := range e.Expected {
			parts[i] = string(s)
		}
		fmt.Fprintf(&b, " expected=%s", strings.Join(parts, "|"))
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

// CodeOf extracts the engine code from err, or "" for foreign errors.
func CodeOf(err error) Code {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// NotFoundError is used by ledger implementations for unknown request ids.
func NotFoundError(requestID string) *Error {
	return &Error{Code: CodeNotFound, RequestID: requestID}
}

// StaleStateError is returned when a compare-and-swap loses the race. The
// caller must refetch and retry.
func StaleStateError(requestID string) *Error {
	return &Error{Code: CodeStaleState, RequestID: requestID, Detail: "request was modified concurrently, refetch and retry"}
}

func invalidTransition(requestID string, got Status, want ...Status) *Error {
	return &Error{Code: CodeInvalidTransition, RequestID: requestID, Status: got, Expected: want}
}

func incompleteQuotation(requestID, item, detail string) *Error {
	return &Error{Code: CodeIncompleteQuotation, RequestID: requestID, Item: item, Detail: detail}
}

func conflictingQuotation(requestID string) *Error {
	return &Error{Code: CodeConflictingQuotation, RequestID: requestID, Detail: "a quotation is already bound to this request"}
}

func invalidWeight(requestID, detail string) *Error {
	return &Error{Code: CodeInvalidWeight, RequestID: requestID, Detail: detail}
}

func invalidReceiptQuantity(requestID, item, detail string) *Error {
	return &Error{Code: CodeInvalidReceiptQuantity, RequestID: requestID, Item: item, Detail: detail}
}
