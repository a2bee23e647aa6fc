package procurement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"REQUESTED", StatusRequested, true},
		{"quoted", StatusQuoted, true},
		{" Approved ", StatusApproved, true},
		{"READY_FOR_PICKUP", StatusReadyForPickup, true},
		{"ASSIGNED", StatusRequested, true},
		{"assigned", StatusRequested, true},
		{"BIDDING", StatusQuoted, true},
		{"NEW", StatusApproved, true},
		{"SHIPPED", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseStatus(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusRejected, StatusCancelled} {
		assert.True(t, s.Terminal(), "%s", s)
	}
	for _, s := range []Status{StatusRequested, StatusQuoted, StatusApproved, StatusPreparing, StatusReadyForPickup} {
		assert.False(t, s.Terminal(), "%s", s)
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusRequested, StatusQuoted},
		{StatusRequested, StatusRejected},
		{StatusQuoted, StatusApproved},
		{StatusQuoted, StatusRejected},
		{StatusApproved, StatusPreparing},
		{StatusApproved, StatusRejected},
		{StatusPreparing, StatusReadyForPickup},
		{StatusReadyForPickup, StatusCompleted},
		{StatusRequested, StatusCancelled},
		{StatusPreparing, StatusCancelled},
		{StatusReadyForPickup, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to Status }{
		{StatusRequested, StatusApproved},
		{StatusRequested, StatusCompleted},
		{StatusQuoted, StatusPreparing},
		{StatusPreparing, StatusRejected},
		{StatusPreparing, StatusCompleted},
		{StatusReadyForPickup, StatusRejected},
		{StatusCompleted, StatusCancelled},
		{StatusRejected, StatusCancelled},
		{StatusCancelled, StatusCancelled},
		{StatusCompleted, StatusRequested},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
