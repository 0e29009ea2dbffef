package workflow

import (
	"testing"

	"carwash-web/internal/data/entity"
)

func TestCanTransitionEdgeSet(t *testing.T) {
	legal := map[entity.BookingStatus][]entity.BookingStatus{
		entity.BookingStatusPending:    {entity.BookingStatusApproved, entity.BookingStatusRejected},
		entity.BookingStatusApproved:   {entity.BookingStatusInProgress, entity.BookingStatusRejected},
		entity.BookingStatusInProgress: {entity.BookingStatusCompleted, entity.BookingStatusRejected},
	}

	for _, from := range entity.BookingStatuses {
		for _, to := range entity.BookingStatuses {
			want := false
			for _, next := range legal[from] {
				if next == to {
					want = true
				}
			}
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%q, %q) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatusesOfferNothing(t *testing.T) {
	for _, status := range []entity.BookingStatus{entity.BookingStatusCompleted, entity.BookingStatusRejected} {
		if !IsTerminal(status) {
			t.Fatalf("expected %q to be terminal", status)
		}
		if CanReschedule(status) {
			t.Fatalf("expected %q to refuse reschedule", status)
		}
		if actions := Actions(entity.Booking{Status: status}); len(actions) != 0 {
			t.Fatalf("expected no actions for %q, got %v", status, actions)
		}
	}
	if CanTransition(entity.BookingStatusCompleted, entity.BookingStatusApproved) {
		t.Fatalf("Completed -> Approved must be illegal")
	}
}

func TestRejectReachableFromEveryOpenStatus(t *testing.T) {
	for _, status := range []entity.BookingStatus{
		entity.BookingStatusPending,
		entity.BookingStatusApproved,
		entity.BookingStatusInProgress,
	} {
		if IsTerminal(status) {
			t.Fatalf("expected %q to be open", status)
		}
		if !CanReschedule(status) {
			t.Fatalf("expected %q to allow reschedule", status)
		}
		if !CanTransition(status, entity.BookingStatusRejected) {
			t.Fatalf("expected %q -> Rejected to be legal", status)
		}
	}
}

func TestActionsOnlyOfferLegalEdges(t *testing.T) {
	for _, status := range entity.BookingStatuses {
		for _, action := range Actions(entity.Booking{Status: status}) {
			if !CanTransition(status, action.Status) {
				t.Fatalf("action %q offered for %q is not a legal edge", action.Label, status)
			}
			if action.Label == "" {
				t.Fatalf("action to %q has no label", action.Status)
			}
		}
	}

	actions := Actions(entity.Booking{Status: entity.BookingStatusPending})
	if len(actions) != 2 || actions[0].Label != "Approve" || actions[1].Label != "Reject" {
		t.Fatalf("unexpected pending actions: %v", actions)
	}
}

func TestUnknownStatusHasNoEdges(t *testing.T) {
	if CanReschedule("Cancelled") {
		t.Fatalf("unknown status must not be reschedulable")
	}
	if len(NextStatuses("Cancelled")) != 0 {
		t.Fatalf("unknown status must have no next statuses")
	}
}

func TestNextStatusesReturnsCopy(t *testing.T) {
	next := NextStatuses(entity.BookingStatusPending)
	next[0] = entity.BookingStatusCompleted
	if CanTransition(entity.BookingStatusPending, entity.BookingStatusCompleted) {
		t.Fatalf("mutating NextStatuses result changed the edge set")
	}
}
