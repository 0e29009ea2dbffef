// Package workflow holds the booking lifecycle: which status changes are legal
// and how a booking collection is split into the dashboard sections.
package workflow

import (
	"carwash-web/internal/data/entity"
)

// allowedTransitions is the complete edge set. Statuses missing as keys have no
// outgoing edges.
var allowedTransitions = map[entity.BookingStatus][]entity.BookingStatus{
	entity.BookingStatusPending:    {entity.BookingStatusApproved, entity.BookingStatusRejected},
	entity.BookingStatusApproved:   {entity.BookingStatusInProgress, entity.BookingStatusRejected},
	entity.BookingStatusInProgress: {entity.BookingStatusCompleted, entity.BookingStatusRejected},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to entity.BookingStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s entity.BookingStatus) []entity.BookingStatus {
	next := allowedTransitions[s]
	out := make([]entity.BookingStatus, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether s is Completed or Rejected.
func IsTerminal(s entity.BookingStatus) bool {
	return s == entity.BookingStatusCompleted || s == entity.BookingStatusRejected
}

// CanReschedule reports whether the date and time of a booking in status s may
// still change. Rescheduling never changes the status itself.
func CanReschedule(s entity.BookingStatus) bool {
	_, known := allowedTransitions[s]
	return known
}

// Action is one control offered for a booking row.
type Action struct {
	Label  string
	Status entity.BookingStatus
}

var actionLabels = map[entity.BookingStatus]string{
	entity.BookingStatusApproved:   "Approve",
	entity.BookingStatusInProgress: "In Progress",
	entity.BookingStatusCompleted:  "Complete",
	entity.BookingStatusRejected:   "Reject",
}

// Actions lists the status controls for b, derived from the edge set only.
func Actions(b entity.Booking) []Action {
	next := allowedTransitions[b.Status]
	actions := make([]Action, 0, len(next))
	for _, to := range next {
		actions = append(actions, Action{Label: actionLabels[to], Status: to})
	}
	return actions
}
