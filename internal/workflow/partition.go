package workflow

import (
	"time"

	"carwash-web/internal/data/entity"
)

// Section names a tab of the admin dashboard.
type Section string

const (
	SectionWaiting   Section = "waiting"
	SectionActive    Section = "active"
	SectionCompleted Section = "completed"
	SectionServices  Section = "services"
)

// ParseSection falls back to the waiting tab for anything unknown.
func ParseSection(s string) Section {
	switch Section(s) {
	case SectionActive, SectionCompleted, SectionServices:
		return Section(s)
	default:
		return SectionWaiting
	}
}

// SectionOf returns the admin section a status belongs to. ok is false for
// statuses outside the closed set.
func SectionOf(s entity.BookingStatus) (Section, bool) {
	switch s {
	case entity.BookingStatusPending:
		return SectionWaiting, true
	case entity.BookingStatusApproved, entity.BookingStatusInProgress:
		return SectionActive, true
	case entity.BookingStatusCompleted, entity.BookingStatusRejected:
		return SectionCompleted, true
	default:
		return "", false
	}
}

// StatusPartition is the admin view of a booking collection.
type StatusPartition struct {
	Waiting             []entity.Booking
	Active              []entity.Booking
	CompletedOrRejected []entity.Booking
	// Unrecognized holds bookings whose status is outside the closed set.
	Unrecognized []entity.Booking
}

// In returns the bookings of one section.
func (p StatusPartition) In(section Section) []entity.Booking {
	switch section {
	case SectionWaiting:
		return p.Waiting
	case SectionActive:
		return p.Active
	case SectionCompleted:
		return p.CompletedOrRejected
	default:
		return nil
	}
}

// Partition splits bookings by status alone, preserving input order.
func Partition(bookings []entity.Booking) StatusPartition {
	var p StatusPartition
	for _, b := range bookings {
		section, ok := SectionOf(b.Status)
		if !ok {
			p.Unrecognized = append(p.Unrecognized, b)
			continue
		}
		switch section {
		case SectionWaiting:
			p.Waiting = append(p.Waiting, b)
		case SectionActive:
			p.Active = append(p.Active, b)
		case SectionCompleted:
			p.CompletedOrRejected = append(p.CompletedOrRejected, b)
		}
	}
	return p
}

// DatePartition is the customer view of their own bookings.
type DatePartition struct {
	Current []entity.Booking
	Past    []entity.Booking
}

// IsPast reports whether b belongs to the customer's history at now. Terminal
// bookings are always past; otherwise the booked calendar day is compared with
// now's calendar day in now's location, so a booking stays current for all of
// its day. An unreadable date never makes a booking past.
func IsPast(b entity.Booking, now time.Time) bool {
	if IsTerminal(b.Status) {
		return true
	}
	day, ok := b.Day(now.Location())
	if !ok {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.Before(today)
}

// SplitByDate divides bookings into current and past at now.
func SplitByDate(bookings []entity.Booking, now time.Time) DatePartition {
	var p DatePartition
	for _, b := range bookings {
		if IsPast(b, now) {
			p.Past = append(p.Past, b)
		} else {
			p.Current = append(p.Current, b)
		}
	}
	return p
}
