package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "Pending"
	BookingStatusApproved   BookingStatus = "Approved"
	BookingStatusInProgress BookingStatus = "In Progress"
	BookingStatusCompleted  BookingStatus = "Completed"
	BookingStatusRejected   BookingStatus = "Rejected"
)

// BookingStatuses lists the closed status set in lifecycle order.
var BookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusApproved,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusRejected,
}

// ParseBookingStatus accepts the canonical labels case-insensitively, plus the
// snake and camel spellings of "In Progress".
func ParseBookingStatus(s string) (BookingStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	if normalized == "inprogress" {
		normalized = "in progress"
	}
	for _, status := range BookingStatuses {
		if strings.ToLower(string(status)) == normalized {
			return status, true
		}
	}
	return "", false
}

// ServiceRef is the booking's service. The backend sends either the bare id or
// the populated service document.
type ServiceRef struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Duration int     `json:"duration,omitempty"`
}

func (s *ServiceRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ServiceRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("decode service id: %w", err)
		}
		*s = ServiceRef{ID: id}
		return nil
	}

	type plain ServiceRef
	var doc plain
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode service: %w", err)
	}
	*s = ServiceRef(doc)
	return nil
}

type Booking struct {
	Base
	BookingReference string        `json:"bookingReference"`
	CustomerName     string        `json:"customerName"`
	CustomerContact  string        `json:"customerContact"`
	CustomerEmail    string        `json:"customerEmail,omitempty"`
	Service          ServiceRef    `json:"service"`
	Date             string        `json:"date"`
	Time             string        `json:"time"`
	Status           BookingStatus `json:"status"`
}

// Normalize maps the status to its canonical label. A missing status is the
// backend default, Pending. Unknown labels are kept as sent.
func (b *Booking) Normalize() {
	if strings.TrimSpace(string(b.Status)) == "" {
		b.Status = BookingStatusPending
		return
	}
	if status, ok := ParseBookingStatus(string(b.Status)); ok {
		b.Status = status
	}
}

// Day returns the booking's calendar date in loc. The backend sends either
// "2006-01-02" or a full timestamp whose date part is the booked day.
func (b Booking) Day(loc *time.Location) (time.Time, bool) {
	raw := strings.TrimSpace(b.Date)
	if len(raw) < len("2006-01-02") {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", raw[:10], loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
