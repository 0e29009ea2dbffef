package response

import (
	"carwash-web/internal/data/entity"
	"carwash-web/internal/workflow"
)

// AdminDashboard is everything the admin page renders after one load.
type AdminDashboard struct {
	Section   workflow.Section
	Partition workflow.StatusPartition
	Bookings  []entity.Booking
	Services  []entity.Service
	DateFrom  string
	DateTo    string
	Editing   *entity.Service
}

// Visible is the booking list for the selected section.
func (d AdminDashboard) Visible() []entity.Booking {
	return d.Partition.In(d.Section)
}

