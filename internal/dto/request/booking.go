package request

type CreateBookingRequest struct {
	CustomerName    string `schema:"customerName" json:"customerName" validate:"required,min=2,max=100"`
	CustomerContact string `schema:"customerContact" json:"customerContact" validate:"required,min=7,max=20"`
	CustomerEmail   string `schema:"customerEmail" json:"customerEmail,omitempty" validate:"omitempty,email"`
	Service         string `schema:"service" json:"service" validate:"required"`
	Date            string `schema:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `schema:"time" json:"time" validate:"required,datetime=15:04"`
}

type TrackBookingRequest struct {
	BookingReference string `schema:"bookingReference" validate:"required,max=64"`
	Contact          string `schema:"contact" validate:"required"`
}

// StatusChangeRequest carries the dashboard view it was posted from so the
// redirect lands on the same section and date range.
type StatusChangeRequest struct {
	Status   string `schema:"status" validate:"required"`
	Section  string `schema:"section"`
	DateFrom string `schema:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `schema:"dateTo" validate:"omitempty,datetime=2006-01-02"`
}

func (r StatusChangeRequest) View() AdminDashboardQuery {
	return AdminDashboardQuery{Section: r.Section, DateFrom: r.DateFrom, DateTo: r.DateTo}
}

type RescheduleRequest struct {
	Date     string `schema:"date" validate:"required,datetime=2006-01-02"`
	Time     string `schema:"time" validate:"required,datetime=15:04"`
	Section  string `schema:"section"`
	DateFrom string `schema:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `schema:"dateTo" validate:"omitempty,datetime=2006-01-02"`
}

func (r RescheduleRequest) View() AdminDashboardQuery {
	return AdminDashboardQuery{Section: r.Section, DateFrom: r.DateFrom, DateTo: r.DateTo}
}

// AdminDashboardQuery is read from the dashboard's query string.
type AdminDashboardQuery struct {
	Section  string `schema:"section"`
	DateFrom string `schema:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `schema:"dateTo" validate:"omitempty,datetime=2006-01-02"`
	Edit     string `schema:"edit"`
}
