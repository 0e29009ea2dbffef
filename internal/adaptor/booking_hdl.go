package adaptor

import (
	"net/http"

	"carwash-web/internal/data/entity"
	"carwash-web/internal/dto/request"
	"carwash-web/internal/session"
	"carwash-web/internal/usecase"
	"carwash-web/internal/view"
	"carwash-web/pkg/apiclient"
	"carwash-web/pkg/utils"

	"go.uber.org/zap"
)

// BookingHandler serves the public booking and tracking pages.
type BookingHandler struct {
	base
	bookings usecase.BookingService
	catalog  usecase.CatalogService
}

func NewBookingHandler(bookings usecase.BookingService, catalog usecase.CatalogService, sessions *session.Manager, views *view.Renderer, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		base:     newBase(sessions, views, log, "booking"),
		bookings: bookings,
		catalog:  catalog,
	}
}

// BookForm handles GET /book
func (h *BookingHandler) BookForm(w http.ResponseWriter, r *http.Request) {
	var profile *entity.Profile
	if s := h.sessions.GetSession(r.Context()); s != nil && s.Role == entity.RoleCustomer {
		profile = &s.User
	}
	form := usecase.PrefillBooking(profile)
	form.Service = r.URL.Query().Get("service")

	h.renderBook(w, r, http.StatusOK, view.BookData{Form: form}, nil)
}

// Book handles POST /book
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if err := utils.DecodeForm(r, &req); err != nil {
		h.renderBook(w, r, http.StatusBadRequest, view.BookData{Form: req}, &failure{
			status: http.StatusBadRequest, message: "Please correct the highlighted fields.", fields: utils.FormErrors(err),
		})
		return
	}

	created, err := h.bookings.CreateBooking(r.Context(), &req)
	if err != nil {
		if s := h.sessions.GetSession(r.Context()); s != nil && apiclient.IsUnauthorized(err) {
			h.expireSession(w, r, s.Role)
			return
		}
		f := h.describe(err, "create booking", "Error submitting booking.")
		h.renderBook(w, r, f.status, view.BookData{Form: req}, &f)
		return
	}

	page := view.BookData{Created: created}
	if s := h.sessions.GetSession(r.Context()); s != nil && s.Role == entity.RoleCustomer {
		page.Form = usecase.PrefillBooking(&s.User)
	}
	h.renderBook(w, r, http.StatusCreated, page, nil)
}

// renderBook loads the active services for the form. A catalog failure is
// shown only when nothing else went wrong.
func (h *BookingHandler) renderBook(w http.ResponseWriter, r *http.Request, status int, data view.BookData, f *failure) {
	services, err := h.catalog.ActiveServices(r.Context())
	if err != nil && f == nil {
		cf := h.describe(err, "list services", "Services could not be loaded. Please try again.")
		f = &cf
		status = cf.status
	}
	data.Services = services

	page := h.page(r, data)
	if f != nil {
		f.apply(&page)
	}
	h.render(w, status, view.PageBook, page)
}

// TrackForm handles GET /track
func (h *BookingHandler) TrackForm(w http.ResponseWriter, r *http.Request) {
	form := request.TrackBookingRequest{BookingReference: r.URL.Query().Get("ref")}
	h.render(w, http.StatusOK, view.PageTrack, h.page(r, view.TrackData{Form: form}))
}

// Track handles POST /track. A failed lookup shows no booking data.
func (h *BookingHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req request.TrackBookingRequest
	if err := utils.DecodeForm(r, &req); err != nil {
		page := h.page(r, view.TrackData{})
		failure{message: "Please correct the highlighted fields.", fields: utils.FormErrors(err)}.apply(&page)
		h.render(w, http.StatusBadRequest, view.PageTrack, page)
		return
	}

	booking, err := h.bookings.TrackBooking(r.Context(), &req)
	if err != nil {
		f := h.describe(err, "track booking", "Could not find this booking.")
		page := h.page(r, view.TrackData{Form: req})
		f.apply(&page)
		h.render(w, f.status, view.PageTrack, page)
		return
	}

	h.render(w, http.StatusOK, view.PageTrack, h.page(r, view.TrackData{Form: req, Booking: booking}))
}
