package repository

import (
	"context"
	"fmt"

	"carwash-web/internal/data/entity"
	"carwash-web/pkg/apiclient"

	"go.uber.org/zap"
)

// BookingFilter narrows the admin listing by booking date, both ends inclusive.
type BookingFilter struct {
	DateFrom string `url:"dateFrom,omitempty"`
	DateTo   string `url:"dateTo,omitempty"`
}

type NewBooking struct {
	CustomerName    string `json:"customerName"`
	CustomerContact string `json:"customerContact"`
	CustomerEmail   string `json:"customerEmail,omitempty"`
	Service         string `json:"service"`
	Date            string `json:"date"`
	Time            string `json:"time"`
}

// BookingPatch carries a status change, a reschedule, or both.
type BookingPatch struct {
	Status entity.BookingStatus `json:"status,omitempty"`
	Date   string               `json:"date,omitempty"`
	Time   string               `json:"time,omitempty"`
}

type trackQuery struct {
	Contact string `url:"contact"`
}

type BookingRepository interface {
	List(ctx context.Context, filter BookingFilter) ([]entity.Booking, error)
	ListMine(ctx context.Context) ([]entity.Booking, error)
	Create(ctx context.Context, booking NewBooking) (*entity.Booking, error)
	Update(ctx context.Context, id string, patch BookingPatch) (*entity.Booking, error)
	Track(ctx context.Context, reference, contact string) (*entity.Booking, error)
}

type bookingRepository struct {
	api *apiclient.Client
	log *zap.Logger
}

func NewBookingRepository(api *apiclient.Client, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		api: api,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]entity.Booking, error) {
	var bookings []entity.Booking
	if err := r.api.Get(ctx, "/bookings", filter, &bookings); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return normalizeBookings(bookings), nil
}

func (r *bookingRepository) ListMine(ctx context.Context) ([]entity.Booking, error) {
	var bookings []entity.Booking
	if err := r.api.Get(ctx, "/bookings/my", nil, &bookings); err != nil {
		return nil, fmt.Errorf("list own bookings: %w", err)
	}
	return normalizeBookings(bookings), nil
}

func (r *bookingRepository) Create(ctx context.Context, booking NewBooking) (*entity.Booking, error) {
	var created entity.Booking
	if err := r.api.PostJSON(ctx, "/bookings", booking, &created); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	created.Normalize()

	r.log.Info("Booking created", zap.String("reference", created.BookingReference))
	return &created, nil
}

func (r *bookingRepository) Update(ctx context.Context, id string, patch BookingPatch) (*entity.Booking, error) {
	var updated entity.Booking
	if err := r.api.PatchJSON(ctx, "/bookings/"+apiclient.PathEscape(id), patch, &updated); err != nil {
		return nil, fmt.Errorf("update booking %s: %w", id, err)
	}
	updated.Normalize()
	return &updated, nil
}

func (r *bookingRepository) Track(ctx context.Context, reference, contact string) (*entity.Booking, error) {
	var booking entity.Booking
	path := "/bookings/track/" + apiclient.PathEscape(reference)
	if err := r.api.Get(ctx, path, trackQuery{Contact: contact}, &booking); err != nil {
		return nil, fmt.Errorf("track booking: %w", err)
	}
	booking.Normalize()
	return &booking, nil
}

func normalizeBookings(bookings []entity.Booking) []entity.Booking {
	if bookings == nil {
		return []entity.Booking{}
	}
	for i := range bookings {
		bookings[i].Normalize()
	}
	return bookings
}
