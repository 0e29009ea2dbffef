package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carwash-web/internal/data/entity"
	"carwash-web/internal/data/repository"
	"carwash-web/internal/dto/request"
	"carwash-web/internal/dto/response"
	"carwash-web/internal/workflow"
	"carwash-web/pkg/apiclient"
	"carwash-web/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BookingService interface {
	// Customer-facing
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*entity.Booking, error)
	TrackBooking(ctx context.Context, req *request.TrackBookingRequest) (*entity.Booking, error)
	MyBookings(ctx context.Context) (*workflow.DatePartition, error)

	// Admin
	AdminDashboard(ctx context.Context, q *request.AdminDashboardQuery) (*response.AdminDashboard, error)
	ChangeStatus(ctx context.Context, bookingID string, req *request.StatusChangeRequest) (*entity.Booking, error)
	Reschedule(ctx context.Context, bookingID string, req *request.RescheduleRequest) (*entity.Booking, error)
}

type bookingService struct {
	repo *repository.Repository
	loc  *time.Location
	now  func() time.Time
	log  *zap.Logger
}

func NewBookingService(repo *repository.Repository, loc *time.Location, log *zap.Logger) BookingService {
	return &bookingService{
		repo: repo,
		loc:  loc,
		now:  time.Now,
		log:  log.With(zap.String("service", "booking")),
	}
}

// PrefillBooking fills the contact fields of an empty booking form from a
// customer profile.
func PrefillBooking(profile *entity.Profile) request.CreateBookingRequest {
	if profile == nil {
		return request.CreateBookingRequest{}
	}
	return request.CreateBookingRequest{
		CustomerName:    profile.Name,
		CustomerContact: profile.Contact,
		CustomerEmail:   profile.Email,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*entity.Booking, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerContact = strings.TrimSpace(req.CustomerContact)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	booking, err := s.repo.Booking.Create(ctx, repository.NewBooking{
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		CustomerEmail:   req.CustomerEmail,
		Service:         req.Service,
		Date:            req.Date,
		Time:            req.Time,
	})
	if err != nil {
		s.log.Warn("Create booking failed", zap.String("service_id", req.Service), zap.Error(err))
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) TrackBooking(ctx context.Context, req *request.TrackBookingRequest) (*entity.Booking, error) {
	req.BookingReference = strings.TrimSpace(req.BookingReference)
	req.Contact = strings.TrimSpace(req.Contact)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	booking, err := s.repo.Booking.Track(ctx, req.BookingReference, req.Contact)
	if err != nil {
		if apiclient.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, req.BookingReference)
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) MyBookings(ctx context.Context) (*workflow.DatePartition, error) {
	bookings, err := s.repo.Booking.ListMine(ctx)
	if err != nil {
		return nil, err
	}

	split := workflow.SplitByDate(bookings, s.now().In(s.loc))
	return &split, nil
}

// AdminDashboard loads bookings and the full catalog together. Either load
// failing fails the page.
func (s *bookingService) AdminDashboard(ctx context.Context, q *request.AdminDashboardQuery) (*response.AdminDashboard, error) {
	if errs := utils.ValidateStruct(q); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	if q.DateFrom != "" && q.DateTo != "" && q.DateTo < q.DateFrom {
		return nil, validationFailed(map[string]string{"dateTo": "Must be on or after the start date"})
	}

	var (
		bookings []entity.Booking
		services []entity.Service
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = s.repo.Booking.List(gctx, repository.BookingFilter{DateFrom: q.DateFrom, DateTo: q.DateTo})
		return err
	})
	g.Go(func() error {
		var err error
		services, err = s.repo.Service.List(gctx, repository.ServiceQuery{Active: "all"})
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("Dashboard load failed", zap.Error(err))
		return nil, err
	}

	dashboard := &response.AdminDashboard{
		Section:   workflow.ParseSection(q.Section),
		Partition: workflow.Partition(bookings),
		Bookings:  bookings,
		Services:  services,
		DateFrom:  q.DateFrom,
		DateTo:    q.DateTo,
	}
	if q.Edit != "" {
		for i := range services {
			if services[i].ID == q.Edit {
				dashboard.Editing = &services[i]
				break
			}
		}
	}
	if n := len(dashboard.Partition.Unrecognized); n > 0 {
		s.log.Warn("Bookings with unrecognized status", zap.Int("count", n))
	}
	return dashboard, nil
}

// ChangeStatus re-reads the booking and applies the change only when the
// workflow allows it from the status the backend holds now.
func (s *bookingService) ChangeStatus(ctx context.Context, bookingID string, req *request.StatusChangeRequest) (*entity.Booking, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	to, ok := entity.ParseBookingStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, req.Status)
	}

	current, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if workflow.IsTerminal(current.Status) {
		return nil, fmt.Errorf("booking %s is %s: %w", current.BookingReference, current.Status, ErrBookingClosed)
	}
	if !workflow.CanTransition(current.Status, to) {
		return nil, fmt.Errorf("%s -> %s: %w", current.Status, to, ErrTransitionNotAllowed)
	}

	updated, err := s.repo.Booking.Update(ctx, bookingID, repository.BookingPatch{Status: to})
	if err != nil {
		s.log.Warn("Status change failed", zap.String("booking_id", bookingID), zap.Error(err))
		return nil, err
	}

	s.log.Info("Booking status changed",
		zap.String("booking_id", bookingID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(to)),
	)
	return updated, nil
}

func (s *bookingService) Reschedule(ctx context.Context, bookingID string, req *request.RescheduleRequest) (*entity.Booking, error) {
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	current, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !workflow.CanReschedule(current.Status) {
		return nil, fmt.Errorf("booking %s is %s: %w", current.BookingReference, current.Status, ErrBookingClosed)
	}

	updated, err := s.repo.Booking.Update(ctx, bookingID, repository.BookingPatch{Date: req.Date, Time: req.Time})
	if err != nil {
		s.log.Warn("Reschedule failed", zap.String("booking_id", bookingID), zap.Error(err))
		return nil, err
	}

	s.log.Info("Booking rescheduled",
		zap.String("booking_id", bookingID),
		zap.String("date", req.Date),
		zap.String("time", req.Time),
	)
	return updated, nil
}

// findBooking reads the booking from the admin listing; the backend has no
// single-booking endpoint for admins.
func (s *bookingService) findBooking(ctx context.Context, bookingID string) (*entity.Booking, error) {
	bookings, err := s.repo.Booking.List(ctx, repository.BookingFilter{})
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].ID == bookingID {
			return &bookings[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
}
