package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"carwash-web/internal/data/entity"
	"carwash-web/internal/data/repository"
	"carwash-web/internal/dto/request"
	"carwash-web/internal/fakebackend"
	"carwash-web/internal/workflow"
	"carwash-web/pkg/apiclient"
	"carwash-web/pkg/utils"

	"go.uber.org/zap"
)

type tokenKey struct{}

func withToken(token string) context.Context {
	return context.WithValue(context.Background(), tokenKey{}, token)
}

func contextToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

func newTestService(t *testing.T) (*Service, *fakebackend.Backend) {
	t.Helper()
	backend := fakebackend.New(t)

	api, err := apiclient.New(backend.URL(), apiclient.WithTokenSource(contextToken))
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	config := &utils.Config{App: utils.AppConfig{Timezone: "UTC"}}
	return NewService(repository.NewRepository(api, zap.NewNop()), config, zap.NewNop()), backend
}

func seedService(backend *fakebackend.Backend) entity.Service {
	return backend.AddService(entity.Service{Name: "Full wash", Price: 20, Duration: 45, IsActive: true})
}

func TestAdminLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Auth.AdminLogin(ctx, &request.AdminLoginRequest{Username: " admin ", Password: fakebackend.AdminPassword})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if session.Role != entity.RoleAdmin || session.Token != fakebackend.AdminToken || session.User.Username != "admin" {
		t.Fatalf("unexpected session %+v", session)
	}

	_, err = svc.Auth.AdminLogin(ctx, &request.AdminLoginRequest{Username: "admin", Password: "wrong"})
	if !apiclient.IsUnauthorized(err) || apiclient.Message(err) != "Invalid credentials" {
		t.Fatalf("expected backend 401 message, got %v", err)
	}

	var verr *ValidationError
	_, err = svc.Auth.AdminLogin(ctx, &request.AdminLoginRequest{})
	if !errors.As(err, &verr) || verr.Fields["username"] == "" || verr.Fields["password"] == "" {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCustomerRegisterThenLogin(t *testing.T) {
	svc, backend := newTestService(t)
	ctx := context.Background()

	reg := &request.CustomerRegisterRequest{Name: "Ana", Contact: "0700123456", Email: "Ana@Example.com", Password: "secret1"}
	session, err := svc.Auth.CustomerRegister(ctx, reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.Role != entity.RoleCustomer || session.User.Contact != "0700123456" || session.User.Email != "ana@example.com" {
		t.Fatalf("unexpected session %+v", session)
	}

	login, err := svc.Auth.CustomerLogin(ctx, &request.CustomerLoginRequest{Email: "ana@example.com", Password: "secret1"})
	if err != nil || login.Token != fakebackend.CustomerToken("ana@example.com") {
		t.Fatalf("login: %+v, %v", login, err)
	}

	if _, err := svc.Auth.CustomerRegister(ctx, reg); apiclient.StatusCode(err) != http.StatusConflict {
		t.Fatalf("expected conflict on duplicate registration, got %v", err)
	}
	if n := backend.Count(http.MethodPost, "/api/auth/customer/register"); n != 2 {
		t.Fatalf("expected 2 register calls, got %d", n)
	}
}

func TestCreateBookingValidatesBeforeCallingBackend(t *testing.T) {
	svc, backend := newTestService(t)

	_, err := svc.Booking.CreateBooking(context.Background(), &request.CreateBookingRequest{
		CustomerName: "Ana", CustomerContact: "0700123456", Service: "svc-1", Date: "20/10/2026", Time: "9am",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["date"] == "" || verr.Fields["time"] == "" {
		t.Fatalf("expected date and time errors, got %v", err)
	}
	if n := backend.Count(http.MethodPost, "/api/bookings"); n != 0 {
		t.Fatalf("expected no backend call, got %d", n)
	}
}

func TestPrefillBooking(t *testing.T) {
	form := PrefillBooking(&entity.Profile{Name: "Ana", Contact: "0700", Email: "a@b.c"})
	if form.CustomerName != "Ana" || form.CustomerContact != "0700" || form.CustomerEmail != "a@b.c" {
		t.Fatalf("unexpected prefill %+v", form)
	}
	if PrefillBooking(nil) != (request.CreateBookingRequest{}) {
		t.Fatal("expected empty form without a profile")
	}
}

func TestBookingLifecycle(t *testing.T) {
	svc, backend := newTestService(t)
	service := seedService(backend)
	admin := withToken(fakebackend.AdminToken)

	created, err := svc.Booking.CreateBooking(context.Background(), &request.CreateBookingRequest{
		CustomerName: "Ana", CustomerContact: "0700123456", Service: service.ID, Date: "2026-10-20", Time: "09:30",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != entity.BookingStatusPending || created.BookingReference == "" {
		t.Fatalf("unexpected created booking %+v", created)
	}

	sectionOf := func() workflow.Section {
		t.Helper()
		dash, err := svc.Booking.AdminDashboard(admin, &request.AdminDashboardQuery{})
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		for _, section := range []workflow.Section{workflow.SectionWaiting, workflow.SectionActive, workflow.SectionCompleted} {
			for _, b := range dash.Partition.In(section) {
				if b.ID == created.ID {
					return section
				}
			}
		}
		t.Fatalf("booking %s missing from every section", created.ID)
		return ""
	}

	if got := sectionOf(); got != workflow.SectionWaiting {
		t.Fatalf("expected waiting, got %s", got)
	}

	steps := []struct {
		status  entity.BookingStatus
		section workflow.Section
	}{
		{entity.BookingStatusApproved, workflow.SectionActive},
		{entity.BookingStatusInProgress, workflow.SectionActive},
		{entity.BookingStatusCompleted, workflow.SectionCompleted},
	}
	for _, step := range steps {
		updated, err := svc.Booking.ChangeStatus(admin, created.ID, &request.StatusChangeRequest{Status: string(step.status)})
		if err != nil {
			t.Fatalf("change to %s: %v", step.status, err)
		}
		if updated.Status != step.status {
			t.Fatalf("expected %s, got %s", step.status, updated.Status)
		}
		if got := sectionOf(); got != step.section {
			t.Fatalf("after %s expected section %s, got %s", step.status, step.section, got)
		}
	}
}

func TestChangeStatusRejectsIllegalEdge(t *testing.T) {
	svc, backend := newTestService(t)
	bk := backend.AddBooking(entity.Booking{Status: entity.BookingStatusPending, Date: "2026-10-20"})
	admin := withToken(fakebackend.AdminToken)

	_, err := svc.Booking.ChangeStatus(admin, bk.ID, &request.StatusChangeRequest{Status: "Completed"})
	if !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
	}

	_, err = svc.Booking.ChangeStatus(admin, bk.ID, &request.StatusChangeRequest{Status: "Archived"})
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}

	_, err = svc.Booking.ChangeStatus(admin, "missing", &request.StatusChangeRequest{Status: "Approved"})
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}

	if n := backend.Count(http.MethodPatch, "/api/bookings/"+bk.ID); n != 0 {
		t.Fatalf("expected no PATCH, got %d", n)
	}
}

func TestSecondOperatorSeesClosedBooking(t *testing.T) {
	svc, backend := newTestService(t)
	bk := backend.AddBooking(entity.Booking{Status: entity.BookingStatusInProgress, Date: "2026-10-20"})
	admin := withToken(fakebackend.AdminToken)

	// both operators saw In Progress; the first completes it
	if _, err := svc.Booking.ChangeStatus(admin, bk.ID, &request.StatusChangeRequest{Status: "Completed"}); err != nil {
		t.Fatalf("first operator: %v", err)
	}

	_, err := svc.Booking.ChangeStatus(admin, bk.ID, &request.StatusChangeRequest{Status: "Rejected"})
	if !errors.Is(err, ErrBookingClosed) {
		t.Fatalf("expected ErrBookingClosed, got %v", err)
	}
	if got, _ := backend.Booking(bk.ID); got.Status != entity.BookingStatusCompleted {
		t.Fatalf("expected status to stay Completed, got %s", got.Status)
	}
}

func TestReschedule(t *testing.T) {
	svc, backend := newTestService(t)
	open := backend.AddBooking(entity.Booking{Status: entity.BookingStatusApproved, Date: "2026-10-20", Time: "09:00"})
	closed := backend.AddBooking(entity.Booking{Status: entity.BookingStatusRejected, Date: "2026-10-20", Time: "09:00"})
	admin := withToken(fakebackend.AdminToken)

	updated, err := svc.Booking.Reschedule(admin, open.ID, &request.RescheduleRequest{Date: "2026-10-22", Time: "14:15"})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if updated.Date != "2026-10-22" || updated.Time != "14:15" || updated.Status != entity.BookingStatusApproved {
		t.Fatalf("unexpected rescheduled booking %+v", updated)
	}

	if _, err := svc.Booking.Reschedule(admin, closed.ID, &request.RescheduleRequest{Date: "2026-10-22", Time: "14:15"}); !errors.Is(err, ErrBookingClosed) {
		t.Fatalf("expected ErrBookingClosed, got %v", err)
	}

	var verr *ValidationError
	if _, err := svc.Booking.Reschedule(admin, open.ID, &request.RescheduleRequest{Date: "tomorrow"}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdminDashboardJoin(t *testing.T) {
	svc, backend := newTestService(t)
	backend.AddService(entity.Service{Name: "Retired", IsActive: false})
	active := seedService(backend)
	backend.AddBooking(entity.Booking{Status: entity.BookingStatusPending, Date: "2026-10-01"})
	backend.AddBooking(entity.Booking{Status: entity.BookingStatusApproved, Date: "2026-10-10"})
	backend.AddBooking(entity.Booking{Status: "Archived", Date: "2026-10-10"})
	admin := withToken(fakebackend.AdminToken)

	dash, err := svc.Booking.AdminDashboard(admin, &request.AdminDashboardQuery{
		Section: "active", DateFrom: "2026-10-05", Edit: active.ID,
	})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.Services) != 2 {
		t.Fatalf("admins must see inactive services, got %d", len(dash.Services))
	}
	if len(dash.Bookings) != 2 || len(dash.Visible()) != 1 || len(dash.Partition.Unrecognized) != 1 {
		t.Fatalf("unexpected partition %+v", dash.Partition)
	}
	if dash.Editing == nil || dash.Editing.ID != active.ID {
		t.Fatalf("expected service %s in edit, got %+v", active.ID, dash.Editing)
	}

	var sawFilter bool
	for _, r := range backend.Requests() {
		if r.Path == "/api/bookings" && r.Query == "dateFrom=2026-10-05" {
			sawFilter = true
		}
	}
	if !sawFilter {
		t.Fatal("expected the date filter to reach the backend")
	}
}

func TestAdminDashboardFailsAsAWhole(t *testing.T) {
	svc, backend := newTestService(t)
	backend.AddBooking(entity.Booking{Status: entity.BookingStatusPending})
	backend.FailServices()

	dash, err := svc.Booking.AdminDashboard(withToken(fakebackend.AdminToken), &request.AdminDashboardQuery{})
	if err == nil || dash != nil {
		t.Fatalf("expected the whole load to fail, got %+v", dash)
	}
	if apiclient.StatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("expected backend 500, got %v", err)
	}
}

func TestAdminDashboardRejectsInvertedRange(t *testing.T) {
	svc, backend := newTestService(t)

	var verr *ValidationError
	_, err := svc.Booking.AdminDashboard(withToken(fakebackend.AdminToken), &request.AdminDashboardQuery{DateFrom: "2026-10-10", DateTo: "2026-10-01"})
	if !errors.As(err, &verr) || verr.Fields["dateTo"] == "" {
		t.Fatalf("expected dateTo error, got %v", err)
	}
	if len(backend.Requests()) != 0 {
		t.Fatal("expected no backend call")
	}
}

func TestAdminDashboardUnauthorized(t *testing.T) {
	svc, backend := newTestService(t)
	backend.Revoke()

	_, err := svc.Booking.AdminDashboard(withToken(fakebackend.AdminToken), &request.AdminDashboardQuery{})
	if !apiclient.IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestMyBookingsSplitsByCalendarDay(t *testing.T) {
	svc, backend := newTestService(t)
	email := "ana@example.com"
	today := backend.AddBooking(entity.Booking{CustomerEmail: email, Status: entity.BookingStatusApproved, Date: "2026-10-15", Time: "08:00"})
	yesterday := backend.AddBooking(entity.Booking{CustomerEmail: email, Status: entity.BookingStatusPending, Date: "2026-10-14"})
	done := backend.AddBooking(entity.Booking{CustomerEmail: email, Status: entity.BookingStatusCompleted, Date: "2026-12-01"})
	backend.AddBooking(entity.Booking{CustomerEmail: "other@example.com", Status: entity.BookingStatusPending, Date: "2026-12-01"})

	bs := svc.Booking.(*bookingService)
	bs.now = func() time.Time { return time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC) }

	split, err := svc.Booking.MyBookings(withToken(fakebackend.CustomerToken(email)))
	if err != nil {
		t.Fatalf("my bookings: %v", err)
	}
	if len(split.Current) != 1 || split.Current[0].ID != today.ID {
		t.Fatalf("expected today's booking to stay current, got %+v", split.Current)
	}
	if len(split.Past) != 2 || split.Past[0].ID != yesterday.ID || split.Past[1].ID != done.ID {
		t.Fatalf("unexpected past bookings %+v", split.Past)
	}
}

func TestTrackBooking(t *testing.T) {
	svc, backend := newTestService(t)
	bk := backend.AddBooking(entity.Booking{CustomerContact: "0700123456", Status: entity.BookingStatusApproved})

	got, err := svc.Booking.TrackBooking(context.Background(), &request.TrackBookingRequest{
		BookingReference: " " + bk.BookingReference + " ", Contact: "0700123456",
	})
	if err != nil || got.ID != bk.ID {
		t.Fatalf("track: %+v, %v", got, err)
	}

	_, err = svc.Booking.TrackBooking(context.Background(), &request.TrackBookingRequest{
		BookingReference: bk.BookingReference, Contact: "0799999999",
	})
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound on contact mismatch, got %v", err)
	}
}

func TestCatalog(t *testing.T) {
	svc, backend := newTestService(t)
	backend.AddService(entity.Service{Name: "Retired", IsActive: false})
	admin := withToken(fakebackend.AdminToken)

	created, err := svc.Catalog.CreateService(admin, &request.ServiceRequest{
		Name: " Deluxe ", Description: "Wax **and** polish", Price: price(35.5), Duration: 60,
	}, &apiclient.FormFile{Field: "image", Filename: "deluxe.jpg", ContentType: "image/jpeg", Content: strings.NewReader("jpg")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Deluxe" || created.ImageURL == "" {
		t.Fatalf("unexpected created service %+v", created)
	}

	if _, err := svc.Catalog.UpdateService(admin, created.ID, &request.ServiceRequest{Name: "Deluxe+", Description: "Wax and polish", Price: price(40), Duration: 70}, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if stored, _ := backend.Service(created.ID); stored.Name != "Deluxe+" || stored.ImageURL == "" {
		t.Fatalf("expected name change and kept image, got %+v", stored)
	}

	active, err := svc.Catalog.ActiveServices(context.Background())
	if err != nil || len(active) != 1 {
		t.Fatalf("expected one active service, got %+v, %v", active, err)
	}

	if err := svc.Catalog.SetServiceActive(admin, created.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if active, _ := svc.Catalog.ActiveServices(context.Background()); len(active) != 0 {
		t.Fatalf("expected no active services, got %+v", active)
	}
	if err := svc.Catalog.SetServiceActive(admin, "svc-missing", true); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}

	var verr *ValidationError
	if _, err := svc.Catalog.CreateService(admin, &request.ServiceRequest{Name: "", Price: price(-1)}, nil); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["name"] == "" || verr.Fields["price"] == "" || verr.Fields["duration"] == "" {
		t.Fatalf("unexpected fields %v", verr.Fields)
	}

	_, err = svc.Catalog.CreateService(admin, &request.ServiceRequest{Name: "Bare", Description: "  ", Duration: 30}, nil)
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["price"] != "This field is required" || verr.Fields["description"] != "This field is required" {
		t.Fatalf("missing price and description must be required, got %v", verr.Fields)
	}
	if n := backend.Count(http.MethodPost, "/api/services"); n != 1 {
		t.Fatalf("invalid services reached the backend, %d creates", n)
	}
}

func price(v float64) *float64 { return &v }
