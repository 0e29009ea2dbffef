// Package fakebackend is an in-memory stand-in for the booking REST backend,
// served over httptest for handler and usecase tests.
package fakebackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"carwash-web/internal/data/entity"

	"github.com/go-chi/chi/v5"
)

const (
	AdminToken    = "admin-token"
	AdminUsername = "admin"
	AdminPassword = "admin-pass"

	customerTokenPrefix = "customer-token:"
)

type customer struct {
	profile  entity.Profile
	password string
}

type Backend struct {
	mu        sync.Mutex
	bookings  []entity.Booking
	services  []entity.Service
	customers map[string]customer
	requests  []Request
	seq       int

	revoked      bool
	failServices bool

	srv *httptest.Server
}

// Request is one call the backend received.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
}

// New starts a backend that is shut down with the test.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{customers: make(map[string]customer)}
	b.srv = httptest.NewServer(b.routes())
	t.Cleanup(b.srv.Close)
	return b
}

// URL is the API base URL, including the /api prefix.
func (b *Backend) URL() string {
	return b.srv.URL + "/api"
}

// CustomerToken is the token issued to the customer with email.
func CustomerToken(email string) string {
	return customerTokenPrefix + email
}

func (b *Backend) AddService(s entity.Service) entity.Service {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.ID == "" {
		b.seq++
		s.ID = fmt.Sprintf("svc-%d", b.seq)
	}
	b.services = append(b.services, s)
	return s
}

func (b *Backend) AddBooking(bk entity.Booking) entity.Booking {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bk.ID == "" {
		b.seq++
		bk.ID = fmt.Sprintf("bk-%d", b.seq)
	}
	if bk.BookingReference == "" {
		bk.BookingReference = fmt.Sprintf("CW-%04d", b.seq)
	}
	b.bookings = append(b.bookings, bk)
	return bk
}

func (b *Backend) AddCustomer(profile entity.Profile, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.customers[profile.Email] = customer{profile: profile, password: password}
}

func (b *Backend) Booking(id string) (entity.Booking, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bk := range b.bookings {
		if bk.ID == id {
			return bk, true
		}
	}
	return entity.Booking{}, false
}

func (b *Backend) Service(id string) (entity.Service, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.services {
		if s.ID == id {
			return s, true
		}
	}
	return entity.Service{}, false
}

// Revoke makes every authenticated endpoint answer 401.
func (b *Backend) Revoke() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked = true
}

// FailServices makes GET /services answer 500.
func (b *Backend) FailServices() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failServices = true
}

// Requests returns the calls received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count returns how many calls matched method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", b.adminLogin)
		r.Post("/auth/customer/login", b.customerLogin)
		r.Post("/auth/customer/register", b.customerRegister)

		r.Get("/services", b.listServices)
		r.Post("/bookings", b.createBooking)
		r.Get("/bookings/track/{reference}", b.trackBooking)

		r.Group(func(r chi.Router) {
			r.Use(b.requireToken(func(token string) bool { return token == AdminToken }))
			r.Post("/services", b.saveService)
			r.Put("/services/{id}", b.saveService)
			r.Patch("/services/{id}/activate", b.toggleService(true))
			r.Patch("/services/{id}/deactivate", b.toggleService(false))
			r.Get("/bookings", b.listBookings)
			r.Patch("/bookings/{id}", b.patchBooking)
		})

		r.Group(func(r chi.Router) {
			r.Use(b.requireToken(func(token string) bool { return strings.HasPrefix(token, customerTokenPrefix) }))
			r.Get("/bookings/my", b.myBookings)
		})
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireToken(valid func(string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			revoked := b.revoked
			b.mu.Unlock()

			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if revoked || token == "" || !valid(token) {
				writeError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"message": message})
}

func (b *Backend) adminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct{ Username, Password string }
	json.NewDecoder(r.Body).Decode(&body)
	if body.Username != AdminUsername || body.Password != AdminPassword {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": AdminToken,
		"admin": entity.Profile{ID: "adm-1", Username: AdminUsername},
	})
}

func (b *Backend) customerLogin(w http.ResponseWriter, r *http.Request) {
	var body struct{ Email, Password string }
	json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	c, ok := b.customers[body.Email]
	b.mu.Unlock()
	if !ok || c.password != body.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": CustomerToken(body.Email), "user": c.profile})
}

func (b *Backend) customerRegister(w http.ResponseWriter, r *http.Request) {
	var body struct{ Name, Contact, Email, Password string }
	json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	if _, exists := b.customers[body.Email]; exists {
		b.mu.Unlock()
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	b.seq++
	profile := entity.Profile{ID: fmt.Sprintf("cus-%d", b.seq), Name: body.Name, Contact: body.Contact, Email: body.Email}
	b.customers[body.Email] = customer{profile: profile, password: body.Password}
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"token": CustomerToken(body.Email), "user": profile})
}

func (b *Backend) listServices(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failServices {
		writeError(w, http.StatusInternalServerError, "Database unavailable")
		return
	}

	all := r.URL.Query().Get("active") == "all"
	out := []entity.Service{}
	for _, s := range b.services {
		if all || s.IsActive {
			out = append(out, s)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) saveService(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form")
		return
	}
	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	duration, _ := strconv.Atoi(r.FormValue("duration"))

	b.mu.Lock()
	defer b.mu.Unlock()

	id := chi.URLParam(r, "id")
	if id == "" {
		b.seq++
		s := entity.Service{IsActive: true}
		s.ID = fmt.Sprintf("svc-%d", b.seq)
		b.services = append(b.services, s)
		id = s.ID
	}

	for i := range b.services {
		if b.services[i].ID != id {
			continue
		}
		s := &b.services[i]
		s.Name = r.FormValue("name")
		s.Description = r.FormValue("description")
		s.Price = price
		s.Duration = duration
		if file, header, err := r.FormFile("image"); err == nil {
			file.Close()
			s.ImageURL = "https://img.example/" + header.Filename
		}
		writeJSON(w, http.StatusOK, s)
		return
	}
	writeError(w, http.StatusNotFound, "Service not found")
}

func (b *Backend) toggleService(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id := chi.URLParam(r, "id")
		for i := range b.services {
			if b.services[i].ID == id {
				b.services[i].IsActive = active
				writeJSON(w, http.StatusOK, b.services[i])
				return
			}
		}
		writeError(w, http.StatusNotFound, "Service not found")
	}
}

func (b *Backend) listBookings(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("dateFrom")
	to := r.URL.Query().Get("dateTo")

	b.mu.Lock()
	defer b.mu.Unlock()
	out := []entity.Booking{}
	for _, bk := range b.bookings {
		day := bk.Date
		if len(day) > 10 {
			day = day[:10]
		}
		if (from != "" && day < from) || (to != "" && day > to) {
			continue
		}
		out = append(out, bk)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) myBookings(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimPrefix(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "), customerTokenPrefix)

	b.mu.Lock()
	defer b.mu.Unlock()
	out := []entity.Booking{}
	for _, bk := range b.bookings {
		if bk.CustomerEmail == email {
			out = append(out, bk)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerName    string `json:"customerName"`
		CustomerContact string `json:"customerContact"`
		CustomerEmail   string `json:"customerEmail"`
		Service         string `json:"service"`
		Date            string `json:"date"`
		Time            string `json:"time"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	defer b.mu.Unlock()

	var svc *entity.Service
	for i := range b.services {
		if b.services[i].ID == body.Service && b.services[i].IsActive {
			svc = &b.services[i]
		}
	}
	if svc == nil {
		writeError(w, http.StatusBadRequest, "Service is not available")
		return
	}

	b.seq++
	bk := entity.Booking{
		BookingReference: fmt.Sprintf("CW-%04d", b.seq),
		CustomerName:     body.CustomerName,
		CustomerContact:  body.CustomerContact,
		CustomerEmail:    body.CustomerEmail,
		Service:          entity.ServiceRef{ID: svc.ID, Name: svc.Name, Price: svc.Price, Duration: svc.Duration},
		Date:             body.Date,
		Time:             body.Time,
		Status:           entity.BookingStatusPending,
	}
	bk.ID = fmt.Sprintf("bk-%d", b.seq)
	b.bookings = append(b.bookings, bk)
	writeJSON(w, http.StatusCreated, bk)
}

func (b *Backend) patchBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
		Date   string `json:"date"`
		Time   string `json:"time"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	defer b.mu.Unlock()
	id := chi.URLParam(r, "id")
	for i := range b.bookings {
		if b.bookings[i].ID != id {
			continue
		}
		bk := &b.bookings[i]
		if body.Status != "" {
			bk.Status = entity.BookingStatus(body.Status)
		}
		if body.Date != "" {
			bk.Date = body.Date
		}
		if body.Time != "" {
			bk.Time = body.Time
		}
		writeJSON(w, http.StatusOK, bk)
		return
	}
	writeError(w, http.StatusNotFound, "Booking not found")
}

func (b *Backend) trackBooking(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	contact := r.URL.Query().Get("contact")

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bk := range b.bookings {
		if bk.BookingReference == reference && bk.CustomerContact == contact {
			writeJSON(w, http.StatusOK, bk)
			return
		}
	}
	writeError(w, http.StatusNotFound, "No booking matches this reference and contact")
}
