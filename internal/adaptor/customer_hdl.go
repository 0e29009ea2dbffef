package adaptor

import (
	"net/http"

	"carwash-web/internal/data/entity"
	"carwash-web/internal/dto/request"
	"carwash-web/internal/session"
	"carwash-web/internal/usecase"
	"carwash-web/internal/view"
	"carwash-web/pkg/apiclient"
	"carwash-web/pkg/middleware"
	"carwash-web/pkg/utils"

	"go.uber.org/zap"
)

type CustomerHandler struct {
	base
	auth     usecase.AuthService
	bookings usecase.BookingService
}

func NewCustomerHandler(auth usecase.AuthService, bookings usecase.BookingService, sessions *session.Manager, views *view.Renderer, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		base:     newBase(sessions, views, log, "customer"),
		auth:     auth,
		bookings: bookings,
	}
}

func authMode(r *http.Request) string {
	if r.URL.Query().Get("mode") == "register" {
		return "register"
	}
	return "login"
}

// AuthPage handles GET /customer/auth?mode=login|register
func (h *CustomerHandler) AuthPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, view.PageCustomerAuth, h.page(r, view.CustomerAuthData{Mode: authMode(r)}))
}

// Login handles POST /customer/auth/login
func (h *CustomerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.CustomerLoginRequest
	if err := utils.DecodeForm(r, &req); err != nil {
		h.authFailed(w, r, view.CustomerAuthData{Mode: "login"}, failure{
			status: http.StatusBadRequest, message: "Please correct the highlighted fields.", fields: utils.FormErrors(err),
		})
		return
	}

	s, err := h.auth.CustomerLogin(r.Context(), &req)
	if err != nil {
		req.Password = ""
		h.authFailed(w, r, view.CustomerAuthData{Mode: "login", Login: req},
			h.describe(err, "customer login", "Authentication failed."))
		return
	}

	h.sessions.SetSession(w, r, s)
	utils.Redirect(w, r, middleware.DashboardPath(entity.RoleCustomer))
}

// Register handles POST /customer/auth/register
func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.CustomerRegisterRequest
	if err := utils.DecodeForm(r, &req); err != nil {
		h.authFailed(w, r, view.CustomerAuthData{Mode: "register"}, failure{
			status: http.StatusBadRequest, message: "Please correct the highlighted fields.", fields: utils.FormErrors(err),
		})
		return
	}

	s, err := h.auth.CustomerRegister(r.Context(), &req)
	if err != nil {
		req.Password = ""
		h.authFailed(w, r, view.CustomerAuthData{Mode: "register", Register: req},
			h.describe(err, "customer register", "Registration failed."))
		return
	}

	h.sessions.SetSession(w, r, s)
	utils.Redirect(w, r, middleware.DashboardPath(entity.RoleCustomer))
}

func (h *CustomerHandler) authFailed(w http.ResponseWriter, r *http.Request, data view.CustomerAuthData, f failure) {
	page := h.page(r, data)
	f.apply(&page)
	h.render(w, f.status, view.PageCustomerAuth, page)
}

// Dashboard handles GET /customer/dashboard
func (h *CustomerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	split, err := h.bookings.MyBookings(r.Context())
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			h.expireSession(w, r, entity.RoleCustomer)
			return
		}
		f := h.describe(err, "list own bookings", "Failed to load bookings.")
		page := h.page(r, view.CustomerDashboardData{})
		f.apply(&page)
		h.render(w, f.status, view.PageCustomerDashboard, page)
		return
	}

	h.render(w, http.StatusOK, view.PageCustomerDashboard, h.page(r, view.CustomerDashboardData{Bookings: *split}))
}
