package adaptor

import (
	"net/http"
	"net/url"

	"carwash-web/internal/data/entity"
	"carwash-web/internal/dto/request"
	"carwash-web/internal/dto/response"
	"carwash-web/internal/session"
	"carwash-web/internal/usecase"
	"carwash-web/internal/view"
	"carwash-web/internal/workflow"
	"carwash-web/pkg/apiclient"
	"carwash-web/pkg/middleware"
	"carwash-web/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// notices are the fixed confirmations shown after a redirect.
var notices = map[string]string{
	"status":              "Booking status updated.",
	"rescheduled":         "Booking rescheduled.",
	"service-created":     "Service created.",
	"service-updated":     "Service updated.",
	"service-activated":   "Service activated.",
	"service-deactivated": "Service deactivated.",
}

type AdminHandler struct {
	base
	auth     usecase.AuthService
	bookings usecase.BookingService
}

func NewAdminHandler(auth usecase.AuthService, bookings usecase.BookingService, sessions *session.Manager, views *view.Renderer, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		base:     newBase(sessions, views, log, "admin"),
		auth:     auth,
		bookings: bookings,
	}
}

// LoginPage handles GET /admin/login
func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, view.PageAdminLogin, h.page(r, view.AdminLoginData{}))
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.AdminLoginRequest
	if err := utils.DecodeForm(r, &req); err != nil {
		page := h.page(r, view.AdminLoginData{})
		failure{message: "Please correct the highlighted fields.", fields: utils.FormErrors(err)}.apply(&page)
		h.render(w, http.StatusBadRequest, view.PageAdminLogin, page)
		return
	}

	s, err := h.auth.AdminLogin(r.Context(), &req)
	if err != nil {
		f := h.describe(err, "admin login", "Login failed.")
		page := h.page(r, view.AdminLoginData{Username: req.Username})
		f.apply(&page)
		h.render(w, f.status, view.PageAdminLogin, page)
		return
	}

	h.sessions.SetSession(w, r, s)
	utils.Redirect(w, r, middleware.DashboardPath(entity.RoleAdmin))
}

// Dashboard handles GET /admin
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var q request.AdminDashboardQuery
	if err := utils.DecodeQuery(r, &q); err != nil {
		q = request.AdminDashboardQuery{Section: r.URL.Query().Get("section")}
	}

	page := h.page(r, nil)
	page.Notice = notices[r.URL.Query().Get("notice")]
	h.renderDashboard(w, r, http.StatusOK, &q, page, nil)
}

// renderDashboard loads the dashboard and renders it with page's messages.
// A load failure replaces the data with an empty dashboard and the error.
func (h *AdminHandler) renderDashboard(w http.ResponseWriter, r *http.Request, status int, q *request.AdminDashboardQuery, page view.Page, serviceForm *request.ServiceRequest) {
	dash, err := h.bookings.AdminDashboard(r.Context(), q)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			h.expireSession(w, r, entity.RoleAdmin)
			return
		}
		f := h.describe(err, "load dashboard", "Could not load dashboard data.")
		if page.Error == "" {
			f.apply(&page)
			status = f.status
		}
		dash = &response.AdminDashboard{Section: workflow.ParseSection(q.Section), DateFrom: q.DateFrom, DateTo: q.DateTo}
	}

	data := view.AdminDashboardData{AdminDashboard: dash}
	switch {
	case serviceForm != nil:
		data.ServiceForm = *serviceForm
	case dash.Editing != nil:
		price := dash.Editing.Price
		data.ServiceForm = request.ServiceRequest{
			Name:        dash.Editing.Name,
			Description: dash.Editing.Description,
			Price:       &price,
			Duration:    dash.Editing.Duration,
		}
	}

	page.Data = data
	h.render(w, status, view.PageAdminDashboard, page)
}

// mutationFailed re-renders the dashboard with the current backend state and
// the error inline, or expires the session on an authorization failure.
func (h *AdminHandler) mutationFailed(w http.ResponseWriter, r *http.Request, err error, operation, fallback string, q *request.AdminDashboardQuery, serviceForm *request.ServiceRequest) {
	if apiclient.IsUnauthorized(err) {
		h.expireSession(w, r, entity.RoleAdmin)
		return
	}

	f := h.describe(err, operation, fallback)
	page := h.page(r, nil)
	f.apply(&page)
	h.renderDashboard(w, r, f.status, q, page, serviceForm)
}

// dashboardURL points back at the dashboard view q. Empty dates are left out.
func dashboardURL(q request.AdminDashboardQuery, notice string) string {
	v := url.Values{}
	v.Set("section", string(workflow.ParseSection(q.Section)))
	if q.DateFrom != "" {
		v.Set("dateFrom", q.DateFrom)
	}
	if q.DateTo != "" {
		v.Set("dateTo", q.DateTo)
	}
	if notice != "" {
		v.Set("notice", notice)
	}
	return "/admin?" + v.Encode()
}

// ChangeStatus handles POST /admin/bookings/{id}/status
func (h *AdminHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req request.StatusChangeRequest
	if err := utils.DecodeForm(r, &req); err != nil {
		h.mutationFailed(w, r, &usecase.ValidationError{Fields: utils.FormErrors(err)}, "change status", "", &request.AdminDashboardQuery{}, nil)
		return
	}

	if _, err := h.bookings.ChangeStatus(r.Context(), id, &req); err != nil {
		q := req.View()
		h.mutationFailed(w, r, err, "change status", "Failed to update booking.", &q, nil)
		return
	}

	utils.Redirect(w, r, dashboardURL(req.View(), "status"))
}

// Reschedule handles POST /admin/bookings/{id}/reschedule
func (h *AdminHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req request.RescheduleRequest
	if err := utils.DecodeForm(r, &req); err != nil {
		h.mutationFailed(w, r, &usecase.ValidationError{Fields: utils.FormErrors(err)}, "reschedule", "", &request.AdminDashboardQuery{}, nil)
		return
	}

	if _, err := h.bookings.Reschedule(r.Context(), id, &req); err != nil {
		q := req.View()
		h.mutationFailed(w, r, err, "reschedule", "Failed to update booking.", &q, nil)
		return
	}

	utils.Redirect(w, r, dashboardURL(req.View(), "rescheduled"))
}
