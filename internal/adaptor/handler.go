package adaptor

import (
	"errors"
	"net/http"

	"carwash-web/internal/data/entity"
	"carwash-web/internal/session"
	"carwash-web/internal/usecase"
	"carwash-web/internal/view"
	"carwash-web/pkg/apiclient"
	"carwash-web/pkg/middleware"
	"carwash-web/pkg/utils"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

type Handler struct {
	Page     *PageHandler
	Booking  *BookingHandler
	Customer *CustomerHandler
	Admin    *AdminHandler
	Catalog  *CatalogHandler
	Session  *SessionHandler
}

func NewHandler(service *usecase.Service, sessions *session.Manager, views *view.Renderer, log *zap.Logger) *Handler {
	admin := NewAdminHandler(service.Auth, service.Booking, sessions, views, log)
	return &Handler{
		Page:     NewPageHandler(service.Catalog, sessions, views, log),
		Booking:  NewBookingHandler(service.Booking, service.Catalog, sessions, views, log),
		Customer: NewCustomerHandler(service.Auth, service.Booking, sessions, views, log),
		Admin:    admin,
		Catalog:  NewCatalogHandler(service.Catalog, admin, log),
		Session:  NewSessionHandler(sessions, views, log),
	}
}

// base carries what every page handler needs to render and to react to an
// expired session.
type base struct {
	sessions *session.Manager
	views    *view.Renderer
	log      *zap.Logger
}

func newBase(sessions *session.Manager, views *view.Renderer, log *zap.Logger, name string) base {
	return base{
		sessions: sessions,
		views:    views,
		log:      log.With(zap.String("handler", name)),
	}
}

func (h base) page(r *http.Request, data any) view.Page {
	return view.Page{
		Session:   h.sessions.GetSession(r.Context()),
		CSRFField: csrf.TemplateField(r),
		Theme:     themeFrom(r),
		Data:      data,
	}
}

func (h base) render(w http.ResponseWriter, status int, name string, page view.Page) {
	h.views.Render(w, status, name, page)
}

// expireSession is the single reaction to a backend authorization failure:
// drop the session and send the user to the login page of role.
func (h base) expireSession(w http.ResponseWriter, r *http.Request, role entity.UserRole) {
	h.log.Info("Session rejected by backend",
		zap.String("role", string(role)),
		zap.String("path", r.URL.Path),
	)
	h.sessions.ClearSession(w, r)
	utils.Redirect(w, r, middleware.LoginPath(role))
}

// failure is how a usecase error is shown inline.
type failure struct {
	status  int
	message string
	fields  map[string]string
}

func (f failure) apply(page *view.Page) {
	page.Error = f.message
	page.Fields = f.fields
}

// describe classifies err for display. fallback is shown when the backend
// gave no usable message.
func (h base) describe(err error, operation, fallback string) failure {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		return failure{status: http.StatusUnprocessableEntity, message: "Please correct the highlighted fields.", fields: verr.Fields}

	case errors.Is(err, usecase.ErrBookingClosed):
		h.log.Warn(operation+" failed - booking closed", zap.Error(err))
		return failure{status: http.StatusConflict, message: "This booking is already completed or rejected."}

	case errors.Is(err, usecase.ErrTransitionNotAllowed):
		h.log.Warn(operation+" failed - transition not allowed", zap.Error(err))
		return failure{status: http.StatusConflict, message: "That status change is no longer possible for this booking. The list has been refreshed."}

	case errors.Is(err, usecase.ErrUnknownStatus):
		return failure{status: http.StatusBadRequest, message: "Unknown booking status."}

	case errors.Is(err, usecase.ErrBookingNotFound):
		return failure{status: http.StatusNotFound, message: fallback}

	case errors.Is(err, usecase.ErrServiceNotFound):
		return failure{status: http.StatusNotFound, message: "That service no longer exists."}
	}

	if code := apiclient.StatusCode(err); code >= 400 && code < 500 {
		h.log.Warn(operation+" rejected by backend", zap.Int("status", code), zap.Error(err))
		msg := apiclient.Message(err)
		if msg == "" {
			msg = fallback
		}
		return failure{status: code, message: msg}
	}

	h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
	return failure{status: http.StatusBadGateway, message: fallback}
}

// renderError shows the generic error page.
func (h base) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, status, view.PageError, h.page(r, view.ErrorData{Status: status, Message: message}))
}
