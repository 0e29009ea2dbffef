// internal/wire/wire.go
package wire

import (
	"fmt"
	"net/http"

	"carwash-web/internal/adaptor"
	"carwash-web/internal/data/repository"
	"carwash-web/internal/session"
	"carwash-web/internal/usecase"
	"carwash-web/internal/view"
	"carwash-web/pkg/apiclient"
	"carwash-web/pkg/middleware"
	"carwash-web/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the assembled HTTP surface.
type App struct {
	Router *chi.Mux
}

// Wiring builds every dependency on top of the chosen session store.
func Wiring(store repository.SessionRepository, config *utils.Config, logger *zap.Logger) (*App, error) {
	sessions := session.NewManager(store, logger)

	api, err := apiclient.New(config.API.BaseURL,
		apiclient.WithTokenSource(sessions.GetToken),
		apiclient.WithLogger(logger),
		apiclient.WithTimeout(config.API.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}

	views, err := view.New(logger)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	repo := repository.NewRepository(api, logger)
	service := usecase.NewService(repo, config, logger)
	handler := adaptor.NewHandler(service, sessions, views, logger)

	router, err := setupRouter(handler, sessions, config, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Router: router,
	}, nil
}

func setupRouter(
	handler *adaptor.Handler,
	sessions *session.Manager,
	config *utils.Config,
	logger *zap.Logger,
) (*chi.Mux, error) {
	proxies, err := config.Security.ProxyPrefixes()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RealIP(proxies))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(sessions.Middleware)

	if config.Security.CSRF {
		key, err := utils.DeriveKey(config.Session.Secret, utils.KeyPurposeCSRF, 32)
		if err != nil {
			return nil, err
		}
		r.Use(middleware.CSRF(key, config.Session.SecureCookie, logger))
	}

	// one limiter shared by every login form
	loginLimit := middleware.RateLimit(config.Security.LoginRatePerMinute, config.Security.LoginBurst, logger)

	wirePage(r, handler.Page, handler.Session, logger)
	wireBooking(r, handler.Booking, logger)
	wireAuth(r, handler.Customer, handler.Admin, sessions, loginLimit, logger)
	wireCustomer(r, handler.Customer, sessions, logger)
	wireAdmin(r, handler.Admin, handler.Catalog, sessions, logger)

	r.NotFound(handler.Page.NotFound)
	r.MethodNotAllowed(handler.Page.MethodNotAllowed)

	return r, nil
}

// Handler exposes the router as a plain http.Handler.
func (a *App) Handler() http.Handler {
	return a.Router
}
