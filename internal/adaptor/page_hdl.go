package adaptor

import (
	"net/http"

	"carwash-web/internal/session"
	"carwash-web/internal/usecase"
	"carwash-web/internal/view"
	"carwash-web/pkg/utils"

	"go.uber.org/zap"
)

type PageHandler struct {
	base
	catalog usecase.CatalogService
}

func NewPageHandler(catalog usecase.CatalogService, sessions *session.Manager, views *view.Renderer, log *zap.Logger) *PageHandler {
	return &PageHandler{
		base:    newBase(sessions, views, log, "page"),
		catalog: catalog,
	}
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ActiveServices(r.Context())
	if err != nil {
		f := h.describe(err, "list services", "Services could not be loaded. Please try again.")
		page := h.page(r, view.HomeData{})
		f.apply(&page)
		h.render(w, f.status, view.PageHome, page)
		return
	}

	h.render(w, http.StatusOK, view.PageHome, h.page(r, view.HomeData{Services: services}))
}

// NotFound renders the 404 page for unknown routes.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "The page you asked for does not exist.")
}

func (h *PageHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusMethodNotAllowed, "That action is not available here.")
}

// Health handles GET /health
func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.ResponseJSON(w, http.StatusOK, true, "ok", map[string]string{"status": "up"})
}
