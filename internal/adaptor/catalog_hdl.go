package adaptor

import (
	"errors"
	"net/http"
	"strings"

	"carwash-web/internal/dto/request"
	"carwash-web/internal/usecase"
	"carwash-web/internal/workflow"
	"carwash-web/pkg/apiclient"
	"carwash-web/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler serves the admin service mutations. Failures re-render the
// admin dashboard on its services section.
type CatalogHandler struct {
	catalog usecase.CatalogService
	admin   *AdminHandler
	log     *zap.Logger
}

func NewCatalogHandler(catalog usecase.CatalogService, admin *AdminHandler, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		admin:   admin,
		log:     log.With(zap.String("handler", "catalog")),
	}
}

func servicesQuery(editID string) *request.AdminDashboardQuery {
	return &request.AdminDashboardQuery{Section: string(workflow.SectionServices), Edit: editID}
}

// Create handles POST /admin/services
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update handles POST /admin/services/{id}
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"))
}

func (h *CatalogHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	var req request.ServiceRequest
	if err := utils.DecodeForm(r, &req); err != nil {
		h.admin.mutationFailed(w, r, &usecase.ValidationError{Fields: utils.FormErrors(err)},
			"save service", "", servicesQuery(id), &req)
		return
	}

	image, problem := uploadedImage(r)
	if problem != "" {
		h.admin.mutationFailed(w, r, &usecase.ValidationError{Fields: map[string]string{"image": problem}},
			"save service", "", servicesQuery(id), &req)
		return
	}
	if image != nil {
		defer image.close()
		h.log.Debug("Service image attached",
			zap.String("filename", image.file.Filename),
			zap.String("content_type", image.file.ContentType),
		)
	}

	var err error
	if id == "" {
		_, err = h.catalog.CreateService(r.Context(), &req, image.formFile())
	} else {
		_, err = h.catalog.UpdateService(r.Context(), id, &req, image.formFile())
	}
	if err != nil {
		h.admin.mutationFailed(w, r, err, "save service", "Failed to save service.", servicesQuery(id), &req)
		return
	}

	notice := "service-created"
	if id != "" {
		notice = "service-updated"
	}
	utils.Redirect(w, r, dashboardURL(*servicesQuery(""), notice))
}

// Activate handles POST /admin/services/{id}/activate
func (h *CatalogHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles POST /admin/services/{id}/deactivate
func (h *CatalogHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *CatalogHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	if err := h.catalog.SetServiceActive(r.Context(), chi.URLParam(r, "id"), active); err != nil {
		h.admin.mutationFailed(w, r, err, "toggle service", "Failed to update service status.", servicesQuery(""), nil)
		return
	}

	notice := "service-deactivated"
	if active {
		notice = "service-activated"
	}
	utils.Redirect(w, r, dashboardURL(*servicesQuery(""), notice))
}

type upload struct {
	file apiclient.FormFile
	body interface{ Close() error }
}

func (u *upload) formFile() *apiclient.FormFile {
	if u == nil {
		return nil
	}
	return &u.file
}

func (u *upload) close() {
	u.body.Close()
}

// uploadedImage returns the optional image part, or nil when none was sent.
// A non-empty problem is the field message for an unusable upload.
func uploadedImage(r *http.Request) (*upload, string) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, ""
	}
	if err != nil {
		return nil, "The image could not be read"
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		file.Close()
		return nil, "Must be an image"
	}

	return &upload{
		file: apiclient.FormFile{
			Field:       "image",
			Filename:    header.Filename,
			ContentType: contentType,
			Content:     file,
		},
		body: file,
	}, ""
}
