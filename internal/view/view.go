// Package view renders the server-side HTML pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"carwash-web/internal/data/entity"
	"carwash-web/internal/dto/request"
	"carwash-web/internal/dto/response"
	"carwash-web/internal/workflow"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages every handler may render.
const (
	PageHome              = "home"
	PageBook              = "book"
	PageTrack             = "track"
	PageCustomerAuth      = "customer_auth"
	PageCustomerDashboard = "customer_dashboard"
	PageAdminLogin        = "admin_login"
	PageAdminDashboard    = "admin_dashboard"
	PageError             = "error"
)

var pageNames = []string{
	PageHome,
	PageBook,
	PageTrack,
	PageCustomerAuth,
	PageCustomerDashboard,
	PageAdminLogin,
	PageAdminDashboard,
	PageError,
}

// Theme values stored in the theme cookie.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Page is the data every template receives. Data holds the page's own model.
type Page struct {
	Title     string
	Session   *entity.Session
	CSRFField template.HTML
	Theme     string
	Notice    string
	Error     string
	Fields    map[string]string
	Data      any
}

// Markdown without raw HTML passthrough; service descriptions are admin
// input shown to every visitor.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func formatDate(raw string) string {
	if len(raw) < len("2006-01-02") {
		return raw
	}
	day, err := time.Parse("2006-01-02", raw[:10])
	if err != nil {
		return raw
	}
	return day.Format("Mon, 02 Jan 2006")
}

// dateInput trims a backend timestamp to the value an <input type=date> takes.
func dateInput(raw string) string {
	if len(raw) > 10 {
		return raw[:10]
	}
	return raw
}

func statusClass(s entity.BookingStatus) string {
	return "status-" + strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

var funcs = template.FuncMap{
	"markdown":      renderMarkdown,
	"formatDate":    formatDate,
	"dateInput":     dateInput,
	"statusClass":   statusClass,
	"money":         money,
	"actions":       workflow.Actions,
	"canReschedule": workflow.CanReschedule,
	"fieldError": func(fields map[string]string, name string) string {
		return fields[name]
	},
}

type Renderer struct {
	pages map[string]*template.Template
	log   *zap.Logger
}

// New parses every page with the shared layout once at startup.
func New(log *zap.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = tpl
	}

	return &Renderer{
		pages: pages,
		log:   log.With(zap.String("component", "view")),
	}, nil
}

// Render writes page with status. The page is rendered to a buffer first so a
// template failure never leaves half a page on the wire.
func (v *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	tpl, ok := v.pages[name]
	if !ok {
		v.log.Error("Unknown page", zap.String("page", name))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if page.Theme == "" {
		page.Theme = ThemeLight
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, page); err != nil {
		v.log.Error("Failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type HomeData struct {
	Services []entity.Service
}

type BookData struct {
	Services []entity.Service
	Form     request.CreateBookingRequest
	Created  *entity.Booking
}

type TrackData struct {
	Form    request.TrackBookingRequest
	Booking *entity.Booking
}

// CustomerAuthData drives the combined login and registration page.
type CustomerAuthData struct {
	Mode     string
	Login    request.CustomerLoginRequest
	Register request.CustomerRegisterRequest
}

// IsRegister reports whether the registration form is shown.
func (d CustomerAuthData) IsRegister() bool {
	return d.Mode == "register"
}

type CustomerDashboardData struct {
	Bookings workflow.DatePartition
}

type AdminLoginData struct {
	Username string
}

type AdminDashboardData struct {
	*response.AdminDashboard
	ServiceForm request.ServiceRequest
}

type ErrorData struct {
	Status  int
	Message string
}
