package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/scribe/backend/internal/logger"
	billingModel "github.com/zhouzirui/scribe/backend/internal/model/billing"
	contentModel "github.com/zhouzirui/scribe/backend/internal/model/content"
	"github.com/zhouzirui/scribe/backend/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

const appTitle = "AI Content Generation Service"

// Handler renders the HTML pages.
type Handler struct {
	templates *template.Template
	log       logger.Logger
}

// New parses the embedded templates.
func New(log logger.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return &Handler{templates: tmpl, log: log.With(logger.String("handler", "page"))}, nil
}

// RegisterRoutes mounts the landing and checkout result pages.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/success", h.handleStatus("Subscription active", "Thanks for subscribing. Your payment went through."))
	r.Get("/cancel", h.handleStatus("Checkout cancelled", "No payment was taken. You can subscribe at any time."))
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	plan := billingModel.MonthlyPlan()
	h.render(w, "index.html", map[string]any{
		"Title":         appTitle,
		"ContentTypes":  []string{"blog post", "article", "social media post", "product description", "poem"},
		"DefaultLength": contentModel.DefaultLength,
		"PlanName":      plan.ProductName,
		"PlanPrice":     fmt.Sprintf("$%d.%02d", plan.UnitAmount/100, plan.UnitAmount%100),
		"PlanInterval":  plan.Interval,
	})
}

func (h *Handler) handleStatus(title, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, "status.html", map[string]any{"Title": title, "Message": message})
	}
}

// render executes into a buffer first so a template error can still
// produce a clean 500.
func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("render page", logger.String("template", name), logger.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
