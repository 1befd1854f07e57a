package handler

import (
	"net/http"

	"github.com/skylarktravel/skylark/internal/catalog"
	"github.com/skylarktravel/skylark/internal/middleware"
	"github.com/skylarktravel/skylark/internal/model"
)

// PageHandler serves the public marketing and catalog pages.
type PageHandler struct {
	renderer *Renderer
	catalog  *catalog.Catalog
}

func NewPageHandler(rd *Renderer, cat *catalog.Catalog) *PageHandler {
	return &PageHandler{renderer: rd, catalog: cat}
}

type pageData struct {
	User *model.User
	Data any
}

func (h *PageHandler) page(r *http.Request, data any) pageData {
	return pageData{User: middleware.UserFrom(r.Context()), Data: data}
}

// Home renders the landing page with a handful of popular tours.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	tours := h.catalog.All()
	if len(tours) > 6 {
		tours = tours[:6]
	}
	total, _, _ := h.catalog.Counts()
	h.renderer.Render(w, "home.html", h.page(r, map[string]any{
		"Popular":    tours,
		"TotalTours": total,
	}))
}

func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "about.html", h.page(r, nil))
}

func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "contact.html", h.page(r, nil))
}

func (h *PageHandler) Terms(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "terms.html", h.page(r, nil))
}

func (h *PageHandler) Refunds(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "refunds.html", h.page(r, nil))
}

// Tours renders the catalog browser. Search takes precedence over the
// type/category filters, matching the original behavior of the search box.
func (h *PageHandler) Tours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ := q.Get("type")
	category := q.Get("category")
	search := q.Get("q")

	var tours []catalog.Tour
	if search != "" {
		tours = h.catalog.Search(search)
	} else {
		tours = h.catalog.Filter(typ, category)
	}

	total, domestic, international := h.catalog.Counts()
	data := map[string]any{
		"Tours":         tours,
		"Type":          typ,
		"Category":      category,
		"Query":         search,
		"Categories":    h.catalog.Categories(typ),
		"Total":         total,
		"Domestic":      domestic,
		"International": international,
	}

	// HTMX filter changes re-render just the results grid.
	if r.Header.Get("HX-Request") == "true" {
		h.renderer.Render(w, "tour_results", h.page(r, data))
		return
	}
	h.renderer.Render(w, "tours.html", h.page(r, data))
}

// TourDetail renders one tour by code.
func (h *PageHandler) TourDetail(w http.ResponseWriter, r *http.Request) {
	tour := h.catalog.FindByCode(r.PathValue("code"))
	if tour == nil {
		http.NotFound(w, r)
		return
	}
	h.renderer.Render(w, "tour_detail.html", h.page(r, tour))
}

// Visas renders the visa services index.
func (h *PageHandler) Visas(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "visas.html", h.page(r, h.catalog.Visas()))
}

// VisaCountry renders one visa service page.
func (h *PageHandler) VisaCountry(w http.ResponseWriter, r *http.Request) {
	visa := h.catalog.VisaBySlug(r.PathValue("country"))
	if visa == nil {
		http.NotFound(w, r)
		return
	}
	h.renderer.Render(w, "visa_detail.html", h.page(r, visa))
}
