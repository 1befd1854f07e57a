package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/skylarktravel/skylark/internal/backend"
	"github.com/skylarktravel/skylark/internal/booking"
	"github.com/skylarktravel/skylark/internal/catalog"
	"github.com/skylarktravel/skylark/internal/middleware"
	"github.com/skylarktravel/skylark/internal/model"
)

// BookingHandler serves the protected booking flow: form capture, checkout
// with its payment stub, and the customer dashboard.
type BookingHandler struct {
	renderer *Renderer
	catalog  *catalog.Catalog
	drafts   *booking.DraftStore
	api      *backend.Client
	logger   *slog.Logger
}

func NewBookingHandler(rd *Renderer, cat *catalog.Catalog, drafts *booking.DraftStore, api *backend.Client, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{renderer: rd, catalog: cat, drafts: drafts, api: api, logger: logger}
}

func (h *BookingHandler) page(r *http.Request, data any) pageData {
	return pageData{User: middleware.UserFrom(r.Context()), Data: data}
}

// TourBookingForm renders the booking form for a tour, prefilled from the
// user's profile.
func (h *BookingHandler) TourBookingForm(w http.ResponseWriter, r *http.Request) {
	tour := h.catalog.FindByCode(r.PathValue("code"))
	if tour == nil {
		http.NotFound(w, r)
		return
	}
	h.renderer.Render(w, "book_tour.html", h.page(r, tour))
}

// VisaBookingForm renders the application form for a visa service.
func (h *BookingHandler) VisaBookingForm(w http.ResponseWriter, r *http.Request) {
	visa := h.catalog.VisaBySlug(r.PathValue("country"))
	if visa == nil {
		http.NotFound(w, r)
		return
	}
	h.renderer.Render(w, "book_visa.html", h.page(r, visa))
}

// Submit captures a completed booking form as a draft and sends the browser
// to checkout. Nothing reaches the backend until the customer confirms.
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	sid := middleware.SessionID(w, r)

	orderType := r.FormValue("order_type")
	code := r.FormValue("code")

	var name, pkgType string
	var price float64
	switch orderType {
	case "tour":
		tour := h.catalog.FindByCode(code)
		if tour == nil {
			http.Error(w, "Unknown tour", http.StatusBadRequest)
			return
		}
		name, pkgType, price = tour.Name, tour.Type, tour.Price
	case "visa":
		visa := h.catalog.VisaBySlug(code)
		if visa == nil {
			http.Error(w, "Unknown visa service", http.StatusBadRequest)
			return
		}
		name, pkgType, price = visa.Country+" "+visa.VisaType, visa.VisaType, visa.Price
	default:
		http.Error(w, "Unknown order type", http.StatusBadRequest)
		return
	}

	if r.FormValue("accept_terms") != "on" {
		http.Error(w, "Terms must be accepted", http.StatusBadRequest)
		return
	}

	adults := atoiDefault(r.FormValue("num_adults"), 1)
	if adults < 1 {
		adults = 1
	}

	draft := &model.BookingDraft{
		OrderType:       orderType,
		Code:            code,
		Name:            name,
		Type:            pkgType,
		FirstName:       strings.TrimSpace(r.FormValue("first_name")),
		LastName:        strings.TrimSpace(r.FormValue("last_name")),
		Email:           user.Email,
		Phone:           strings.TrimSpace(r.FormValue("phone")),
		TravelDate:      r.FormValue("travel_date"),
		ReturnDate:      r.FormValue("return_date"),
		NumAdults:       adults,
		NumChildren:     atoiDefault(r.FormValue("num_children"), 0),
		Street:          strings.TrimSpace(r.FormValue("street")),
		City:            strings.TrimSpace(r.FormValue("city")),
		State:           strings.TrimSpace(r.FormValue("state")),
		Pincode:         strings.TrimSpace(r.FormValue("pincode")),
		SpecialRequests: strings.TrimSpace(r.FormValue("special_requests")),
		PricePerPerson:  price,
	}
	if draft.TravelDate == "" {
		http.Error(w, "Travel date is required", http.StatusBadRequest)
		return
	}

	if _, err := h.drafts.Save(sid, draft); err != nil {
		h.logger.Error("save draft", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/checkout", http.StatusSeeOther)
}

// Checkout renders the pending draft with its price breakdown and the
// payment method chooser. With no pending draft the customer is sent back
// to the catalog.
func (h *BookingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionID(w, r)
	draft, err := h.drafts.Pending(sid)
	if err != nil {
		h.logger.Error("load draft", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if draft == nil {
		http.Redirect(w, r, "/tours", http.StatusSeeOther)
		return
	}

	totals := booking.CalculateTotals(draft.PricePerPerson, draft.NumAdults, draft.NumChildren, 0)
	h.renderer.Render(w, "checkout.html", h.page(r, map[string]any{
		"Draft":  draft,
		"Totals": totals,
	}))
}

// Confirm finalizes checkout. Card and bank transfer are not wired up yet
// and return the coming-soon modal; UPI submits the booking to the backend.
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	sid := middleware.SessionID(w, r)

	method := r.FormValue("payment_method")
	if method != "upi" {
		h.renderer.Render(w, "coming_soon", nil)
		return
	}

	draft, err := h.drafts.Pending(sid)
	if err != nil || draft == nil {
		h.logger.Error("load draft for confirm", "error", err)
		w.Header().Set("HX-Redirect", "/tours")
		w.WriteHeader(http.StatusOK)
		return
	}

	created, err := h.api.CreateBooking(r.Context(), backend.BookingRequest{
		UserID:          user.ID,
		OrderType:       draft.OrderType,
		PackageName:     draft.Name,
		PackageType:     draft.Type,
		Destination:     draft.Code,
		TravelDate:      draft.TravelDate,
		ReturnDate:      draft.ReturnDate,
		NumAdults:       draft.NumAdults,
		NumChildren:     draft.NumChildren,
		PricePerPerson:  draft.PricePerPerson,
		SpecialRequests: draft.SpecialRequests,
	})
	if err != nil {
		h.logger.Error("create booking", "error", err)
		h.renderer.Render(w, "checkout_error", map[string]any{"Error": err.Error()})
		return
	}

	if err := h.drafts.Delete(draft.ID); err != nil {
		h.logger.Error("delete draft", "error", err)
	}

	h.renderer.Render(w, "booking_confirmed", h.page(r, created))
}

// Detail shows one booking by its reference. Customers can only see their
// own bookings.
func (h *BookingHandler) Detail(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	b, err := h.api.GetBookingByRef(r.Context(), r.PathValue("ref"))
	if err != nil || b == nil || b.UserID != user.ID {
		http.NotFound(w, r)
		return
	}
	h.renderer.Render(w, "booking_detail.html", h.page(r, b))
}

// Dashboard lists the customer's bookings from the backend.
func (h *BookingHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	bookings, err := h.api.ListBookings(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list bookings", "error", err)
	}
	h.renderer.Render(w, "dashboard.html", h.page(r, map[string]any{
		"Bookings": bookings,
		"LoadErr":  err != nil,
	}))
}
