package backend

import (
	"context"
	"net/http"

	"github.com/skylarktravel/skylark/internal/model"
)

// BookingRequest is the create-booking payload. Pricing inputs are sent
// through; the backend recomputes and stores authoritative totals.
type BookingRequest struct {
	UserID          int64   `json:"user_id"`
	OrderType       string  `json:"order_type"`
	PackageName     string  `json:"package_name"`
	PackageType     string  `json:"package_type,omitempty"`
	Destination     string  `json:"destination,omitempty"`
	TravelDate      string  `json:"travel_date"`
	ReturnDate      string  `json:"return_date,omitempty"`
	NumAdults       int     `json:"num_adults"`
	NumChildren     int     `json:"num_children"`
	PricePerPerson  float64 `json:"price_per_person"`
	DiscountAmount  float64 `json:"discount_amount,omitempty"`
	SpecialRequests string  `json:"special_requests,omitempty"`
}

// CreateBooking submits a booking and returns the backend's record, which
// includes the generated booking reference and invoice totals.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	var out struct {
		Booking *model.Booking `json:"booking"`
	}
	if err := c.do(ctx, http.MethodPost, "/bookings/", req, &out, nil); err != nil {
		return nil, err
	}
	return out.Booking, nil
}

// GetBookingByRef looks a booking up by its customer-facing reference
// (BK-YYYYMMDD-XXXX).
func (c *Client) GetBookingByRef(ctx context.Context, ref string) (*model.Booking, error) {
	var out struct {
		Booking *model.Booking `json:"booking"`
	}
	if err := c.do(ctx, http.MethodGet, "/bookings/by-booking-id/"+ref, nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Booking, nil
}
