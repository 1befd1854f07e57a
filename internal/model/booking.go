package model

import "time"

// BookingDraft captures a completed booking form while the customer is on
// the checkout page. Drafts belong to one browser session and expire if the
// customer walks away before confirming.
type BookingDraft struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"` // provisional, until the backend issues one
	SessionID string    `json:"-"`
	OrderType string    `json:"order_type"` // "tour" or "visa"
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"` // domestic/international, visa category

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	TravelDate  string `json:"travel_date"`
	ReturnDate  string `json:"return_date,omitempty"`
	NumAdults   int    `json:"num_adults"`
	NumChildren int    `json:"num_children"`

	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`

	SpecialRequests string  `json:"special_requests,omitempty"`
	PricePerPerson  float64 `json:"price_per_person"`

	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Booking is the backend's view of a confirmed booking, as returned by the
// bookings API.
type Booking struct {
	ID             int64   `json:"id"`
	BookingID      string  `json:"booking_id"`
	UserID         int64   `json:"user_id"`
	UserEmail      string  `json:"user_email"`
	OrderType      string  `json:"order_type"`
	PackageName    string  `json:"package_name"`
	PackageType    string  `json:"package_type,omitempty"`
	Destination    string  `json:"destination,omitempty"`
	TravelDate     string  `json:"travel_date"`
	ReturnDate     string  `json:"return_date,omitempty"`
	NumAdults      int     `json:"num_adults"`
	NumChildren    int     `json:"num_children"`
	PricePerPerson float64 `json:"price_per_person"`
	TotalAmount    float64 `json:"total_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	Status         string  `json:"status"`
	PaymentStatus  string  `json:"payment_status"`
	BookingDate    string  `json:"booking_date,omitempty"`
}
