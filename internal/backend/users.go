package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/skylarktravel/skylark/internal/model"
)

// ProfileUpdate carries the editable profile fields. Empty values are
// omitted so the backend leaves them untouched.
type ProfileUpdate struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Street    string `json:"address_street,omitempty"`
	City      string `json:"address_city,omitempty"`
	State     string `json:"address_state,omitempty"`
	Pincode   string `json:"address_pincode,omitempty"`
	Country   string `json:"address_country,omitempty"`
}

// GetProfile fetches the user record by ID.
func (c *Client) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	var out struct {
		User *model.User `json:"user"`
	}
	path := fmt.Sprintf("/users/%d", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out.User, nil
}

// UpdateProfile pushes profile edits and returns the updated record.
func (c *Client) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*model.User, error) {
	var out struct {
		User *model.User `json:"user"`
	}
	path := fmt.Sprintf("/users/%d", userID)
	if err := c.do(ctx, http.MethodPut, path, upd, &out, nil); err != nil {
		return nil, err
	}
	return out.User, nil
}

// ListBookings returns all bookings for a user, most recent first.
func (c *Client) ListBookings(ctx context.Context, userID int64) ([]model.Booking, error) {
	var out struct {
		Bookings []model.Booking `json:"bookings"`
		Total    int             `json:"total"`
	}
	path := fmt.Sprintf("/users/%d/bookings", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}
