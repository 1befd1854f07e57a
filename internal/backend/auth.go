package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/skylarktravel/skylark/internal/model"
)

// VerificationRequiredError signals that an account exists but never
// completed email verification. The backend sends it as a structured 403 so
// the login page can route into the verification flow instead of showing a
// generic failure.
type VerificationRequiredError struct {
	Email string
}

func (e *VerificationRequiredError) Error() string {
	return "account is not verified"
}

// Registration is the signup payload.
type Registration struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
}

// SignupResult reports whether the new account must verify its email before
// it can log in. Email carries the normalized address the OTP was sent to.
type SignupResult struct {
	RequiresVerification bool   `json:"requires_verification"`
	Email                string `json:"email"`
}

// Credentials is the login payload.
type Credentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me,omitempty"`
}

// LoginResult is one of: a direct session (User set, optionally a remember
// token), or an OTP challenge (RequiresOTP with the target email).
type LoginResult struct {
	User          *model.User `json:"user"`
	RememberToken string      `json:"remember_token"`
	RequiresOTP   bool        `json:"requires_otp"`
	Email         string      `json:"email"`
}

// VerifyOTPRequest submits a 6-digit code. Context distinguishes a login
// challenge from signup verification.
type VerifyOTPRequest struct {
	Email      string `json:"email"`
	OTP        string `json:"otp"`
	Context    string `json:"context"` // "login" or "signup"
	RememberMe bool   `json:"remember_me,omitempty"`
}

// VerifyOTPResult carries a session for login-context verification, or just
// the verified flag for signup-context verification.
type VerifyOTPResult struct {
	User          *model.User `json:"user"`
	RememberToken string      `json:"remember_token"`
	Verified      bool        `json:"verified"`
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, reg Registration) (*SignupResult, error) {
	var out SignupResult
	if err := c.do(ctx, http.MethodPost, "/auth/signup", reg, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login submits credentials. An unverified account comes back as
// *VerificationRequiredError; everything else non-2xx is *APIError.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", creds, &out, classifyUnverified)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the backend the user signed out. Session clearing itself is
// local; this call is advisory.
func (c *Client) Logout(ctx context.Context, email string) error {
	in := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/auth/logout", in, nil, nil)
}

// SendOTP asks the backend to (re)issue a verification code to the email.
func (c *Client) SendOTP(ctx context.Context, email string) error {
	in := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/auth/send-otp", in, nil, nil)
}

// VerifyOTP submits the entered code.
func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResult, error) {
	var out VerifyOTPResult
	if err := c.do(ctx, http.MethodPost, "/auth/verify-otp", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyToken exchanges a remember token for a fresh user record.
func (c *Client) VerifyToken(ctx context.Context, token string) (*model.User, error) {
	in := map[string]string{"token": token}
	var out struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/verify-token", in, &out, nil); err != nil {
		return nil, err
	}
	return out.User, nil
}

// classifyUnverified turns the backend's structured 403 into a
// VerificationRequiredError.
func classifyUnverified(status int, body []byte) error {
	if status != http.StatusForbidden {
		return nil
	}
	var payload struct {
		RequiresVerification bool   `json:"requires_verification"`
		Email                string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || !payload.RequiresVerification {
		return nil
	}
	return &VerificationRequiredError{Email: payload.Email}
}
