// Package authflow sequences the credential → OTP → session pipeline shared
// by the login and signup pages. One Flow exists per page visit; pages
// outside auth only read the session store.
package authflow

import (
	"context"
	"errors"
	"sync"

	"github.com/skylarktravel/skylark/internal/backend"
	"github.com/skylarktravel/skylark/internal/model"
)

// PageContext selects which variant of the flow a page runs.
type PageContext string

const (
	ContextLogin  PageContext = "login"
	ContextSignup PageContext = "signup"
)

// Step drives which form the page renders.
type Step string

const (
	StepCredentials Step = "credentials"
	StepOTP         Step = "otp"
	StepUnverified  Step = "unverified"
	StepDone        Step = "done"
)

// resendCooldownStart is the UI cooldown applied whenever an OTP screen is
// entered or a code is resent. The backend remains the authority on actual
// resend rate limits.
const resendCooldownStart = 60

// User-facing messages for client-side outcomes.
const (
	msgCodeRequired = "Please enter the complete 6-digit code."
	msgInvalidCode  = "Invalid verification code. Please try again."
	msgResendFailed = "Failed to resend code. Please try again."
	msgVerified     = "Email verified. Please sign in."
)

// AuthService is the slice of the backend API the flow needs.
type AuthService interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.LoginResult, error)
	Signup(ctx context.Context, reg backend.Registration) (*backend.SignupResult, error)
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, req backend.VerifyOTPRequest) (*backend.VerifyOTPResult, error)
}

// SessionWriter is the slice of the session store the flow writes at the
// terminal transition. The flow never touches the session before StepDone.
type SessionWriter interface {
	SetUser(sid string, user *model.User) error
	SetRememberToken(sid, token string) error
}

// Flow is the per-page auth state machine. All methods are safe for
// concurrent use; at most one backend call is in flight at a time — while
// one is pending, further submits are ignored, mirroring the disabled
// submit button.
type Flow struct {
	ID      string
	Context PageContext

	mu        sync.Mutex
	sessionID string
	redirect  string
	step      Step
	email     string // submitted login email
	remember  bool
	otpEmail  string // address the OTP was issued to (backend may normalize)
	entry     Entry
	cooldown  int
	err       string
	otpErr    string
	notice    string
	busy      bool

	svc      AuthService
	sessions SessionWriter
}

// New creates a Flow at the credentials step. redirect is the post-auth
// destination path.
func New(id string, pctx PageContext, sessionID, redirect string, svc AuthService, sessions SessionWriter) *Flow {
	return &Flow{
		ID:        id,
		Context:   pctx,
		sessionID: sessionID,
		redirect:  redirect,
		step:      StepCredentials,
		svc:       svc,
		sessions:  sessions,
	}
}

// SessionID returns the browser session this flow writes into.
func (f *Flow) SessionID() string {
	return f.sessionID
}

// Redirect returns the post-auth destination path.
func (f *Flow) Redirect() string {
	return f.redirect
}

// Snapshot is an immutable view of the flow for rendering.
type Snapshot struct {
	Step     Step
	Email    string
	OTPEmail string
	Slots    [Digits]string
	Focus    int
	Complete bool
	Cooldown int
	Error    string
	OTPError string
	Notice   string
	Busy     bool
}

// Snapshot returns the current state under lock.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Step:     f.step,
		Email:    f.email,
		OTPEmail: f.otpEmail,
		Slots:    f.entry.Slots(),
		Focus:    f.entry.Focus(),
		Complete: f.entry.Complete(),
		Cooldown: f.cooldown,
		Error:    f.err,
		OTPError: f.otpErr,
		Notice:   f.notice,
		Busy:     f.busy,
	}
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// begin marks the flow busy if it is on an expected step and idle.
func (f *Flow) begin(steps ...Step) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return false
	}
	for _, s := range steps {
		if f.step == s {
			f.busy = true
			return true
		}
	}
	return false
}

func (f *Flow) end() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// enterOTP moves to an OTP screen: slots cleared, cooldown restarted.
func (f *Flow) enterOTP(step Step, email string) {
	f.step = step
	f.otpEmail = email
	f.entry.Reset()
	f.cooldown = resendCooldownStart
	f.otpErr = ""
}

// establish writes the session and finishes the flow.
func (f *Flow) establish(user *model.User, token string) error {
	if err := f.sessions.SetUser(f.sessionID, user); err != nil {
		return err
	}
	if f.remember && token != "" {
		if err := f.sessions.SetRememberToken(f.sessionID, token); err != nil {
			return err
		}
	}
	f.step = StepDone
	f.err = ""
	f.otpErr = ""
	return nil
}

// SubmitCredentials handles the login form. Outcomes: a direct session
// (StepDone), an OTP challenge (StepOTP), an unverified account
// (StepUnverified), or an error message on the credentials step.
func (f *Flow) SubmitCredentials(ctx context.Context, email, password string, rememberMe bool) {
	if !f.begin(StepCredentials) {
		return
	}
	defer f.end()

	f.mu.Lock()
	f.email = email
	f.remember = rememberMe
	f.err = ""
	f.notice = ""
	f.mu.Unlock()

	res, err := f.svc.Login(ctx, backend.Credentials{
		Email:      email,
		Password:   password,
		RememberMe: rememberMe,
	})

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		var unverified *backend.VerificationRequiredError
		if errors.As(err, &unverified) {
			target := unverified.Email
			if target == "" {
				target = email
			}
			f.enterOTP(StepUnverified, target)
			return
		}
		f.err = err.Error()
		return
	}

	switch {
	case res.RequiresOTP:
		target := res.Email
		if target == "" {
			target = email
		}
		f.enterOTP(StepOTP, target)
	case res.User != nil:
		if err := f.establish(res.User, res.RememberToken); err != nil {
			f.err = "Could not save your session. Please try again."
		}
	default:
		f.err = "Unexpected response from the server. Please try again."
	}
}

// SubmitRegistration handles the signup form. A verification requirement
// moves to the OTP step; otherwise the new account is logged in directly.
func (f *Flow) SubmitRegistration(ctx context.Context, reg backend.Registration) {
	if !f.begin(StepCredentials) {
		return
	}
	defer f.end()

	f.mu.Lock()
	f.email = reg.Email
	f.err = ""
	f.notice = ""
	f.mu.Unlock()

	res, err := f.svc.Signup(ctx, reg)
	if err != nil {
		f.mu.Lock()
		f.err = err.Error()
		f.mu.Unlock()
		return
	}

	if res.RequiresVerification {
		target := res.Email
		if target == "" {
			target = reg.Email
		}
		f.mu.Lock()
		f.enterOTP(StepOTP, target)
		f.mu.Unlock()
		return
	}

	// No verification needed: sign the fresh account in.
	login, err := f.svc.Login(ctx, backend.Credentials{Email: reg.Email, Password: reg.Password})
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.err = err.Error()
		return
	}
	if login.User == nil {
		f.err = "Account created. Please sign in."
		return
	}
	if err := f.establish(login.User, login.RememberToken); err != nil {
		f.err = "Could not save your session. Please try again."
	}
}

// Digit places one typed digit. Any keystroke clears the OTP error.
func (f *Flow) Digit(i int, ch rune) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepOTP && f.step != StepUnverified {
		return
	}
	f.entry.SetDigit(i, ch)
	f.otpErr = ""
}

// Backspace handles backspace in slot i.
func (f *Flow) Backspace(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepOTP && f.step != StepUnverified {
		return
	}
	f.entry.Backspace(i)
	f.otpErr = ""
}

// Paste handles pasted input into the code boxes.
func (f *Flow) Paste(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepOTP && f.step != StepUnverified {
		return
	}
	f.entry.Paste(s)
	f.otpErr = ""
}

// verifyContext maps the current screen to the backend's context parameter.
// The unverified screen finishes a signup verification even when reached
// from the login page.
func (f *Flow) verifyContext() string {
	if f.Context == ContextSignup || f.step == StepUnverified {
		return "signup"
	}
	return "login"
}

// SubmitOTP verifies the entered code. An incomplete code never reaches the
// network. Login-context success establishes the session; signup-context
// success returns to the credentials step with a sign-in notice (one policy
// for both entry paths).
func (f *Flow) SubmitOTP(ctx context.Context) {
	if !f.begin(StepOTP, StepUnverified) {
		return
	}
	defer f.end()

	f.mu.Lock()
	if !f.entry.Complete() {
		f.otpErr = msgCodeRequired
		f.mu.Unlock()
		return
	}
	req := backend.VerifyOTPRequest{
		Email:      f.otpEmail,
		OTP:        f.entry.Code(),
		Context:    f.verifyContext(),
		RememberMe: f.remember,
	}
	f.mu.Unlock()

	res, err := f.svc.VerifyOTP(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			f.otpErr = apiErr.Message
		} else {
			f.otpErr = msgInvalidCode
		}
		return // slots keep their values for correction
	}

	if req.Context == "signup" {
		f.step = StepCredentials
		f.entry.Reset()
		f.err = ""
		f.otpErr = ""
		f.notice = msgVerified
		return
	}

	if res.User == nil {
		f.otpErr = msgInvalidCode
		return
	}
	if err := f.establish(res.User, res.RememberToken); err != nil {
		f.otpErr = "Could not save your session. Please try again."
	}
}

// Resend asks the backend to reissue a code. It is a no-op while the
// cooldown is running. Success clears the slots and restarts the cooldown;
// failure leaves the cooldown untouched.
func (f *Flow) Resend(ctx context.Context) {
	f.mu.Lock()
	if f.step != StepOTP && f.step != StepUnverified {
		f.mu.Unlock()
		return
	}
	if f.cooldown > 0 || f.busy {
		f.mu.Unlock()
		return
	}
	f.busy = true
	email := f.otpEmail
	f.mu.Unlock()
	defer f.end()

	err := f.svc.SendOTP(ctx, email)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.otpErr = msgResendFailed
		return
	}
	f.entry.Reset()
	f.otpErr = ""
	f.cooldown = resendCooldownStart
}

// Tick decrements the resend cooldown by one elapsed second.
func (f *Flow) Tick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cooldown > 0 {
		f.cooldown--
	}
}

// Back discards OTP state and returns to the credentials form without
// contacting the server. Only meaningful from the login page's OTP screens.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepOTP && f.step != StepUnverified {
		return
	}
	f.step = StepCredentials
	f.entry.Reset()
	f.otpEmail = ""
	f.otpErr = ""
	f.cooldown = 0
}
