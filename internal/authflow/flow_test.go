package authflow

import (
	"context"
	"testing"

	"github.com/skylarktravel/skylark/internal/backend"
	"github.com/skylarktravel/skylark/internal/model"
)

type fakeAuth struct {
	loginRes  *backend.LoginResult
	loginErr  error
	signupRes *backend.SignupResult
	signupErr error
	verifyRes *backend.VerifyOTPResult
	verifyErr error
	sendErr   error

	loginCalls  int
	verifyCalls int
	sendCalls   int
	lastVerify  backend.VerifyOTPRequest
}

func (f *fakeAuth) Login(ctx context.Context, creds backend.Credentials) (*backend.LoginResult, error) {
	f.loginCalls++
	return f.loginRes, f.loginErr
}

func (f *fakeAuth) Signup(ctx context.Context, reg backend.Registration) (*backend.SignupResult, error) {
	return f.signupRes, f.signupErr
}

func (f *fakeAuth) SendOTP(ctx context.Context, email string) error {
	f.sendCalls++
	return f.sendErr
}

func (f *fakeAuth) VerifyOTP(ctx context.Context, req backend.VerifyOTPRequest) (*backend.VerifyOTPResult, error) {
	f.verifyCalls++
	f.lastVerify = req
	return f.verifyRes, f.verifyErr
}

type fakeSessions struct {
	user  *model.User
	token string
}

func (f *fakeSessions) SetUser(sid string, user *model.User) error {
	f.user = user
	return nil
}

func (f *fakeSessions) SetRememberToken(sid, token string) error {
	f.token = token
	return nil
}

func newTestFlow(pctx PageContext, svc AuthService, sessions SessionWriter) *Flow {
	return New("flow-1", pctx, "sess-1", "/dashboard", svc, sessions)
}

func enterCode(f *Flow, code string) {
	for i, ch := range code {
		f.Digit(i, ch)
	}
}

func TestLoginDirectSession(t *testing.T) {
	user := &model.User{ID: 1, Email: "amy@example.com", FirstName: "Amy"}
	svc := &fakeAuth{loginRes: &backend.LoginResult{User: user}}
	sess := &fakeSessions{}
	f := newTestFlow(ContextLogin, svc, sess)

	f.SubmitCredentials(context.Background(), "amy@example.com", "pw", false)

	if f.Step() != StepDone {
		t.Fatalf("expected StepDone, got %q", f.Step())
	}
	if sess.user == nil || sess.user.Email != "amy@example.com" {
		t.Fatal("expected user written to the session")
	}
	if sess.token != "" {
		t.Fatal("remember token must not be stored without remember me")
	}
}

func TestLoginRememberMeStoresToken(t *testing.T) {
	svc := &fakeAuth{loginRes: &backend.LoginResult{
		User:          &model.User{ID: 1, Email: "amy@example.com"},
		RememberToken: "tok-123",
	}}
	sess := &fakeSessions{}
	f := newTestFlow(ContextLogin, svc, sess)

	f.SubmitCredentials(context.Background(), "amy@example.com", "pw", true)

	if sess.token != "tok-123" {
		t.Fatalf("expected remember token stored, got %q", sess.token)
	}
}

func TestLoginFailureShowsMessage(t *testing.T) {
	svc := &fakeAuth{loginErr: &backend.APIError{Status: 401, Message: "Invalid email or password"}}
	f := newTestFlow(ContextLogin, svc, &fakeSessions{})

	f.SubmitCredentials(context.Background(), "amy@example.com", "wrong", false)

	snap := f.Snapshot()
	if snap.Step != StepCredentials {
		t.Fatalf("expected StepCredentials, got %q", snap.Step)
	}
	if snap.Error != "Invalid email or password" {
		t.Fatalf("unexpected error %q", snap.Error)
	}
}

func TestLoginOTPChallenge(t *testing.T) {
	svc := &fakeAuth{loginRes: &backend.LoginResult{RequiresOTP: true, Email: "amy@example.com"}}
	f := newTestFlow(ContextLogin, svc, &fakeSessions{})

	f.SubmitCredentials(context.Background(), "Amy@Example.com", "pw", false)

	snap := f.Snapshot()
	if snap.Step != StepOTP {
		t.Fatalf("expected StepOTP, got %q", snap.Step)
	}
	if snap.OTPEmail != "amy@example.com" {
		t.Fatalf("expected the backend's normalized email, got %q", snap.OTPEmail)
	}
	if snap.Cooldown != 60 {
		t.Fatalf("expected 60s resend cooldown on entry, got %d", snap.Cooldown)
	}
	if snap.Complete {
		t.Fatal("expected empty code slots")
	}
}

func TestLoginUnverifiedAccount(t *testing.T) {
	svc := &fakeAuth{loginErr: &backend.VerificationRequiredError{Email: "amy@example.com"}}
	f := newTestFlow(ContextLogin, svc, &fakeSessions{})

	f.SubmitCredentials(context.Background(), "amy@example.com", "pw", false)

	snap := f.Snapshot()
	if snap.Step != StepUnverified {
		t.Fatalf("expected StepUnverified, got %q", snap.Step)
	}
	if snap.Cooldown != 60 {
		t.Fatalf("expected 60s cooldown, got %d", snap.Cooldown)
	}
}

func TestSubmitOTPIncompleteNeverCallsBackend(t *testing.T) {
	svc := &fakeAuth{loginRes: &backend.LoginResult{RequiresOTP: true, Email: "amy@example.com"}}
	f := newTestFlow(ContextLogin, svc, &fakeSessions{})
	f.SubmitCredentials(context.Background(), "amy@example.com", "pw", false)

	enterCode(f, "123") // three of six
	f.SubmitOTP(context.Background())

	if svc.verifyCalls != 0 {
		t.Fatalf("incomplete code must not reach the network, got %d calls", svc.verifyCalls)
	}
	snap := f.Snapshot()
	if snap.OTPError != "Please enter the complete 6-digit code." {
		t.Fatalf("unexpected message %q", snap.OTPError)
	}
}

func TestSubmitOTPWrongCodeKeepsSlots(t *testing.T) {
	svc := &fakeAuth{
		loginRes:  &backend.LoginResult{RequiresOTP: true, Email: "amy@example.com"},
		verifyErr: &backend.APIError{Status: 400, Message: "Invalid or expired OTP"},
	}
	f := newTestFlow(ContextLogin, svc, &fakeSessions{})
	f.SubmitCredentials(context.Background(), "amy@example.com", "pw", false)

	enterCode(f, "123456")
	f.SubmitOTP(context.Background())

	snap := f.Snapshot()
	if snap.Step != StepOTP {
		t.Fatalf("expected to stay on StepOTP, got %q", snap.Step)
	}
	if snap.OTPError != "Invalid or expired OTP" {
		t.Fatalf("unexpected message %q", snap.OTPError)
	}
	if !snap.Complete {
		t.Fatal("slots must keep their values for correction")
	}
}

func TestSubmitOTPLoginSuccess(t *testing.T) {
	user := &model.User{ID: 1, Email: "amy@example.com"}
	svc := &fakeAuth{
		loginRes:  &backend.LoginResult{RequiresOTP: true, Email: "amy@example.com"},
		verifyRes: &backend.VerifyOTPResult{User: user, RememberToken: "tok-9"},
	}
	sess := &fakeSessions{}
	f := newTestFlow(ContextLogin, svc, sess)
	f.SubmitCredentials(context.Background(), "amy@example.com", "pw", true)

	enterCode(f, "123456")
	f.SubmitOTP(context.Background())

	if f.Step() != StepDone {
		t.Fatalf("expected StepDone, got %q", f.Step())
	}
	if svc.lastVerify.Context != "login" {
		t.Fatalf("expected login context, got %q", svc.lastVerify.Context)
	}
	if svc.lastVerify.OTP != "123456" {
		t.Fatalf("unexpected code %q", svc.lastVerify.OTP)
	}
	if sess.user == nil || sess.token != "tok-9" {
		t.Fatal("expected session established with remember token")
	}
}

func TestSignupVerificationReturnsToSignIn(t *testing.T) {
	svc := &fakeAuth{
		signupRes: &backend.SignupResult{RequiresVerification: true, Email: "new@example.com"},
		verifyRes: &backend.VerifyOTPResult{Verified: true},
	}
	sess := &fakeSessions{}
	f := newTestFlow(ContextSignup, svc, sess)

	f.SubmitRegistration(context.Background(), backend.Registration{Email: "new@example.com", Password: "pw"})
	if f.Step() != StepOTP {
		t.Fatalf("expected StepOTP after signup, got %q", f.Step())
	}

	enterCode(f, "654321")
	f.SubmitOTP(context.Background())

	snap := f.Snapshot()
	if svc.lastVerify.Context != "signup" {
		t.Fatalf("expected signup context, got %q", svc.lastVerify.Context)
	}
	if snap.Step != StepCredentials {
		t.Fatalf("expected return to credentials, got %q", snap.Step)
	}
	if snap.Notice != "Email verified. Please sign in." {
		t.Fatalf("unexpected notice %q", snap.Notice)
	}
	if sess.user != nil {
		t.Fatal("signup verification must not establish a session")
	}
}

func TestSignupWithoutVerificationLogsIn(t *testing.T) {
	user := &model.User{ID: 2, Email: "new@example.com"}
	svc := &fakeAuth{
		signupRes: &backend.SignupResult{},
		loginRes:  &backend.LoginResult{User: user},
	}
	sess := &fakeSessions{}
	f := newTestFlow(ContextSignup, svc, sess)

	f.SubmitRegistration(context.Background(), backend.Registration{Email: "new@example.com", Password: "pw"})

	if f.Step() != StepDone {
		t.Fatalf("expected StepDone, got %q", f.Step())
	}
	if sess.user == nil {
		t.Fatal("expected the fresh account signed in")
	}
}

func TestUnverifiedScreenVerifiesAsSignup(t *testing.T) {
	svc := &fakeAuth{
		loginErr:  &backend.VerificationRequiredError{Email: "amy@example.com"},
		verifyRes: &backend.VerifyOTPResult{Verified: true},
	}
	f := newTestFlow(ContextLogin, svc, &fakeSessions{})
	f.SubmitCredentials(context.Background(), "amy@example.com", "pw", false)

	enterCode(f, "111111")
	f.SubmitOTP(context.Background())

	if svc.lastVerify.Context != "signup" {
		t.Fatalf("unverified screen must verify in signup context, got %q", svc.lastVerify.Context)
	}
	snap := f.Snapshot()
	if snap.Step != StepCredentials || snap.Notice == "" {
		t.Fatalf("expected sign-in notice on credentials step, got step %q notice %q", snap.Step, snap.Notice)
	}
}

func TestResendGatedByCooldown(t *testing.T) {
	svc := &fakeAuth{loginRes: &backend.LoginResult{RequiresOTP: true, Email: "amy@example.com"}}
	f := newTestFlow(ContextLogin, svc, &fakeSessions{})
	f.SubmitCredentials(context.Background(), "amy@example.com", "pw", false)

	f.Resend(context.Background())
	if svc.sendCalls != 0 {
		t.Fatal("resend during cooldown must be a no-op")
	}

	for i := 0; i < 60; i++ {
		f.Tick()
	}
	if f.Snapshot().Cooldown != 0 {
		t.Fatalf("expected cooldown 0, got %d", f.Snapshot().Cooldown)
	}

	enterCode(f, "12") // partial entry is discarded on resend
	f.Resend(context.Background())
	if svc.sendCalls != 1 {
		t.Fatalf("expected one send call, got %d", svc.sendCalls)
	}
	snap := f.Snapshot()
	if snap.Cooldown != 60 {
		t.Fatalf("expected cooldown restarted, got %d", snap.Cooldown)
	}
	if snap.Slots != [Digits]string{} {
		t.Fatal("expected slots cleared after resend")
	}
}

func TestResendFailureLeavesCooldownAlone(t *testing.T) {
	svc := &fakeAuth{
		loginRes: &backend.LoginResult{RequiresOTP: true, Email: "amy@example.com"},
		sendErr:  &backend.APIError{Status: 500},
	}
	f := newTestFlow(ContextLogin, svc, &fakeSessions{})
	f.SubmitCredentials(context.Background(), "amy@example.com", "pw", false)
	for i := 0; i < 60; i++ {
		f.Tick()
	}

	f.Resend(context.Background())

	snap := f.Snapshot()
	if snap.OTPError != "Failed to resend code. Please try again." {
		t.Fatalf("unexpected message %q", snap.OTPError)
	}
	if snap.Cooldown != 0 {
		t.Fatalf("failed resend must not restart the cooldown, got %d", snap.Cooldown)
	}
}

func TestTickNeverGoesNegative(t *testing.T) {
	f := newTestFlow(ContextLogin, &fakeAuth{}, &fakeSessions{})
	f.Tick()
	if got := f.Snapshot().Cooldown; got != 0 {
		t.Fatalf("expected cooldown 0, got %d", got)
	}
}

func TestBackReturnsToCredentials(t *testing.T) {
	svc := &fakeAuth{loginRes: &backend.LoginResult{RequiresOTP: true, Email: "amy@example.com"}}
	f := newTestFlow(ContextLogin, svc, &fakeSessions{})
	f.SubmitCredentials(context.Background(), "amy@example.com", "pw", false)
	enterCode(f, "123")

	f.Back()

	snap := f.Snapshot()
	if snap.Step != StepCredentials {
		t.Fatalf("expected StepCredentials, got %q", snap.Step)
	}
	if snap.Slots != [Digits]string{} || snap.Cooldown != 0 {
		t.Fatal("expected OTP state discarded")
	}
}

func TestDigitIgnoredOutsideOTPSteps(t *testing.T) {
	f := newTestFlow(ContextLogin, &fakeAuth{}, &fakeSessions{})
	f.Digit(0, '1')
	if f.Snapshot().Slots != [Digits]string{} {
		t.Fatal("digit input on the credentials step must be ignored")
	}
}
