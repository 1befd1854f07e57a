package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginDirectSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var creds Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("decode: %v", err)
		}
		if creds.Email != "amy@example.com" || !creds.RememberMe {
			t.Errorf("unexpected payload %+v", creds)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user":           map[string]any{"id": 1, "email": "amy@example.com", "first_name": "Amy"},
			"remember_token": "tok-1",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.Login(context.Background(), Credentials{Email: "amy@example.com", Password: "pw", RememberMe: true})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User == nil || res.User.Email != "amy@example.com" {
		t.Fatalf("unexpected user %+v", res.User)
	}
	if res.RememberToken != "tok-1" {
		t.Fatalf("unexpected token %q", res.RememberToken)
	}
}

func TestLoginErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), Credentials{Email: "amy@example.com", Password: "wrong"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", apiErr.Status)
	}
	if apiErr.Message != "Invalid email or password" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestLoginUnverifiedAccountClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"error":                 "Please verify your email first",
			"requires_verification": true,
			"email":                 "amy@example.com",
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), Credentials{Email: "Amy@Example.com", Password: "pw"})

	var unverified *VerificationRequiredError
	if !errors.As(err, &unverified) {
		t.Fatalf("expected *VerificationRequiredError, got %v", err)
	}
	if unverified.Email != "amy@example.com" {
		t.Fatalf("unexpected email %q", unverified.Email)
	}
}

func TestLoginPlainForbiddenStaysAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "Account locked"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), Credentials{Email: "amy@example.com", Password: "pw"})

	var unverified *VerificationRequiredError
	if errors.As(err, &unverified) {
		t.Fatal("403 without requires_verification must not be classified")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Account locked" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestVerifyOTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/verify-otp" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req VerifyOTPRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.OTP != "123456" || req.Context != "login" {
			t.Errorf("unexpected payload %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user":     map[string]any{"id": 1, "email": "amy@example.com"},
			"verified": true,
		})
	}))
	defer srv.Close()

	res, err := New(srv.URL).VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "amy@example.com", OTP: "123456", Context: "login",
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.User == nil || !res.Verified {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestVerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		if in["token"] != "tok-1" {
			t.Errorf("unexpected token %q", in["token"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"id": 5, "email": "amy@example.com"},
		})
	}))
	defer srv.Close()

	user, err := New(srv.URL).VerifyToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if user == nil || user.ID != 5 {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestErrorWithoutPayloadGetsStatusMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL).SendOTP(context.Background(), "amy@example.com")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Error() != "backend returned status 502" {
		t.Fatalf("unexpected message %q", apiErr.Error())
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	c := New("http://backend:5000/api/")
	if c.baseURL != "http://backend:5000/api" {
		t.Fatalf("unexpected base URL %q", c.baseURL)
	}
}
