package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/skylarktravel/skylark/internal/authflow"
	"github.com/skylarktravel/skylark/internal/backend"
	"github.com/skylarktravel/skylark/internal/middleware"
	"github.com/skylarktravel/skylark/internal/session"
	ws "github.com/skylarktravel/skylark/internal/websocket"
)

// AuthHandler serves the login and signup pages and the HTMX endpoints that
// drive their shared flow controller.
type AuthHandler struct {
	renderer *Renderer
	flows    *authflow.Registry
	api      *backend.Client
	sessions *session.Store
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewAuthHandler(rd *Renderer, flows *authflow.Registry, api *backend.Client, sessions *session.Store, hub *ws.Hub, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		renderer: rd,
		flows:    flows,
		api:      api,
		sessions: sessions,
		hub:      hub,
		logger:   logger,
	}
}

// flowView is what the auth templates render.
type flowView struct {
	FlowID   string
	Context  authflow.PageContext
	Redirect string
	authflow.Snapshot
}

func (h *AuthHandler) view(f *authflow.Flow) flowView {
	return flowView{
		FlowID:   f.ID,
		Context:  f.Context,
		Redirect: f.Redirect(),
		Snapshot: f.Snapshot(),
	}
}

// safeRedirect restricts the post-auth destination to local paths.
func safeRedirect(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/dashboard"
	}
	return raw
}

// LoginPage renders the login form. Per the auto-restore rule, a browser
// with a cached user — or one whose remember token still exchanges — is
// sent straight to its destination without seeing the form.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionID(w, r)
	redirect := safeRedirect(r.URL.Query().Get("redirect"))

	if user, err := h.sessions.GetUser(sid); err == nil && user != nil {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	if user, err := h.sessions.TryRestoreSession(r.Context(), sid); err == nil && user != nil {
		h.hub.Notify(sid, ws.Event{Type: "session_restored", Email: user.Email})
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	f := h.flows.Create(authflow.ContextLogin, sid, redirect, h.api, h.sessions)
	h.renderer.Render(w, "auth_login.html", h.view(f))
}

// SignupPage renders the registration form with a fresh flow.
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionID(w, r)
	redirect := safeRedirect(r.URL.Query().Get("redirect"))
	f := h.flows.Create(authflow.ContextSignup, sid, redirect, h.api, h.sessions)
	h.renderer.Render(w, "auth_signup.html", h.view(f))
}

// flow resolves the {id} path value; an unknown flow means the page is
// stale, so the browser is sent back to start over.
func (h *AuthHandler) flow(w http.ResponseWriter, r *http.Request) *authflow.Flow {
	f := h.flows.Get(r.PathValue("id"))
	if f == nil {
		page := "/auth/login"
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", page)
			w.WriteHeader(http.StatusOK)
		} else {
			http.Redirect(w, r, page, http.StatusSeeOther)
		}
		return nil
	}
	return f
}

// finish renders the current flow step, or redirects once the flow is done.
func (h *AuthHandler) finish(w http.ResponseWriter, r *http.Request, f *authflow.Flow) {
	if f.Step() == authflow.StepDone {
		snap := f.Snapshot()
		h.hub.Notify(f.SessionID(), ws.Event{Type: "session_login", Email: snap.Email})
		h.flows.Remove(f.ID)
		w.Header().Set("HX-Redirect", f.Redirect())
		w.WriteHeader(http.StatusOK)
		return
	}
	h.renderer.Render(w, "auth_flow", h.view(f))
}

// Credentials handles the login form submission.
func (h *AuthHandler) Credentials(w http.ResponseWriter, r *http.Request) {
	f := h.flow(w, r)
	if f == nil {
		return
	}
	f.SubmitCredentials(r.Context(),
		strings.TrimSpace(r.FormValue("email")),
		r.FormValue("password"),
		r.FormValue("remember_me") == "on",
	)
	h.finish(w, r, f)
}

// Register handles the signup form submission.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	f := h.flow(w, r)
	if f == nil {
		return
	}
	f.SubmitRegistration(r.Context(), backend.Registration{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password:  r.FormValue("password"),
		Phone:     strings.TrimSpace(r.FormValue("phone")),
	})
	h.finish(w, r, f)
}

// Digit accepts one typed character into an OTP slot.
func (h *AuthHandler) Digit(w http.ResponseWriter, r *http.Request) {
	f := h.flow(w, r)
	if f == nil {
		return
	}
	idx := atoiDefault(r.FormValue("index"), -1)
	if v := r.FormValue("value"); v != "" {
		f.Digit(idx, rune(v[len(v)-1]))
	}
	h.finish(w, r, f)
}

// Backspace handles backspace in an OTP slot.
func (h *AuthHandler) Backspace(w http.ResponseWriter, r *http.Request) {
	f := h.flow(w, r)
	if f == nil {
		return
	}
	f.Backspace(atoiDefault(r.FormValue("index"), -1))
	h.finish(w, r, f)
}

// Paste handles pasted input into the OTP boxes.
func (h *AuthHandler) Paste(w http.ResponseWriter, r *http.Request) {
	f := h.flow(w, r)
	if f == nil {
		return
	}
	f.Paste(r.FormValue("value"))
	h.finish(w, r, f)
}

// Verify submits the entered code.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	f := h.flow(w, r)
	if f == nil {
		return
	}
	f.SubmitOTP(r.Context())
	h.finish(w, r, f)
}

// Resend reissues the code once the cooldown has elapsed.
func (h *AuthHandler) Resend(w http.ResponseWriter, r *http.Request) {
	f := h.flow(w, r)
	if f == nil {
		return
	}
	f.Resend(r.Context())
	h.finish(w, r, f)
}

// Tick is polled once per second by the OTP screen to advance the cooldown.
func (h *AuthHandler) Tick(w http.ResponseWriter, r *http.Request) {
	f := h.flow(w, r)
	if f == nil {
		return
	}
	f.Tick()
	h.renderer.Render(w, "otp_resend", h.view(f))
}

// Back returns from the OTP screen to the credentials form.
func (h *AuthHandler) Back(w http.ResponseWriter, r *http.Request) {
	f := h.flow(w, r)
	if f == nil {
		return
	}
	f.Back()
	h.finish(w, r, f)
}

// Logout clears the session (user and remember token), tells the backend,
// and sends the browser home.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionID(w, r)

	var email string
	if user := middleware.UserFrom(r.Context()); user != nil {
		email = user.Email
	}

	if err := h.sessions.ClearUser(sid); err != nil {
		h.logger.Error("clear session", "error", err)
	}
	if email != "" {
		// Advisory only; local logout already happened.
		if err := h.api.Logout(r.Context(), email); err != nil {
			h.logger.Debug("backend logout", "error", err)
		}
	}
	h.hub.Notify(sid, ws.Event{Type: "session_logout"})

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func atoiDefault(s string, def int) int {
	n := 0
	if s == "" {
		return def
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return def
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
