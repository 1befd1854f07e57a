package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/skylarktravel/skylark/internal/authflow"
	"github.com/skylarktravel/skylark/internal/backend"
	"github.com/skylarktravel/skylark/internal/booking"
	"github.com/skylarktravel/skylark/internal/catalog"
	"github.com/skylarktravel/skylark/internal/config"
	"github.com/skylarktravel/skylark/internal/handler"
	"github.com/skylarktravel/skylark/internal/middleware"
	"github.com/skylarktravel/skylark/internal/session"
	ws "github.com/skylarktravel/skylark/internal/websocket"
)

// Server wires the application together.
type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	sessionStore *session.Store
	draftStore   *booking.DraftStore
	flows        *authflow.Registry
	rateLimiter  *middleware.RateLimiter
	authH        *handler.AuthHandler
	pageH        *handler.PageHandler
	bookingH     *handler.BookingHandler
	profileH     *handler.ProfileHandler
	logger       *slog.Logger
}

// New builds the server from configuration.
func New(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*Server, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	api := backend.New(cfg.BackendURL)
	hub := ws.NewHub(logger.With("component", "websocket"))
	sessionStore := session.NewStore(db, cfg.SessionSecret, cfg.SessionTTL, api, logger.With("component", "session"))
	draftStore := booking.NewDraftStore(db, cfg.DraftTTL)
	flows := authflow.NewRegistry()
	renderer := handler.NewRenderer(logger.With("component", "template"))

	return &Server{
		db:           db,
		hub:          hub,
		sessionStore: sessionStore,
		draftStore:   draftStore,
		flows:        flows,
		rateLimiter:  middleware.NewRateLimiter(),
		authH:        handler.NewAuthHandler(renderer, flows, api, sessionStore, hub, logger.With("component", "auth")),
		pageH:        handler.NewPageHandler(renderer, cat),
		bookingH:     handler.NewBookingHandler(renderer, cat, draftStore, api, logger.With("component", "booking")),
		profileH:     handler.NewProfileHandler(renderer, api, sessionStore, logger.With("component", "profile")),
		logger:       logger,
	}, nil
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *session.Store {
	return s.sessionStore
}

// DraftStore returns the draft store for cleanup tasks.
func (s *Server) DraftStore() *booking.DraftStore {
	return s.draftStore
}

// Flows returns the flow registry for cleanup tasks.
func (s *Server) Flows() *authflow.Registry {
	return s.flows
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Router assembles all routes with middleware applied.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public pages. Home matches "/" exactly; anything unregistered 404s
	// from the mux itself.
	mux.HandleFunc("GET /{$}", s.pageH.Home)
	mux.HandleFunc("GET /about", s.pageH.About)
	mux.HandleFunc("GET /contact", s.pageH.Contact)
	mux.HandleFunc("GET /terms", s.pageH.Terms)
	mux.HandleFunc("GET /refunds", s.pageH.Refunds)
	mux.HandleFunc("GET /tours", s.pageH.Tours)
	mux.HandleFunc("GET /tours/{code}", s.pageH.TourDetail)
	mux.HandleFunc("GET /visa", s.pageH.Visas)
	mux.HandleFunc("GET /visa/{country}", s.pageH.VisaCountry)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	mux.HandleFunc("GET /health", s.healthHandler)

	// Auth pages and flow endpoints
	mux.HandleFunc("GET /auth/login", s.authH.LoginPage)
	mux.HandleFunc("GET /auth/signup", s.authH.SignupPage)
	mux.HandleFunc("POST /auth/flow/{id}/credentials", s.limited(s.authH.Credentials))
	mux.HandleFunc("POST /auth/flow/{id}/register", s.limited(s.authH.Register))
	mux.HandleFunc("POST /auth/flow/{id}/otp/digit", s.authH.Digit)
	mux.HandleFunc("POST /auth/flow/{id}/otp/backspace", s.authH.Backspace)
	mux.HandleFunc("POST /auth/flow/{id}/otp/paste", s.authH.Paste)
	mux.HandleFunc("POST /auth/flow/{id}/otp/verify", s.limited(s.authH.Verify))
	mux.HandleFunc("POST /auth/flow/{id}/otp/resend", s.limited(s.authH.Resend))
	mux.HandleFunc("GET /auth/flow/{id}/otp/tick", s.authH.Tick)
	mux.HandleFunc("POST /auth/flow/{id}/back", s.authH.Back)

	// WebSocket session sync
	mux.HandleFunc("GET /ws", ws.Handle(s.hub, s.logger.With("component", "websocket"), func(r *http.Request) string {
		if c, err := r.Cookie(middleware.CookieName); err == nil {
			return c.Value
		}
		return ""
	}))

	// Protected pages
	protected := http.NewServeMux()
	protected.HandleFunc("POST /logout", s.authH.Logout)
	protected.HandleFunc("GET /dashboard", s.bookingH.Dashboard)
	protected.HandleFunc("GET /bookings/{ref}", s.bookingH.Detail)
	protected.HandleFunc("GET /profile", s.profileH.Show)
	protected.HandleFunc("POST /profile", s.profileH.Update)
	protected.HandleFunc("GET /tours/{code}/book", s.bookingH.TourBookingForm)
	protected.HandleFunc("GET /visa/{country}/apply", s.bookingH.VisaBookingForm)
	protected.HandleFunc("POST /book", s.bookingH.Submit)
	protected.HandleFunc("GET /checkout", s.bookingH.Checkout)
	protected.HandleFunc("POST /checkout/confirm", s.bookingH.Confirm)

	// Mounted with the same method+path patterns as the inner mux, so no
	// registration overlaps a public route.
	authMiddleware := middleware.RequireAuth(s.sessionStore)
	for _, pattern := range []string{
		"POST /logout",
		"GET /dashboard",
		"GET /bookings/{ref}",
		"GET /profile",
		"POST /profile",
		"GET /tours/{code}/book",
		"GET /visa/{country}/apply",
		"POST /book",
		"GET /checkout",
		"POST /checkout/confirm",
	} {
		mux.Handle(pattern, authMiddleware(protected))
	}

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// limited wraps credential and OTP submission endpoints with per-IP rate
// limiting.
func (s *Server) limited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
