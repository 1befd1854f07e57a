package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/skylarktravel/skylark/internal/backend"
	"github.com/skylarktravel/skylark/internal/middleware"
	"github.com/skylarktravel/skylark/internal/session"
)

// ProfileHandler serves the profile page. Edits go to the backend; the
// session's cached user is refreshed with whatever comes back.
type ProfileHandler struct {
	renderer *Renderer
	api      *backend.Client
	sessions *session.Store
	logger   *slog.Logger
}

func NewProfileHandler(rd *Renderer, api *backend.Client, sessions *session.Store, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{renderer: rd, api: api, sessions: sessions, logger: logger}
}

// Show renders the profile form. The backend is asked for the current
// record so edits made elsewhere show up; the cached user covers a backend
// outage.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	sid := middleware.SessionID(w, r)

	if fresh, err := h.api.GetProfile(r.Context(), user.ID); err == nil && fresh != nil {
		user = fresh
		if err := h.sessions.SetUser(sid, fresh); err != nil {
			h.logger.Error("refresh cached user", "error", err)
		}
	} else if err != nil {
		h.logger.Debug("profile fetch failed, using cached user", "error", err)
	}

	h.renderer.Render(w, "profile.html", pageData{User: user, Data: map[string]any{
		"Saved": r.URL.Query().Get("saved") == "1",
	}})
}

// Update pushes profile edits to the backend and re-caches the result.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	sid := middleware.SessionID(w, r)

	updated, err := h.api.UpdateProfile(r.Context(), user.ID, backend.ProfileUpdate{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Phone:     strings.TrimSpace(r.FormValue("phone")),
		Street:    strings.TrimSpace(r.FormValue("street")),
		City:      strings.TrimSpace(r.FormValue("city")),
		State:     strings.TrimSpace(r.FormValue("state")),
		Pincode:   strings.TrimSpace(r.FormValue("pincode")),
		Country:   strings.TrimSpace(r.FormValue("country")),
	})
	if err != nil {
		h.renderer.Render(w, "profile.html", pageData{User: user, Data: map[string]any{
			"Error": err.Error(),
		}})
		return
	}

	if err := h.sessions.SetUser(sid, updated); err != nil {
		h.logger.Error("refresh cached user", "error", err)
	}
	http.Redirect(w, r, "/profile?saved=1", http.StatusSeeOther)
}
