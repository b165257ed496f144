package main

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"profile-frames/internal/analytics"
	"profile-frames/internal/auth"
	"profile-frames/internal/profile"
	"profile-frames/internal/records"
	"profile-frames/internal/types"
)

// eventTextRecordUpdated is logged when an owner saves a text record from the edit modal
const eventTextRecordUpdated = "profile_text_record_updated"

// recordsHandler saves a text record from the edit modal. Owner only.
func (s *Server) recordsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := analytics.WithPageContext(r.Context(), analytics.DefaultContext)
	log := LoggerFromContext(ctx)
	viewer := s.viewerAddress(r)

	id, err := s.profiles.Resolve(ctx, chi.URLParam(r, "username"), viewer)
	if errors.Is(err, profile.ErrUnknownProfile) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Error("failed to resolve profile", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !id.ViewerIsOwner {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	if !s.csrf.ValidateToken(auth.Binding(viewer, id.ViewedUsername), r.PostForm.Get("csrf_token")) {
		http.Error(w, "Invalid or expired form, please reload the page", http.StatusForbidden)
		return
	}

	key := types.TextRecordKey(r.PostForm.Get("key"))
	if key == "" {
		key = types.TextRecordFrame
	}
	if !key.Valid() {
		http.Error(w, "Unknown record", http.StatusBadRequest)
		return
	}
	value := strings.TrimSpace(r.PostForm.Get("value"))
	returnURL := profilePath(id.ViewedUsername, "")

	if (key == types.TextRecordFrame || key == types.TextRecordURL) && value != "" && !isHTTPURL(value) {
		s.respondWithError(w, r, returnURL, "Enter a full http:// or https:// URL")
		return
	}

	err = s.store.SetTextRecord(ctx, id.ViewedUsername, key, value)
	if errors.Is(err, records.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Error("failed to save text record", "key", key, "error", err)
		s.respondWithError(w, r, returnURL, "Could not save your changes, please try again")
		return
	}
	s.analytics.LogEventWithContext(ctx, eventTextRecordUpdated, analytics.ActionChange)
	log.Info("text record updated", "username", id.ViewedUsername, "key", key, "cleared", value == "")

	msg := "Profile updated"
	if key == types.TextRecordFrame {
		msg = "Frame updated"
		if value == "" {
			msg = "Frame removed"
		}
	}
	s.redirectWithSuccess(w, r, returnURL, msg)
}

// viewerCookieMaxAge is 30 days
const viewerCookieMaxAge = 30 * 24 * 60 * 60

// sessionHandler sets or clears the connected address. It stands in for a wallet
// connection and is only routed when dev sessions are enabled.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.HTTP.DevSessions {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	returnURL := safeReturnURL(r.PostForm.Get("return_url"))

	if r.PostForm.Get("disconnect") != "" {
		s.DeleteCookie(w, r, auth.ViewerCookieName)
		s.redirectWithSuccess(w, r, returnURL, "Disconnected")
		return
	}
	sealed := s.viewer.Seal(r.PostForm.Get("address"))
	if sealed == "" {
		s.redirectWithError(w, r, returnURL, "Enter a 0x-prefixed 20-byte address")
		return
	}
	s.SetCookie(w, r, auth.ViewerCookieName, sealed, viewerCookieMaxAge, http.SameSiteLaxMode)
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

// safeReturnURL keeps redirects on this site
func safeReturnURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || raw == "" || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return "/"
	}
	return u.RequestURI()
}
