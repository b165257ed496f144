package main

import (
	"net/http"
	"net/url"
	"strings"
)

// Flash message cookie names
const (
	flashSuccessCookie = "flash_success"
	flashErrorCookie   = "flash_error"
)

// flashMaxAge is long enough to survive the redirect
const flashMaxAge = 60

// FlashMessages holds success and error messages read from cookies
type FlashMessages struct {
	Success string
	Error   string
}

func (s *Server) setFlash(w http.ResponseWriter, r *http.Request, cookie, message string) {
	s.SetCookie(w, r, cookie, url.QueryEscape(message), flashMaxAge, http.SameSiteLaxMode)
}

// getFlashMessages reads and clears flash message cookies.
// Call this once per request, before writing the body.
func (s *Server) getFlashMessages(w http.ResponseWriter, r *http.Request) FlashMessages {
	var messages FlashMessages
	read := func(name string) string {
		c, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		s.DeleteCookie(w, r, name)
		decoded, err := url.QueryUnescape(c.Value)
		if err != nil {
			return ""
		}
		return decoded
	}
	messages.Success = read(flashSuccessCookie)
	messages.Error = read(flashErrorCookie)
	return messages
}

func (s *Server) redirectWithSuccess(w http.ResponseWriter, r *http.Request, to, message string) {
	s.setFlash(w, r, flashSuccessCookie, message)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (s *Server) redirectWithError(w http.ResponseWriter, r *http.Request, to, message string) {
	s.setFlash(w, r, flashErrorCookie, message)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// OOBFlashData holds data for the OOB flash template
type OOBFlashData struct {
	Message string
	Type    string // "error" or "success"
}

func (s *Server) renderOOBFlash(r *http.Request, message, flashType string) string {
	var buf strings.Builder
	if err := s.tmpl.ExecuteTemplate(&buf, "oob-flash", OOBFlashData{Message: message, Type: flashType}); err != nil {
		LoggerFromContext(r.Context()).Error("failed to render OOB flash", "error", err)
		return ""
	}
	return buf.String()
}

// respondWithError returns an OOB flash fragment to HelmJS requests and redirects
// everything else with a flash cookie.
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, returnURL, message string) {
	if isHelmRequest(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(s.renderOOBFlash(r, message, "error")))
		return
	}
	s.redirectWithError(w, r, returnURL, message)
}
