package main

import (
	"net/http"
)

// SetCookie sets an HTTP-only cookie. Secure is set for TLS requests or when the
// server is configured to always mark cookies secure.
func (s *Server) SetCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.shouldSecureCookie(r),
		SameSite: sameSite,
	})
}

// DeleteCookie expires a cookie immediately
func (s *Server) DeleteCookie(w http.ResponseWriter, r *http.Request, name string) {
	s.SetCookie(w, r, name, "", -1, http.SameSiteLaxMode)
}

func (s *Server) shouldSecureCookie(r *http.Request) bool {
	if s.cfg.HTTP.SecureCookies || r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}

// helmRedirectHeader asks the HelmJS client to navigate after applying the response
const helmRedirectHeader = "H-Redirect"

// isHelmRequest reports whether the request came from a HelmJS h-* attribute
func isHelmRequest(r *http.Request) bool {
	return r.Header.Get("H-Request") == "true"
}
