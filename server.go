package main

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"profile-frames/internal/analytics"
	"profile-frames/internal/auth"
	"profile-frames/internal/cache"
	"profile-frames/internal/config"
	"profile-frames/internal/gate"
	"profile-frames/internal/profile"
	"profile-frames/internal/proxy"
	"profile-frames/internal/records"
	"profile-frames/internal/signer"
)

// Request body size limits
const (
	maxBodySize       = 32 * 1024
	maxActionBodySize = 64 * 1024
)

// ServerDeps are the collaborators main assembles for the server
type ServerDeps struct {
	Config       *config.Config
	Store        records.Store
	Cache        cache.Backend
	CacheBackend string
	StoreKind    string
	Analytics    analytics.Logger
	Signer       signer.Identity
	Secret       []byte
	// HTTPClient is used by frame controllers to reach the server's own proxy
	HTTPClient *http.Client
	// Proxy overrides the frame proxy handler (tests)
	Proxy http.Handler
}

// Server holds everything the HTTP handlers share
type Server struct {
	cfg          *config.Config
	store        records.Store
	profiles     *profile.Provider
	mounts       *gate.MountStore
	proxy        http.Handler
	analytics    analytics.Logger
	csrf         *auth.CSRFManager
	viewer       *auth.ViewerSigner
	signer       signer.Identity
	httpClient   *http.Client
	tmpl         *template.Template
	cacheBackend string
	storeKind    string
}

// NewServer wires the server. The store is wrapped in the record cache.
func NewServer(d ServerDeps) (*Server, error) {
	if d.Config == nil || d.Store == nil || d.Cache == nil {
		return nil, errors.New("new server: config, store and cache are required")
	}
	csrfKey, err := auth.DeriveKey(d.Secret, auth.PurposeCSRF)
	if err != nil {
		return nil, err
	}
	viewerKey, err := auth.DeriveKey(d.Secret, auth.PurposeViewer)
	if err != nil {
		return nil, err
	}
	tmpl, err := compileTemplates()
	if err != nil {
		return nil, err
	}

	cached := records.NewCachedStore(d.Store, d.Cache, d.Config.Cache.RecordsTTL, serverStats{})
	s := &Server{
		cfg:          d.Config,
		store:        cached,
		profiles:     profile.NewProvider(cached, cached),
		mounts:       gate.NewMountStore(d.Cache, d.Config.Cache.MountTTL),
		proxy:        d.Proxy,
		analytics:    d.Analytics,
		csrf:         auth.NewCSRFManager(csrfKey),
		viewer:       auth.NewViewerSigner(viewerKey),
		signer:       d.Signer,
		httpClient:   d.HTTPClient,
		tmpl:         tmpl,
		cacheBackend: d.CacheBackend,
		storeKind:    d.StoreKind,
	}
	if s.proxy == nil {
		s.proxy = proxy.New(proxy.Options{
			Timeout:           d.Config.Frames.FetchTimeout,
			MaxBodyBytes:      d.Config.Frames.MaxBodyBytes,
			AllowPrivateHosts: d.Config.Frames.AllowPrivateHosts,
			UserAgent:         d.Config.Frames.UserAgent,
		}, serverStats{})
	}
	if s.analytics == nil {
		s.analytics = analytics.NewSlogLogger(nil)
	}
	if s.signer == nil {
		s.signer = signer.NoSigner{}
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: d.Config.Frames.FetchTimeout + 2*time.Second}
	}
	return s, nil
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLoggingMiddleware)

	r.Get("/health", s.healthHandler)
	r.Get("/metrics", s.metricsHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("./static"))))

	r.Get("/frames", s.proxy.ServeHTTP)
	r.Post("/frames", limitBody(s.proxy.ServeHTTP, maxActionBodySize))

	r.Post("/session", securityHeaders(limitBody(s.sessionHandler, maxBodySize)))

	r.Route("/{username}", func(r chi.Router) {
		r.Get("/", securityHeaders(s.profileHandler))
		r.Post("/records", securityHeaders(limitBody(s.recordsHandler, maxBodySize)))
		r.Route("/frames/section/{mount}", func(r chi.Router) {
			r.Get("/", securityHeaders(s.sectionHandler))
			r.Post("/modal/open", securityHeaders(limitBody(s.openModalHandler, maxBodySize)))
			r.Post("/modal/close", securityHeaders(limitBody(s.closeModalHandler, maxBodySize)))
			r.Post("/press", securityHeaders(limitBody(s.pressHandler, maxBodySize)))
		})
	})
	return r
}

// limitBody wraps an HTTP handler to limit request body size
func limitBody(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

// securityHeaders wraps an HTTP handler to add security headers
func securityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// frame images come from arbitrary hosts; the QR code is a data URI
		csp := "default-src 'self'; " +
			"img-src * data:; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self'; " +
			"form-action 'self'"
		w.Header().Set("Content-Security-Policy", csp)
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next(w, r)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","store":%q,"cache":%q}`, s.storeKind, s.cacheBackend)
}

// viewerAddress returns the connected address from the viewer cookie, or ""
func (s *Server) viewerAddress(r *http.Request) string {
	c, err := r.Cookie(auth.ViewerCookieName)
	if err != nil {
		return ""
	}
	addr, err := s.viewer.Open(c.Value)
	if err != nil {
		LoggerFromContext(r.Context()).Debug("ignoring viewer cookie", "error", err)
		return ""
	}
	return addr
}
