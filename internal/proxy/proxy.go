// Package proxy serves the frame proxy routes. Browsers and the frame controller never talk
// to third-party frame backends directly; every GET and action POST goes through here.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"profile-frames/internal/frames"
)

var tracer = otel.Tracer("profile-frames/proxy")

// ErrDisallowedURL is returned for URLs the proxy refuses to fetch
var ErrDisallowedURL = errors.New("url not allowed")

// Options tunes the proxy
type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	// AllowPrivateHosts permits loopback and private network targets (local development only)
	AllowPrivateHosts bool
	UserAgent         string
}

// DefaultOptions returns production defaults
func DefaultOptions() Options {
	return Options{
		Timeout:      5 * time.Second,
		MaxBodyBytes: 512 * 1024,
		UserAgent:    "Mozilla/5.0 (compatible; ProfileFramesBot/1.0)",
	}
}

// Stats receives fetch outcomes
type Stats interface {
	FrameFetched(ok bool)
}

// Handler serves GET (frame content) and POST (frame action) on a single route
type Handler struct {
	opts     Options
	client   *http.Client
	lookupIP func(ctx context.Context, host string) ([]net.IPAddr, error)
	stats    Stats
}

// New creates a proxy handler
func New(opts Options, stats Stats) *Handler {
	h := &Handler{
		opts:     opts,
		lookupIP: net.DefaultResolver.LookupIPAddr,
		stats:    stats,
	}
	h.client = &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return http.ErrUseLastResponse
			}
			return h.checkURL(req.Context(), req.URL)
		},
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.serveGet(w, r)
	case http.MethodPost:
		h.servePost(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, frames.ProxyResponse{Status: "failure", Errors: []string{"method not allowed"}})
	}
}

func (h *Handler) serveGet(w http.ResponseWriter, r *http.Request) {
	log := slog.Default().With("component", "frame_proxy")
	target, err := h.parseTarget(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failure(err))
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failure(err))
		return
	}
	req.Header.Set("User-Agent", h.opts.UserAgent)
	req.Header.Set("Accept", "text/html")

	frame, status, err := h.fetchFrame(req)
	if err != nil {
		log.Warn("frame fetch failed", "url", target.String(), "error", err)
		h.record(false)
		writeJSON(w, status, failureFor(err))
		return
	}
	h.record(true)
	writeJSON(w, http.StatusOK, frames.ProxyResponse{Status: "success", Frame: frame})
}

func (h *Handler) servePost(w http.ResponseWriter, r *http.Request) {
	log := slog.Default().With("component", "frame_proxy")
	q := r.URL.Query()
	target, err := h.parseTarget(r.Context(), q.Get("postUrl"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failure(err))
		return
	}
	postType := q.Get("postType")
	switch postType {
	case frames.ActionPost, frames.ActionPostRedirect:
	case "":
		postType = frames.ActionPost
	default:
		writeJSON(w, http.StatusBadRequest, failure(fmt.Errorf("unsupported postType %q", postType)))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.opts.MaxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failure(fmt.Errorf("read action body: %w", err)))
		return
	}
	if !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, failure(errors.New("action body must be JSON")))
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failure(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.opts.UserAgent)

	if postType == frames.ActionPostRedirect {
		location, err := h.fetchRedirect(req)
		if err != nil {
			log.Warn("frame redirect failed", "url", target.String(), "error", err)
			writeJSON(w, http.StatusBadGateway, failure(err))
			return
		}
		writeJSON(w, http.StatusOK, frames.ProxyResponse{Status: "success", Location: location})
		return
	}

	frame, status, err := h.fetchFrame(req)
	if err != nil {
		log.Warn("frame action failed", "url", target.String(), "error", err)
		h.record(false)
		writeJSON(w, status, failureFor(err))
		return
	}
	h.record(true)
	writeJSON(w, http.StatusOK, frames.ProxyResponse{Status: "success", Frame: frame})
}

// fetchFrame performs req and parses the response as a frame document
func (h *Handler) fetchFrame(req *http.Request) (frame *frames.Frame, status int, err error) {
	ctx, span := tracer.Start(req.Context(), "frame.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
		))
	defer func() {
		span.SetAttributes(attribute.Int("frame.proxy.status", status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	resp, err := h.client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, http.StatusBadGateway, fmt.Errorf("fetch frame: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, http.StatusBadGateway, fmt.Errorf("frame backend returned %d", resp.StatusCode)
	}
	frame, err = frames.Parse(io.LimitReader(resp.Body, h.opts.MaxBodyBytes), resp.Request.URL.String())
	if err != nil {
		return frame, http.StatusUnprocessableEntity, err
	}
	return frame, http.StatusOK, nil
}

// fetchRedirect performs req without following redirects and returns the Location
func (h *Handler) fetchRedirect(req *http.Request) (string, error) {
	client := *h.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post redirect: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, h.opts.MaxBodyBytes))

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return "", fmt.Errorf("frame backend returned %d, expected a redirect", resp.StatusCode)
	}
	loc, err := resp.Location()
	if err != nil {
		return "", fmt.Errorf("redirect location: %w", err)
	}
	if loc.Scheme != "http" && loc.Scheme != "https" {
		return "", fmt.Errorf("%w: redirect scheme %q", ErrDisallowedURL, loc.Scheme)
	}
	return loc.String(), nil
}

func (h *Handler) parseTarget(ctx context.Context, raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: missing url", ErrDisallowedURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDisallowedURL, err)
	}
	if err := h.checkURL(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// checkURL rejects non-http(s) schemes and, unless allowed, private network hosts
func (h *Handler) checkURL(ctx context.Context, u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrDisallowedURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrDisallowedURL)
	}
	if h.opts.AllowPrivateHosts {
		return nil
	}
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return fmt.Errorf("%w: private host", ErrDisallowedURL)
	}
	if ip := net.ParseIP(host); ip != nil {
		if isPrivate(ip) {
			return fmt.Errorf("%w: private host", ErrDisallowedURL)
		}
		return nil
	}
	addrs, err := h.lookupIP(ctx, host)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, a := range addrs {
		if isPrivate(a.IP) {
			return fmt.Errorf("%w: private host", ErrDisallowedURL)
		}
	}
	return nil
}

func isPrivate(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() || ip.IsMulticast()
}

func (h *Handler) record(ok bool) {
	if h.stats != nil {
		h.stats.FrameFetched(ok)
	}
}

func failure(err error) frames.ProxyResponse {
	return frames.ProxyResponse{Status: "failure", Errors: []string{err.Error()}}
}

func failureFor(err error) frames.ProxyResponse {
	var verr *frames.ValidationError
	if errors.As(err, &verr) {
		return frames.ProxyResponse{Status: "failure", Errors: verr.Problems}
	}
	return failure(err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write proxy response", "error", err)
	}
}
