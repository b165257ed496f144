package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-frames/internal/frames"
)

type countingStats struct{ ok, failed int }

func (s *countingStats) FrameFetched(ok bool) {
	if ok {
		s.ok++
	} else {
		s.failed++
	}
}

func frameBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/widget", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
<meta property="fc:frame" content="vNext">
<meta property="fc:frame:image" content="/a.png">
<meta property="fc:frame:button:1" content="Next">
</head></html>`)
	})
	mux.HandleFunc("/action", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `<meta property="fc:frame" content="vNext"><meta property="fc:frame:image" content="/b.png">`)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://example.com/landing", http.StatusFound)
	})
	mux.HandleFunc("/blog", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Just a blog</title></head></html>`)
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func localOptions() Options {
	opts := DefaultOptions()
	opts.AllowPrivateHosts = true
	return opts
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) frames.ProxyResponse {
	t.Helper()
	var out frames.ProxyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetFrame(t *testing.T) {
	backend := frameBackend(t)
	stats := &countingStats{}
	h := New(localOptions(), stats)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/frames?url="+url.QueryEscape(backend.URL+"/widget"), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "success", out.Status)
	require.NotNil(t, out.Frame)
	assert.Equal(t, backend.URL+"/a.png", out.Frame.Image)
	assert.Equal(t, 1, stats.ok)
}

func TestGetFrameFailures(t *testing.T) {
	backend := frameBackend(t)
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing url", "", http.StatusBadRequest},
		{"bad scheme", "ftp://example.com/x", http.StatusBadRequest},
		{"not a frame", backend.URL + "/blog", http.StatusUnprocessableEntity},
		{"backend error", backend.URL + "/down", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(localOptions(), nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/frames?url="+url.QueryEscape(tt.target), nil))
			assert.Equal(t, tt.status, rec.Code)
			out := decode(t, rec)
			assert.Equal(t, "failure", out.Status)
			assert.NotEmpty(t, out.Errors)
		})
	}
}

func TestPrivateHostsRejectedByDefault(t *testing.T) {
	h := New(DefaultOptions(), nil)
	h.lookupIP = func(ctx context.Context, host string) ([]net.IPAddr, error) {
		if host == "internal.example.com" {
			return []net.IPAddr{{IP: net.ParseIP("10.0.0.5")}}, nil
		}
		return []net.IPAddr{{IP: net.ParseIP("93.184.216.34")}}, nil
	}

	for _, target := range []string{
		"http://127.0.0.1:8080/widget",
		"http://localhost/widget",
		"http://[::1]/widget",
		"https://internal.example.com/widget",
	} {
		_, err := h.parseTarget(context.Background(), target)
		assert.ErrorIs(t, err, ErrDisallowedURL, target)
	}
	_, err := h.parseTarget(context.Background(), "https://public.example.com/widget")
	assert.NoError(t, err)
}

func TestPostAction(t *testing.T) {
	backend := frameBackend(t)
	h := New(localOptions(), nil)

	q := url.Values{"postUrl": {backend.URL + "/action"}, "postType": {frames.ActionPost}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/frames?"+q.Encode(), strings.NewReader(`{"untrustedData":{"buttonIndex":1}}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	require.NotNil(t, out.Frame)
	assert.Equal(t, backend.URL+"/b.png", out.Frame.Image)
}

func TestPostRedirect(t *testing.T) {
	backend := frameBackend(t)
	h := New(localOptions(), nil)

	q := url.Values{"postUrl": {backend.URL + "/redirect"}, "postType": {frames.ActionPostRedirect}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/frames?"+q.Encode(), strings.NewReader(`{}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com/landing", decode(t, rec).Location)
}

func TestPostRejectsBadInput(t *testing.T) {
	backend := frameBackend(t)
	h := New(localOptions(), nil)

	q := url.Values{"postUrl": {backend.URL + "/action"}, "postType": {"tx"}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/frames?"+q.Encode(), strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	q.Set("postType", frames.ActionPost)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/frames?"+q.Encode(), strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/frames", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
