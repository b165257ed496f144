package main

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// HTTP metrics
var (
	httpRequestsTotal atomic.Int64
	httpErrorsTotal   atomic.Int64
)

// Frame metrics
var (
	frameFetchesOK       atomic.Int64
	frameFetchesFailed   atomic.Int64
	frameLoadErrorsTotal atomic.Int64
	signerlessPresses    atomic.Int64
	sectionMountsTotal   atomic.Int64
)

// Cache metrics
var (
	cacheHitsTotal   atomic.Int64
	cacheMissesTotal atomic.Int64
)

var serverStartTime = time.Now()

// serverStats feeds the counters from the proxy and the record cache
type serverStats struct{}

func (serverStats) FrameFetched(ok bool) {
	if ok {
		frameFetchesOK.Add(1)
	} else {
		frameFetchesFailed.Add(1)
	}
}

func (serverStats) CacheHit()  { cacheHitsTotal.Add(1) }
func (serverStats) CacheMiss() { cacheMissesTotal.Add(1) }

type metric struct {
	name, help, kind string
	value            any
}

// metricsHandler serves Prometheus-compatible metrics
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	fmt.Fprintf(w, "# HELP profile_frames_build_info Build and configuration information\n")
	fmt.Fprintf(w, "# TYPE profile_frames_build_info gauge\n")
	fmt.Fprintf(w, "profile_frames_build_info{cache_backend=%q,store=%q,go_version=%q} 1\n\n",
		s.cacheBackend, s.storeKind, runtime.Version())

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	metrics := []metric{
		{"process_start_time_seconds", "Unix timestamp of process start", "gauge", serverStartTime.Unix()},
		{"process_uptime_seconds", "Time since process started", "gauge", int64(time.Since(serverStartTime).Seconds())},
		{"go_goroutines", "Number of active goroutines", "gauge", runtime.NumGoroutine()},
		{"go_memstats_alloc_bytes", "Currently allocated memory in bytes", "gauge", mem.Alloc},
		{"go_gc_cycles_total", "Number of completed GC cycles", "counter", mem.NumGC},
		{"http_requests_total", "Total number of HTTP requests", "counter", httpRequestsTotal.Load()},
		{"http_errors_total", "Total number of HTTP 5xx errors", "counter", httpErrorsTotal.Load()},
		{"profile_frames_fetches_total{result=\"ok\"}", "Frame documents fetched by the proxy", "counter", frameFetchesOK.Load()},
		{"profile_frames_fetches_total{result=\"failed\"}", "", "", frameFetchesFailed.Load()},
		{"profile_frames_load_errors_total", "Section mounts whose frame failed to load", "counter", frameLoadErrorsTotal.Load()},
		{"profile_frames_signerless_presses_total", "Frame button presses dropped for lack of a signer", "counter", signerlessPresses.Load()},
		{"profile_frames_section_mounts_total", "Frames section mounts created", "counter", sectionMountsTotal.Load()},
		{"profile_frames_cache_hits_total", "Text record cache hits", "counter", cacheHitsTotal.Load()},
		{"profile_frames_cache_misses_total", "Text record cache misses", "counter", cacheMissesTotal.Load()},
	}
	for _, m := range metrics {
		if m.help != "" {
			base := m.name
			if i := strings.IndexByte(base, '{'); i >= 0 {
				base = base[:i]
			}
			fmt.Fprintf(w, "# HELP %s %s\n", base, m.help)
			fmt.Fprintf(w, "# TYPE %s %s\n", base, m.kind)
		}
		fmt.Fprintf(w, "%s %v\n", m.name, m.value)
	}
}
