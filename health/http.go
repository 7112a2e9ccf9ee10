package health

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/jonwraymond/memoization/memoize"
)

const probeTimeout = 5 * time.Second

// LivenessHandler reports that the process is serving.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "OK")
	}
}

// ReadinessHandler runs every check and answers OK, DEGRADED or UNHEALTHY.
// Degraded caches still serve correct results, so only unhealthy fails
// the probe.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		switch status := agg.OverallStatus(agg.CheckAll(ctx)); status {
		case StatusHealthy:
			writeText(w, http.StatusOK, "OK")
		case StatusDegraded:
			writeText(w, http.StatusOK, "DEGRADED")
		default:
			writeText(w, http.StatusServiceUnavailable, "UNHEALTHY")
		}
	}
}

// HealthResponse is the JSON body of the detailed endpoint.
type HealthResponse struct {
	Status    Status                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON rendering of one Result.
type CheckResponse struct {
	Status   Status         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func newCheckResponse(result Result) CheckResponse {
	resp := CheckResponse{
		Status:   result.Status,
		Message:  result.Message,
		Duration: result.Duration.String(),
		Details:  result.Details,
	}
	if result.Error != nil {
		resp.Error = result.Error.Error()
	}
	return resp
}

// DetailedHandler serves every check result as JSON.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*probeTimeout)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)
		resp := HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckResponse, len(results)),
		}
		for name, result := range results {
			resp.Checks[name] = newCheckResponse(result)
		}
		writeJSON(w, statusCode(status), resp)
	}
}

// CheckHandler serves one check named by the {name} path value.
func CheckHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		result, err := agg.Check(ctx, r.PathValue("name"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, statusCode(result.Status), newCheckResponse(result))
	}
}

// CacheInfoResponse is the JSON rendering of a memoize.CacheInfo.
type CacheInfoResponse struct {
	Hits             uint64  `json:"hits"`
	Misses           uint64  `json:"misses"`
	HitRatio         float64 `json:"hit_ratio"`
	CurrentSize      int     `json:"current_size"`
	MaxSize          *int    `json:"max_size"`
	Algorithm        string  `json:"algorithm"`
	TTL              string  `json:"ttl,omitempty"`
	ThreadSafe       bool    `json:"thread_safe"`
	OrderIndependent bool    `json:"order_independent"`
	UseCustomKey     bool    `json:"use_custom_key"`
}

// NewCacheInfoResponse renders info. MaxSize is null for unbounded caches.
func NewCacheInfoResponse(info memoize.CacheInfo) CacheInfoResponse {
	resp := CacheInfoResponse{
		Hits:             info.Hits,
		Misses:           info.Misses,
		HitRatio:         info.HitRatio(),
		CurrentSize:      info.CurrentSize,
		Algorithm:        info.Algorithm.String(),
		ThreadSafe:       info.ThreadSafe,
		OrderIndependent: info.OrderIndependent,
		UseCustomKey:     info.UseCustomKey,
	}
	if info.HasMaxSize {
		maxSize := info.MaxSize
		resp.MaxSize = &maxSize
	}
	if info.TTL > 0 {
		resp.TTL = info.TTL.String()
	}
	return resp
}

// CacheInfoHandler serves the statistics of every source as a JSON object
// keyed by name. A {name} path value narrows the response to one cache.
func CacheInfoHandler(sources map[string]InfoSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if name := r.PathValue("name"); name != "" {
			src, ok := sources[name]
			if !ok || src == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown cache: " + name})
				return
			}
			writeJSON(w, http.StatusOK, NewCacheInfoResponse(src.Info()))
			return
		}

		names := make([]string, 0, len(sources))
		for name, src := range sources {
			if src != nil {
				names = append(names, name)
			}
		}
		slices.Sort(names)
		resp := make(map[string]CacheInfoResponse, len(names))
		for _, name := range names {
			resp[name] = NewCacheInfoResponse(sources[name].Info())
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// RegisterHandlers mounts the probes on mux.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("GET /healthz", LivenessHandler())
	mux.HandleFunc("GET /readyz", ReadinessHandler(agg))
	mux.HandleFunc("GET /health", DetailedHandler(agg))
	mux.HandleFunc("GET /health/{name}", CheckHandler(agg))
}

func statusCode(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
