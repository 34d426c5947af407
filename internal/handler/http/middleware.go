package http

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"citypulse/internal/handler/http/pathutil"
	"citypulse/internal/handler/http/requestid"
	"citypulse/internal/handler/http/respond"
	"citypulse/internal/handler/http/responsewriter"
	"citypulse/internal/observability/logging"
	"citypulse/internal/observability/metrics"

	"go.opentelemetry.io/otel/trace"
)

// Chain applies middlewares so that the first one listed is outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Logging stores a request-scoped logger (carrying request_id) in the context
// and writes one access log line per request. 5xx responses log at error,
// 4xx at warn.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logging.WithRequestID(r.Context(), logger)
			wrapped := responsewriter.Wrap(w)

			next.ServeHTTP(wrapped, r.WithContext(logging.WithLogger(r.Context(), reqLogger)))

			duration := time.Since(start)
			status := wrapped.StatusCode()
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			spanCtx := trace.SpanFromContext(r.Context()).SpanContext()
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", respond.Sanitize(r.URL.RawQuery)),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.Int("status", status),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", duration),
				slog.String("duration_ms", fmt.Sprintf("%.2f", duration.Seconds()*1000)),
			}
			if spanCtx.HasTraceID() {
				attrs = append(attrs, slog.String("trace_id", spanCtx.TraceID().String()))
			}
			reqLogger.LogAttrs(r.Context(), level, "request completed", attrs...)
		})
	}
}

// Recover turns a panic into a 500 response and an error log with the stack.
// If the handler already started the response, only the log is written.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := responsewriter.Wrap(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				if !wrapped.WroteHeader() {
					respond.SafeError(wrapped, http.StatusInternalServerError, errors.New("internal error"))
				}
			}()
			next.ServeHTTP(wrapped, r)
		})
	}
}

// LimitRequestBody caps request bodies at maxBytes.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respond.SafeError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// clientWindow holds one client's request times inside the current window.
type clientWindow struct {
	mu    sync.Mutex
	times []time.Time
	// evicted is set by sweep once the window is removed from the map.
	evicted bool
}

// RateLimiter is a per-client sliding-window limiter. Clients are keyed by
// peer address, or by the forwarding headers when TrustProxy is set.
type RateLimiter struct {
	limit      int
	window     time.Duration
	trustProxy bool
	now        func() time.Time

	clients   sync.Map // string -> *clientWindow
	sweepMu   sync.Mutex
	lastSweep time.Time
}

// sweepEvery bounds how often idle clients are forgotten.
const sweepEvery = 10 * time.Minute

// NewRateLimiter allows limit requests per window for each client.
func NewRateLimiter(limit int, window time.Duration, trustProxy bool) *RateLimiter {
	return &RateLimiter{
		limit:      limit,
		window:     window,
		trustProxy: trustProxy,
		now:        time.Now,
		lastSweep:  time.Now(),
	}
}

// Limit rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl.sweep()

		ok, retryAfter := rl.allow(clientKey(r, rl.trustProxy))
		if !ok {
			metrics.RecordRateLimited(pathutil.NormalizePath(r.URL.Path))
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			respond.SafeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow records a request for key if it fits in the window. When it does not,
// it returns how long until the oldest request leaves the window.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()
	var cw *clientWindow
	for {
		v, _ := rl.clients.LoadOrStore(key, &clientWindow{})
		cw = v.(*clientWindow)
		cw.mu.Lock()
		if !cw.evicted {
			break
		}
		cw.mu.Unlock()
	}
	defer cw.mu.Unlock()

	cutoff := now.Add(-rl.window)
	kept := cw.times[:0]
	for _, ts := range cw.times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	cw.times = kept

	if len(cw.times) >= rl.limit {
		return false, cw.times[0].Add(rl.window).Sub(now)
	}
	cw.times = append(cw.times, now)
	return true, 0
}

// sweep drops clients whose newest request is older than two windows.
// A window is marked evicted under its own lock so a concurrent allow
// that already loaded it retries against a fresh one.
func (rl *RateLimiter) sweep() {
	rl.sweepMu.Lock()
	defer rl.sweepMu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) < sweepEvery {
		return
	}
	rl.lastSweep = now
	cutoff := now.Add(-2 * rl.window)

	rl.clients.Range(func(key, value any) bool {
		cw := value.(*clientWindow)
		cw.mu.Lock()
		if len(cw.times) == 0 || !cw.times[len(cw.times)-1].After(cutoff) {
			cw.evicted = true
			rl.clients.CompareAndDelete(key, cw)
		}
		cw.mu.Unlock()
		return true
	})
}

// tracked returns the number of clients currently held in memory.
func (rl *RateLimiter) tracked() int {
	n := 0
	rl.clients.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// clientKey identifies the caller. Forwarding headers are client-controlled,
// so they are honoured only behind a trusted proxy.
func clientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
