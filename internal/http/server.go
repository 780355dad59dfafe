// Package http exposes the ledger over a small JSON API. Handlers stay
// thin: they decode requests, call the services, and translate errors to
// status codes. All filtering and validation semantics live below.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type Server struct {
	http.Server
	ledger *services.LedgerService
	auth   *services.AuthService
	logger *log.Logger

	rateLimiter *rateLimiter

	// Monthly totals are cheap to recompute but requested on every
	// dashboard refresh, so they sit behind a small LRU.
	summaryCache *cache.LRUCache[core.Money]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Options tunes the server knobs that config exposes. Zero values fall
// back to reasonable defaults.
type Options struct {
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration
	RateLimit        int
	Logger           *log.Logger
}

// NewServer wires routes and caches, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, auth *services.AuthService, opts Options) *Server {
	if opts.SummaryCacheSize <= 0 {
		opts.SummaryCacheSize = 100
	}
	if opts.SummaryCacheTTL <= 0 {
		opts.SummaryCacheTTL = 5 * time.Minute
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 60
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}

	mux := http.NewServeMux()

	s := &Server{
		ledger:       ledger,
		auth:         auth,
		logger:       opts.Logger.WithComponent(log.ComponentHTTP),
		rateLimiter:  newRateLimiter(opts.RateLimit),
		summaryCache: cache.NewLRUCache[core.Money](opts.SummaryCacheSize, opts.SummaryCacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/transactions", s.handleTransactions)
	mux.HandleFunc("/transactions/summary", s.handleMonthlySummary)
	mux.HandleFunc("/categories", s.handleCategories)
	mux.HandleFunc("/categories/", s.handleCategoryByID)
	mux.HandleFunc("/auth/login", s.handleLogin)
	mux.HandleFunc("/auth/register", s.handleRegister)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           log.Middleware(opts.Logger)(s.secure(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// secure adds security headers and applies rate limiting to mutating
// requests.
func (s *Server) secure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			ip := clientIP(r)
			if !s.rateLimiter.allow(ip) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", ip, "method", r.Method, "url", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, fmt.Errorf("rate limit exceeded"))
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the background goroutines before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// clientIP extracts the caller address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// First hop only
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
