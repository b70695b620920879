/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RealIP:     Client address from proxy headers
  2. RequestID:  Unique ID per request for tracing (X-Request-ID)
  3. Logger:     One zerolog line per request
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. Secure:     Security headers (unrolled/secure)
  6. CORS:       Cross-origin requests for frontend
  7. RateLimit:  Per-IP request budget (httprate)

ROUTE GROUPS:
  /api/catalog          Static catalog
  /api/state            Snapshot, inventory, sales, logs
  /api/reports/*        Summaries and CSV export
  /api/scenarios/*      Demo scenarios
  /api/admin/*          Destructive operations
  /healthz              Liveness

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/unrolled/secure"
)

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	AllowedOrigins     []string
	RateLimitPerMinute int // 0 disables rate limiting
	Production         bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(secureHeaders(cfg.Production))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	}))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.Limit(cfg.RateLimitPerMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded", nil)
			}),
		))
	}

	r.Get("/healthz", h.Healthz)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", h.GetCatalog)
		r.Get("/state", h.GetState)

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", h.GetInventory)
			r.Put("/", h.AdjustInventory)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.ListSales)
			r.Post("/", h.RecordSale)
		})

		r.Get("/logs", h.ListLogs)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", h.GetSummary)
			r.Get("/oversold", h.GetOversold)
			r.Get("/sales.csv", h.ExportSalesCSV)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/clear", h.ClearAll)
			r.Get("/audit", h.GetAuditTrail)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// requestID keeps an incoming X-Request-ID or assigns a fresh UUID, and
// stores it where middleware.GetReqID finds it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				ev := log.Info()
				if status >= http.StatusInternalServerError {
					ev = log.Error()
				}
				ev.Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("http request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func secureHeaders(production bool) func(http.Handler) http.Handler {
	sm := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})
	return sm.Handler
}
