// Package server wires the HTTP router, middleware stack and listener.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osse101/liveops/internal/clock"
	"github.com/osse101/liveops/internal/handler"
	"github.com/osse101/liveops/internal/lifecycle"
	"github.com/osse101/liveops/internal/logger"
	"github.com/osse101/liveops/internal/metrics"
	"github.com/osse101/liveops/internal/progress"
	"github.com/osse101/liveops/internal/recurring"
	"github.com/osse101/liveops/internal/reward"
	"github.com/osse101/liveops/internal/sse"
)

// Options configures the listener and middleware
type Options struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	RateLimit      int
	RateWindow     time.Duration
	MaxBodyBytes   int64
	Version        string
}

// Dependencies are the services behind the routes
type Dependencies struct {
	Store     handler.Pinger
	Lifecycle lifecycle.Service
	Progress  progress.Service
	Rewards   reward.Service
	Recurring recurring.Service
	Hub       *sse.Hub
	Clock     clock.Clock
	// Weather is set only when the static provider is in use
	Weather handler.WeatherOverride
}

// Server is the HTTP service
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(opts Options, deps Dependencies) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts, deps),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// NewRouter builds the route tree. Exposed for tests.
func NewRouter(opts Options, deps Dependencies) http.Handler {
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxRequestBodySize
	}

	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector(opts.RateLimit, opts.RateWindow)

	r.Use(SecurityHeadersMiddleware())
	r.Use(loggingMiddleware)
	r.Use(AuthMiddleware(opts.APIKey, opts.TrustedProxies, detector))
	r.Use(RateLimitMiddleware(opts.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(maxBody))
	r.Use(metrics.Middleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(deps.Store))
	r.Get("/version", handler.HandleVersion(opts.Version))
	r.Handle("/metrics", promhttp.Handler())

	if deps.Hub != nil {
		r.Get("/sse", sse.Handler(deps.Hub))
	}

	events := handler.NewEventHandlers(deps.Lifecycle, deps.Clock)
	progressHandlers := handler.NewProgressHandlers(deps.Progress, deps.Rewards)

	var streams handler.ClientCounter
	if deps.Hub != nil {
		streams = deps.Hub
	}
	admin := handler.NewAdminHandlers(deps.Lifecycle, deps.Recurring, streams, deps.Weather)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", events.HandleCreateEvent())
			r.Get("/active", events.HandleGetActiveEvents())
			r.Get("/upcoming", events.HandleGetUpcomingEvents())
			r.Get("/calendar.ics", events.HandleCalendar())

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", events.HandleGetEvent())
				r.Delete("/", events.HandleCancelEvent())
				r.Post("/progress", progressHandlers.HandleUpdateProgress())
				r.Get("/progress", progressHandlers.HandleGetProgress())
				r.Get("/completion", progressHandlers.HandleGetCompletion())
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/sweep", admin.HandleSweep())
			r.Post("/recurring/{class}", admin.HandleRunRecurring())
			r.Get("/sse", admin.HandleSSEStats())
			r.Post("/weather", admin.HandleSetWeather())
		})
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush lets SSE streams pass through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func isQuietPath(path string) bool {
	for _, p := range quietPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		w.Header().Set(HeaderRequestID, requestID)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		if log.Enabled(ctx, slog.LevelDebug) {
			log.Debug(LogMsgRequestHeaders, "headers", sanitizeHeaders(r.Header))
		}

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

func sanitizeHeaders(in http.Header) http.Header {
	out := make(http.Header, len(in))
	for k, v := range in {
		if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
			out[k] = []string{RedactedValue}
		} else {
			out[k] = v
		}
	}
	return out
}

// Start blocks serving HTTP until Stop is called
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
