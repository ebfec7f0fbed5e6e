package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"research-portal/internal/common"
)

// WebAPI owns the router and HTTP server lifecycle.
type WebAPI struct {
	router *chi.Mux
	logger *slog.Logger
	server *http.Server

	shutdownTimeout time.Duration
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Handler         *Handler
	Logger          *slog.Logger
}

// ConfigureRouter wires the REST surface. Split out from NewWebAPI so tests
// can drive the mux through httptest without a listener.
func ConfigureRouter(h *Handler, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/", h.Health)
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api", func(r chi.Router) {
		r.Post("/extract-financials", h.ExtractFinancials)
		r.Post("/summarize-earnings-call", h.SummarizeEarningsCall)
		r.Get("/download/{filename}", h.Download)
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	router := ConfigureRouter(config.Handler, logger)

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to the shutdown timeout. Extraction requests can legitimately run for
// minutes, so no server-wide write timeout is set; the handlers bound
// themselves via their request context.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info("server.start", "addr", w.server.Addr)
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info("server.shutdown.begin")

		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error("server.shutdown.graceful_failed", "error", err)
			err = w.server.Close()
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// requestLogger tags each request with an id and logs completion with
// status and elapsed time.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := uuid.New().String()

			ctx := common.WithRequestID(r.Context(), reqID)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.Info("server.request",
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
