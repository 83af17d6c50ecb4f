// Package rest exposes the credential operations over HTTP with JSON bodies.
package rest

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type HTTPServer struct {
	address         string
	app             *fiber.App
	logger          logging.Logger
	shutdownTimeout time.Duration
}

// NewHTTPServer builds the fiber app. A nil m disables metrics collection
// and the /metrics route.
func NewHTTPServer(address string, l logging.Logger, service AuthService, m *metrics.Metrics, resetSecret string, shutdownTimeout time.Duration) *HTTPServer {
	logger := l.With("module", "http_server")

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(requestLogger(logger))
	if m != nil {
		app.Use(requestMetrics(m))
		RegisterMetricsRoute(app, m)
	}

	RegisterRoutes(app, NewAuthHandler(service, []byte(resetSecret)))

	return &HTTPServer{
		address:         address,
		app:             app,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// App returns the underlying fiber application.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping HTTP server...")
			if err := s.app.ShutdownWithTimeout(s.shutdownTimeout); err != nil {
				s.logger.Error(ctx, "HTTP shutdown", "error", err)
			}
			// unblocks Listener if shutdown ran before it started serving
			_ = listen.Close()
		case <-stop:
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	err = s.app.Listener(listen)
	close(stop)
	<-stopped
	return err
}
