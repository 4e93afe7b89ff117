// Package app wires the catalog server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/catalog-view/internal/catalog"
	"github.com/xenking/catalog-view/internal/handler"
	"github.com/xenking/catalog-view/pkg/health"
	"github.com/xenking/catalog-view/pkg/httpmiddleware"
)

const serviceName = "catalog-view"

// Run builds the upstream client, health probes and HTTP server, serves
// until ctx is cancelled, then drains and shuts down.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("upstream", cfg.Upstream.URL),
	)

	opts := cfg.catalogOptions()
	opts.TracerProvider = m.TracerProvider()
	opts.MeterProvider = m.MeterProvider()
	client, err := catalog.NewClient(opts)
	if err != nil {
		return errors.Wrap(err, "create catalog client")
	}

	healthSvc := health.New()
	healthSvc.Add(health.Liveness, health.Check{
		Name: "goroutines",
		Func: health.GoroutineCountCheck(cfg.Health.MaxGoroutines),
	})
	if cfg.Health.UpstreamProbe {
		healthSvc.Add(health.Readiness, health.Check{
			Name:    "upstream",
			Timeout: cfg.Upstream.Timeout,
			Func:    health.PingCheck("upstream", client.Ping),
		})
	}

	labels := cfg.Labels
	h := handler.NewHandler(handler.HandlerConfig{Labels: &labels}, client)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		// A page view waits on the upstream, so leave room for its timeout.
		WriteTimeout:   cfg.Upstream.Timeout + 5*time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Addr:           cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				MaxAge:       86400,
				PathPrefix:   "/api/",
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.Instrument(serviceName, m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
			httpmiddleware.Compress(pgzip.DefaultCompression),
		),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return healthSvc.Run(gctx, cfg.Health.Interval)
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	healthSvc.SetReady(true)

	return g.Wait()
}
