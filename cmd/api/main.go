package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/PratikDhanave/booking-conversion-relay/internal/capi"
	"github.com/PratikDhanave/booking-conversion-relay/internal/config"
	"github.com/PratikDhanave/booking-conversion-relay/internal/handlers"
	"github.com/PratikDhanave/booking-conversion-relay/internal/httpserver"
	"github.com/PratikDhanave/booking-conversion-relay/internal/metrics"
	"github.com/PratikDhanave/booking-conversion-relay/internal/store"
)

// main boots the relay: config → store → outbound clients → HTTP server.
func main() {
	if err := run(); err != nil {
		slog.Error("relay stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// Load runtime config from environment (WEBHOOK_SECRET, META_*, ...).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if cfg.UsesDefaultSecret() {
		slog.Warn("WEBHOOK_SECRET is not set, using the placeholder secret")
	}
	if cfg.MetaPixelID == "" || cfg.MetaAccessToken == "" {
		slog.Warn("META_PIXEL_ID or META_ACCESS_TOKEN is empty, Conversions API calls will be rejected")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Volatile attribution table; entries are lost on restart.
	mappings := store.NewMemoryStore()
	metrics.RegisterStoreSize(reg, mappings.Len)

	deps := httpserver.Deps{
		Webhook: handlers.WebhookDeps{
			Store:  mappings,
			Sender: capi.NewClient(cfg.MetaGraphURL, cfg.MetaPixelID, cfg.MetaAccessToken, cfg.MetaTestEventCode, capi.WithMetrics(m)),
		},
		Metrics:  m,
		Gatherer: reg,
	}
	if cfg.GTMServerEndpoint != "" {
		deps.Webhook.Forwarder = capi.NewForwarder(cfg.GTMServerEndpoint, capi.WithMetrics(m))
	}

	router := httpserver.NewRouter(cfg, deps)

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Server listening", "addr", addr)
	return router.Run(addr)
}
