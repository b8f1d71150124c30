package http

import (
	"context"
	"log"
	"net/http"

	"github.com/healthassist/whatsapp-gateway/internal/broadcast"
	"github.com/healthassist/whatsapp-gateway/internal/config"
	"github.com/healthassist/whatsapp-gateway/internal/dispatcher"
	"github.com/healthassist/whatsapp-gateway/internal/logger"
	"github.com/healthassist/whatsapp-gateway/internal/metrics"
	"github.com/healthassist/whatsapp-gateway/internal/repository"
	"github.com/healthassist/whatsapp-gateway/internal/responder"
	"github.com/healthassist/whatsapp-gateway/internal/whatsapp"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, store repository.UserStore, deliveries repository.DeliveriesRepository) *Server {
	// delivery pipeline
	client := whatsapp.NewClient(cfg.WhatsApp)
	sender := whatsapp.NewSender(client)

	disp := dispatcher.New(store, responder.New(), sender, deliveries, cfg.WhatsApp.MaxRetries)
	coord := broadcast.New(store, sender, deliveries, cfg.Broadcast.Concurrency, cfg.Broadcast.MaxRetries)

	if !cfg.WhatsApp.SignatureCheckEnabled() {
		logger.Log.Warn("webhook signature verification is DISABLED: no webhook secret configured; " +
			"set whatsapp.webhook_secret before exposing this endpoint")
	}
	if !cfg.WhatsApp.SendConfigured() {
		logger.Log.Warn("whatsapp send credentials missing: outbound sends will fail with configuration errors")
	}

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())
	e.Validator = newRequestValidator()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// routes
	wh := e.Group("/webhook/whatsapp")
	wh.GET("", verifyWebhookHandler(cfg.WhatsApp))
	wh.POST("", receiveWebhookHandler(cfg.WhatsApp, disp))

	admin := e.Group("/admin")
	admin.POST("/alerts", broadcastAlertHandler(coord))
	admin.GET("/stats", adminStatsHandler(store))
	admin.GET("/users", adminUsersHandler(store))
	admin.GET("/reports/deliveries", listDeliveriesHandler(deliveries))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
