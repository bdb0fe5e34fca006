package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yanqian/roofbook/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1")
	{
		availability := api.Group("/availability")
		availability.GET("/days/:date", handler.DayAvailability)
		availability.GET("/slots/:date", handler.SlotAvailability)
		availability.GET("/calendar", handler.Calendar)

		bookings := api.Group("/bookings")
		bookings.POST("", handler.CreateBooking)
		bookings.POST("/review", handler.Review)
		bookings.GET("/confirmations/:number", handler.Receipt)

		api.POST("/holds", handler.CreateHold)
		api.DELETE("/holds/:token", handler.ReleaseHold)

		api.POST("/measurements", handler.CreateMeasurement)
		api.GET("/measurements/:id", handler.GetMeasurement)

		api.POST("/payments/stripe/webhook", handler.StripeWebhook)

		api.POST("/auth/login", handler.Login)
		api.POST("/auth/refresh", handler.Refresh)

		ops := api.Group("/ops", staffOnly(handler.authSvc))
		ops.GET("/me", handler.Me)
		ops.GET("/appointments", handler.ListAppointments)
		ops.GET("/appointments/:id", handler.GetAppointment)
		ops.POST("/appointments/:id/cancel", handler.CancelAppointment)
		ops.POST("/appointments/:id/complete", handler.CompleteAppointment)
	}

	var root http.Handler = otelhttp.NewHandler(router, "roofbook.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	root = withRetry(root, cfg.HTTP.Retry, handler.logger)

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        root,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

