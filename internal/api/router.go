package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/99minutos/delivery-dispatch/internal/api/handler"
	"github.com/99minutos/delivery-dispatch/internal/api/middleware"
	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

// Deps groups everything the HTTP layer needs. Services are built by the caller.
type Deps struct {
	Log       zerolog.Logger
	JWTSecret string

	Auth       ports.AuthService
	Deliveries ports.DeliveryService
	Agents     ports.AgentService
	Zones      ports.ZoneService
	Feed       ports.TrackingFeed
	Locations  handler.LocationQueue

	// HealthChecks are probed by /health/ready, keyed by dependency name.
	HealthChecks map[string]handler.HealthCheck
	// Swagger mounts /swagger/* when true.
	Swagger bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("delivery_http"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	deliveryHandler := handler.NewDeliveryHandler(d.Deliveries)
	agentHandler := handler.NewAgentHandler(d.Agents, d.Deliveries, d.Locations)
	adminHandler := handler.NewAdminHandler(d.Deliveries, d.Agents, d.Zones)
	streamHandler := handler.NewStreamHandler(d.Deliveries, d.Feed, d.Log)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	authed := []echo.MiddlewareFunc{middleware.Auth(d.JWTSecret), middleware.AgentIdentity(d.Agents)}
	withRoles := func(roles ...string) []echo.MiddlewareFunc {
		return append(append([]echo.MiddlewareFunc{}, authed...), middleware.RBAC(roles...))
	}

	// --- Probes and tooling (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness
	e.GET("/health/ready", healthHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandler())
	if d.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Public delivery routes ---
	dg := e.Group("/delivery")
	dg.POST("/quote", deliveryHandler.Quote)
	dg.GET("/track/:trackingNumber", deliveryHandler.TrackByNumber)
	dg.GET("/track/:trackingNumber/stream", streamHandler.Track)

	// --- Shipments ---
	dg.POST("/shipments", deliveryHandler.CreateShipment, withRoles(domain.RoleCustomer, domain.RoleAdmin)...)
	dg.GET("/shipments/:id/track", deliveryHandler.TrackByID, withRoles(domain.RoleCustomer, domain.RoleAgent, domain.RoleAdmin)...)
	dg.PATCH("/shipments/:id/status", deliveryHandler.UpdateStatus, withRoles(domain.RoleAgent)...)
	dg.POST("/shipments/:id/cancel", deliveryHandler.Cancel, withRoles(domain.RoleCustomer, domain.RoleAdmin)...)
	dg.POST("/shipments/:id/proof", deliveryHandler.UploadProof, withRoles(domain.RoleAgent)...)

	// --- Agent self-service ---
	ag := dg.Group("/agent", withRoles(domain.RoleAgent)...)
	ag.POST("/register", agentHandler.Register)
	ag.GET("/profile", agentHandler.Profile)
	ag.POST("/availability", agentHandler.SetAvailability)
	ag.GET("/deliveries", agentHandler.Deliveries)
	ag.POST("/location", agentHandler.ReportLocation)

	// --- Admin ---
	ad := dg.Group("/admin", withRoles(domain.RoleAdmin)...)
	ad.GET("/shipments", adminHandler.ListShipments)
	ad.GET("/analytics", adminHandler.Analytics)
	ad.PATCH("/shipments/:id/status", adminHandler.UpdateStatus)
	ad.POST("/shipments/:id/assign", adminHandler.Assign)
	ad.POST("/shipments/:id/cod/resolve", adminHandler.ResolveCOD)
	ad.POST("/dispatch", adminHandler.Dispatch)
	ad.GET("/agents", adminHandler.ListAgents)
	ad.POST("/agents/:id/verify", adminHandler.VerifyAgent)
	ad.POST("/agents/:id/status", adminHandler.SetAgentStatus)
	ad.GET("/zones", adminHandler.ListZones)
	ad.PUT("/zones/:code", adminHandler.PutZone)
	ad.POST("/zones/:code/suspend", adminHandler.SuspendZone)
	ad.POST("/zones/:code/resume", adminHandler.ResumeZone)

	return e
}

// requestLogger emits one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			} else if v.Status >= 400 {
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
