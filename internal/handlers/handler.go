package handlers

import (
	"net/http"

	"aircon_bridge/internal/logger"
	"aircon_bridge/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to the service layer and logging.
type Handler struct {
	services *service.Service
	metrics  http.Handler
	log      *logger.Logger
}

// NewHandler constructs the HTTP handler. The registry carries the snapshot
// collector registered in main; nil disables /metrics.
func NewHandler(services *service.Service, registry *prometheus.Registry, log *logger.Logger) *Handler {
	h := &Handler{services: services, log: log}
	if registry != nil {
		h.metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLog)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Snapshot push over WebSocket (HTTP upgrade on the same port)
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerAirconRoutes(api)
	}
}

func (h *Handler) registerAirconRoutes(api *gin.RouterGroup) {
	aircon := api.Group("/aircon")
	{
		aircon.GET("/state", h.getState)
		aircon.POST("/refresh", h.requestRefresh)
		// Body example: {"target_c": 22.5}
		aircon.POST("/temperature", h.setTemperature)
		aircon.POST("/power", h.setPower)
		aircon.POST("/fan", h.setFanMode)
		aircon.POST("/mode", h.setHvacMode)
		aircon.GET("/telemetry/:metric", h.getTelemetry)
	}
}
