package handlers

import (
	"temp_monitor/internal/logger"
	"temp_monitor/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Chart stream for renderers, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/chart", h.getChart)
		api.GET("/settings", h.getSettings)
		api.GET("/sensors", h.getSensors)
		h.registerLogRoutes(api)
	}

	// Anything that changes sampling or data needs an operator token.
	protected := api.Group("", h.operatorIdMiddleware)
	{
		h.registerControlRoutes(protected)
	}
}

func (h *Handler) registerControlRoutes(api *gin.RouterGroup) {
	settings := api.Group("/settings")
	{
		// Body example: {"units":"F"}
		settings.PUT("/units", h.setUnits)
		// Body example: {"frequency_unit":"sec"}
		settings.PUT("/frequency", h.setFrequency)
		// Body example: {"log_interval":5}
		settings.PUT("/interval", h.setInterval)
		settings.POST("/save", h.saveSettings)
	}
	// Body example: {"product":"28-0000000001","ambient":"28-0000000002"}
	api.PUT("/roles", h.assignRoles)
	api.POST("/log/clear", h.clearLog)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
		logs.GET("/", h.getLogs)
	}
}
