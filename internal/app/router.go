package app

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"taxi/internal/handler"
	"taxi/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler   *handler.UserHandler
	OrderHandler  *handler.OrderHandler
	DriverHandler *handler.DriverHandler
	AdminHandler  *handler.AdminHandler
	Relay         http.Handler
	Access        middleware.AdminChecker
	ResponseStore middleware.ResponseStore // nil disables idempotency
	NewRelicApp   *newrelic.Application
	Logger        *slog.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicAttributes())
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Signaling relay.
	if deps.Relay != nil {
		router.GET("/ws", gin.WrapH(deps.Relay))
	}

	// API v1 routes. Idempotency keys are scoped by actor, so it runs after RequireActor.
	v1 := router.Group("/v1")
	v1.Use(middleware.RequireActor())
	v1.Use(middleware.IdempotencyMiddleware(deps.ResponseStore))
	{
		users := v1.Group("/users")
		{
			users.POST("", deps.UserHandler.Start)
			users.GET("/:id", deps.UserHandler.GetProfile)
			users.PUT("/:id/phone", deps.UserHandler.SavePhone)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", deps.OrderHandler.CreateOrder)
			orders.GET("/active", deps.OrderHandler.GetActive)
			orders.GET("/:id", deps.OrderHandler.GetOrder)
		}

		driver := v1.Group("/driver/orders")
		{
			driver.GET("", deps.DriverHandler.ListNew)
			driver.GET("/active", deps.DriverHandler.GetActive)
			driver.POST("/:id/accept", deps.DriverHandler.Accept)
			driver.POST("/:id/arrive", deps.DriverHandler.Arrive)
			driver.POST("/:id/complete", deps.DriverHandler.Complete)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin(deps.Access))
		{
			admin.POST("/drivers", deps.AdminHandler.AddDriver)
			admin.GET("/drivers", deps.AdminHandler.ListDrivers)
			admin.DELETE("/drivers/:id", deps.AdminHandler.RemoveDriver)
			admin.GET("/stats", deps.AdminHandler.Stats)
		}
	}

	return router
}
