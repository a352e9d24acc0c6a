// Package router assembles the gin engine: middleware chain, route groups
// and handler wiring.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/vansales/backend/internal/infrastructure/auth"
	"github.com/vansales/backend/internal/infrastructure/config"
	"github.com/vansales/backend/internal/infrastructure/logger"
	"github.com/vansales/backend/internal/interfaces/http/handler"
	"github.com/vansales/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers wired into the router.
type Handlers struct {
	System    *handler.SystemHandler
	Auth      *handler.AuthHandler
	Agent     *handler.AgentHandler
	Customer  *handler.CustomerHandler
	Order     *handler.OrderHandler
	Inventory *handler.InventoryHandler
	Identity  *handler.IdentityHandler
}

// Dependencies carries the infrastructure the middleware chain needs.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	JWTService *auth.JWTService
	Blacklist  auth.TokenBlacklist
}

// New builds the gin engine with the full middleware chain and route table.
func New(deps Dependencies, h Handlers) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(deps.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(deps.Config.App.Name, deps.Config.Telemetry.Enabled))
	engine.Use(middleware.CORS(deps.Config.HTTP))
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(logger.Recovery(deps.Logger))

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(middleware.JWTConfig{
		JWTService: deps.JWTService,
		Blacklist:  deps.Blacklist,
		SkipPaths:  []string{"/api/v1/auth/login"},
		Logger:     deps.Logger,
	}))
	api.Use(middleware.TraceIdentity())

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/logout", h.Auth.Logout)

	// everything below requires an established tenant context
	scoped := api.Group("")
	scoped.Use(middleware.TenantContext())

	agent := scoped.Group("/agent")
	{
		agent.POST("/dispatch", h.Agent.Dispatch)
		agent.GET("/capabilities", h.Agent.Capabilities)
		agent.GET("/actions/:id", h.Agent.Get)
		agent.POST("/actions/:id/confirm", h.Agent.Confirm)
		agent.POST("/actions/:id/cancel", h.Agent.Cancel)
		agent.GET("/conversations/:id/actions", h.Agent.ListByConversation)
	}

	customers := scoped.Group("/customers")
	{
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Deactivate)
	}

	orders := scoped.Group("/orders")
	{
		orders.POST("", h.Order.Create)
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/deliver", h.Order.Deliver)
		orders.POST("/:id/cancel", h.Order.Cancel)
	}

	inventory := scoped.Group("/inventory")
	{
		inventory.POST("/items", h.Inventory.CreateItem)
		inventory.GET("/items", h.Inventory.ListItems)
		inventory.POST("/adjust", h.Inventory.Adjust)
		inventory.POST("/load", h.Inventory.LoadVehicle)
		inventory.POST("/unload", h.Inventory.UnloadVehicle)
		inventory.GET("/vehicles/:id/stock", h.Inventory.ListVehicleStock)
		inventory.GET("/movements", h.Inventory.ListMovements)
	}

	users := scoped.Group("/users")
	{
		users.POST("", h.Identity.CreateUser)
		users.GET("", h.Identity.ListUsers)
		users.GET("/:id", h.Identity.GetUser)
		users.DELETE("/:id", h.Identity.DisableUser)
	}

	branches := scoped.Group("/branches")
	{
		branches.POST("", h.Identity.CreateBranch)
		branches.GET("", h.Identity.ListBranches)
	}

	return engine
}
