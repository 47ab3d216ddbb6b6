package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewpos-api/internal/config"
	"github.com/sangkips/brewpos-api/internal/presentation/http/handler"
	"github.com/sangkips/brewpos-api/internal/presentation/http/middleware"
	"github.com/sangkips/brewpos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Sale    *handler.SaleHandler
	Receipt *handler.ReceiptHandler
	Product *handler.ProductHandler
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager  *utils.JWTManager
	Cfg         *config.Config
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.CashierAuth(deps.JWTManager))
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}

	registerSaleRoutes(v1, h)
	registerPrinterRoutes(v1, h)

	return router
}

func registerSaleRoutes(v1 *gin.RouterGroup, h *Handlers) {
	sales := v1.Group("/sales")
	sales.Use(middleware.RequirePermission(middleware.PermissionProcessSales))
	{
		sales.POST("", middleware.Idempotency(false), h.Sale.Create)
		sales.GET("", h.Sale.List)
		sales.GET("/:id", h.Sale.Get)
		sales.GET("/:id/receipt", h.Receipt.Get)
		sales.POST("/:id/receipt/email", h.Receipt.Email)
	}

	v1.GET("/products/:id", middleware.RequirePermission(middleware.PermissionProcessSales), h.Product.Get)
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	printers := v1.Group("/printer")
	printers.Use(middleware.RequirePermission(middleware.PermissionPrintReceipts))
	{
		printers.GET("/status", h.Printer.GetStatus)
		printers.POST("/test", h.Printer.TestPrint)
		printers.POST("/receipt", h.Printer.PrintReceipt)
		printers.POST("/drawer", h.Printer.OpenDrawer)
	}
}
