package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/crm-backend/internal/http/handlers"
	httpMW "github.com/yungbote/crm-backend/internal/http/middleware"
	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// TracingService enables otelgin spans under this service name.
	TracingService string

	CustomerHandler *httpH.CustomerHandler
	ProductHandler  *httpH.ProductHandler
	OrderHandler    *httpH.OrderHandler
	ReportHandler   *httpH.ReportHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Customers
		if cfg.CustomerHandler != nil {
			api.POST("/customers", cfg.CustomerHandler.CreateCustomer)
			api.POST("/customers/bulk", cfg.CustomerHandler.BulkCreateCustomers)
			api.GET("/customers", cfg.CustomerHandler.ListCustomers)
		}

		// Products
		if cfg.ProductHandler != nil {
			api.POST("/products", cfg.ProductHandler.CreateProduct)
			api.GET("/products", cfg.ProductHandler.ListProducts)
			api.POST("/products/low-stock/restock", cfg.ProductHandler.UpdateLowStockProducts)
		}

		// Orders
		if cfg.OrderHandler != nil {
			api.POST("/orders", cfg.OrderHandler.CreateOrder)
			api.GET("/orders", cfg.OrderHandler.ListOrders)
			api.GET("/orders/:id", cfg.OrderHandler.GetOrder)
		}

		// Reports
		if cfg.ReportHandler != nil {
			api.GET("/reports/summary", cfg.ReportHandler.Summary)
		}
	}

	return r
}
