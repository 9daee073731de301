package app

import (
	"github.com/yungbote/crm-backend/internal/config"
	"github.com/yungbote/crm-backend/internal/http"
	httpH "github.com/yungbote/crm-backend/internal/http/handlers"
	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/logger"
)

const serviceName = "crm-backend"

type Handlers struct {
	Health   *httpH.HealthHandler
	Customer *httpH.CustomerHandler
	Product  *httpH.ProductHandler
	Order    *httpH.OrderHandler
	Report   *httpH.ReportHandler
}

func wireHandlers(log *logger.Logger, services Services, ping httpH.PingFunc) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(log, ping),
		Customer: httpH.NewCustomerHandler(log, services.Customer),
		Product:  httpH.NewProductHandler(log, services.Product),
		Order:    httpH.NewOrderHandler(log, services.Order),
		Report:   httpH.NewReportHandler(services.Report),
	}
}

func wireServer(log *logger.Logger, cfg config.Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	rc := http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		CORSOrigins:     cfg.CORSOrigins,
		HealthHandler:   handlers.Health,
		CustomerHandler: handlers.Customer,
		ProductHandler:  handlers.Product,
		OrderHandler:    handlers.Order,
		ReportHandler:   handlers.Report,
	}
	if cfg.OTelEnabled {
		rc.TracingService = serviceName
	}
	return http.NewServer(rc)
}
