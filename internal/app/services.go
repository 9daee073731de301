package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/crm-backend/internal/data/aggregates"
	"github.com/yungbote/crm-backend/internal/data/repos"
	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
	"github.com/yungbote/crm-backend/internal/services"
)

type Services struct {
	Customer services.CustomerService
	Product  services.ProductService
	Order    services.OrderService
	Report   services.ReportService
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet repos.Set, eventBus bus.Bus, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	tx := aggregates.NewGormTxRunner(db)
	return Services{
		Customer: services.NewCustomerService(log, tx, reposet.Customer, eventBus, metrics),
		Product:  services.NewProductService(log, tx, reposet.Product, eventBus, metrics),
		Order:    services.NewOrderService(log, tx, reposet.Customer, reposet.Product, reposet.Order, eventBus, metrics),
		Report:   services.NewReportService(log, tx, reposet.Customer, reposet.Product, reposet.Order),
	}
}
