package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/crm-backend/internal/data/repos/crm"
	"github.com/yungbote/crm-backend/internal/platform/logger"
)

type CustomerRepo = crm.CustomerRepo
type ProductRepo = crm.ProductRepo
type OrderRepo = crm.OrderRepo

type CustomerFilter = crm.CustomerFilter
type ProductFilter = crm.ProductFilter
type OrderFilter = crm.OrderFilter

type Set struct {
	Customer CustomerRepo
	Product  ProductRepo
	Order    OrderRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Customer: crm.NewCustomerRepo(db, baseLog),
		Product:  crm.NewProductRepo(db, baseLog),
		Order:    crm.NewOrderRepo(db, baseLog),
	}
}
