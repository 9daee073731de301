package services

import (
	"time"

	"github.com/shopspring/decimal"

	types "github.com/yungbote/crm-backend/internal/domain"
)

type CustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type CreateCustomerResult struct {
	Customer *types.Customer    `json:"customer"`
	Message  string             `json:"message"`
	Success  bool               `json:"success"`
	Errors   []types.FieldError `json:"errors"`
}

type BulkCreateCustomersResult struct {
	Customers    []*types.Customer  `json:"customers"`
	Errors       []types.FieldError `json:"errors"`
	SuccessCount int                `json:"success_count"`
}

type ProductInput struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type CreateProductResult struct {
	Product *types.Product     `json:"product"`
	Success bool               `json:"success"`
	Errors  []types.FieldError `json:"errors"`
}

// OrderInput carries raw identifiers; they are decoded by the service.
type OrderInput struct {
	CustomerID string     `json:"customer_id"`
	ProductIDs []string   `json:"product_ids"`
	OrderDate  *time.Time `json:"order_date,omitempty"`
}

type CreateOrderResult struct {
	Order   *types.Order       `json:"order"`
	Success bool               `json:"success"`
	Errors  []types.FieldError `json:"errors"`
}

type RestockResult struct {
	UpdatedProducts []*types.Product   `json:"updated_products"`
	Message         string             `json:"message"`
	Success         bool               `json:"success"`
	Errors          []types.FieldError `json:"errors"`
}

type Summary struct {
	TotalCustomers int64           `json:"total_customers"`
	TotalProducts  int64           `json:"total_products"`
	TotalOrders    int64           `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}
