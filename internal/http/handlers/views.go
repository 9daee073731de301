package handlers

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/crm-backend/internal/domain"
	"github.com/yungbote/crm-backend/internal/platform/globalid"
	"github.com/yungbote/crm-backend/internal/services"
)

type customerView struct {
	ID        uuid.UUID `json:"id"`
	GlobalID  string    `json:"global_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type productView struct {
	ID        uuid.UUID `json:"id"`
	GlobalID  string    `json:"global_id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int       `json:"stock"`
	LowStock  bool      `json:"low_stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type orderView struct {
	ID          uuid.UUID      `json:"id"`
	GlobalID    string         `json:"global_id"`
	Customer    *customerView  `json:"customer"`
	Products    []*productView `json:"products"`
	TotalAmount string         `json:"total_amount"`
	OrderDate   time.Time      `json:"order_date"`
	CreatedAt   time.Time      `json:"created_at"`
}

func newCustomerView(c *types.Customer) *customerView {
	if c == nil {
		return nil
	}
	return &customerView{
		ID:        c.ID,
		GlobalID:  globalid.Encode(globalid.KindCustomer, c.ID),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func newCustomerViews(in []*types.Customer) []*customerView {
	out := make([]*customerView, 0, len(in))
	for _, c := range in {
		out = append(out, newCustomerView(c))
	}
	return out
}

func newProductView(p *types.Product) *productView {
	if p == nil {
		return nil
	}
	return &productView{
		ID:        p.ID,
		GlobalID:  globalid.Encode(globalid.KindProduct, p.ID),
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		Stock:     p.Stock,
		LowStock:  p.LowStock(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func newProductViews(in []*types.Product) []*productView {
	out := make([]*productView, 0, len(in))
	for _, p := range in {
		out = append(out, newProductView(p))
	}
	return out
}

func newOrderView(o *types.Order) *orderView {
	if o == nil {
		return nil
	}
	return &orderView{
		ID:          o.ID,
		GlobalID:    globalid.Encode(globalid.KindOrder, o.ID),
		Customer:    newCustomerView(o.Customer),
		Products:    newProductViews(o.Products),
		TotalAmount: o.TotalAmount.StringFixed(2),
		OrderDate:   o.OrderDate,
		CreatedAt:   o.CreatedAt,
	}
}

func newOrderViews(in []*types.Order) []*orderView {
	out := make([]*orderView, 0, len(in))
	for _, o := range in {
		out = append(out, newOrderView(o))
	}
	return out
}

type summaryView struct {
	TotalCustomers int64  `json:"total_customers"`
	TotalProducts  int64  `json:"total_products"`
	TotalOrders    int64  `json:"total_orders"`
	TotalRevenue   string `json:"total_revenue"`
}

func newSummaryView(s *services.Summary) summaryView {
	return summaryView{
		TotalCustomers: s.TotalCustomers,
		TotalProducts:  s.TotalProducts,
		TotalOrders:    s.TotalOrders,
		TotalRevenue:   s.TotalRevenue.StringFixed(2),
	}
}
