package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yungbote/crm-backend/internal/data/aggregates"
	"github.com/yungbote/crm-backend/internal/data/repos"
	types "github.com/yungbote/crm-backend/internal/domain"
	"github.com/yungbote/crm-backend/internal/platform/dbctx"
	"github.com/yungbote/crm-backend/internal/platform/logger"
)

type Result struct {
	Customers int
	Products  int
	Orders    int
}

// Run writes the sample dataset in one transaction. With reset, existing
// orders, products and customers are deleted first, in that order.
func Run(ctx context.Context, log *logger.Logger, tx aggregates.TxRunner, rs repos.Set, reset bool) (*Result, error) {
	log = log.With("component", "Seeder")
	var out Result
	err := tx.InTx(ctx, func(dbc dbctx.Context) error {
		if reset {
			log.Info("Clearing existing data")
			if err := rs.Order.DeleteAll(dbc); err != nil {
				return fmt.Errorf("delete orders: %w", err)
			}
			if err := rs.Product.DeleteAll(dbc); err != nil {
				return fmt.Errorf("delete products: %w", err)
			}
			if err := rs.Customer.DeleteAll(dbc); err != nil {
				return fmt.Errorf("delete customers: %w", err)
			}
		}

		customers, err := rs.Customer.Create(dbc, sampleCustomers())
		if err != nil {
			return fmt.Errorf("seed customers: %w", err)
		}
		products, err := rs.Product.Create(dbc, sampleProducts())
		if err != nil {
			return fmt.Errorf("seed products: %w", err)
		}

		orders := []*types.Order{
			newOrder(customers[0], time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC), products[0], products[2]),
			newOrder(customers[1], time.Date(2025, 7, 12, 14, 30, 0, 0, time.UTC), products[1], products[3]),
		}
		for _, o := range orders {
			if _, err := rs.Order.Create(dbc, o); err != nil {
				return fmt.Errorf("seed orders: %w", err)
			}
		}

		out = Result{Customers: len(customers), Products: len(products), Orders: len(orders)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Database seeding complete", "customers", out.Customers, "products", out.Products, "orders", out.Orders)
	return &out, nil
}

func sampleCustomers() []*types.Customer {
	phone := func(s string) *string { return &s }
	return []*types.Customer{
		{Name: "Alice Wonderland", Email: "alice@example.com", Phone: phone("+11234567890")},
		{Name: "Bob The Builder", Email: "bob@example.com", Phone: phone("555-123-4567")},
		{Name: "Charlie Chaplin", Email: "charlie@example.com"},
		{Name: "Diana Prince", Email: "diana@example.com", Phone: phone("987-654-3210")},
	}
}

func sampleProducts() []*types.Product {
	return []*types.Product{
		{Name: "Premium Coffee Mug", Price: decimal.RequireFromString("15.99"), Stock: 200},
		{Name: "Ergonomic Keyboard", Price: decimal.RequireFromString("89.50"), Stock: 50},
		{Name: "Noise-Cancelling Headphones", Price: decimal.RequireFromString("249.00"), Stock: 30},
		{Name: "USB-C Charging Cable", Price: decimal.RequireFromString("12.00"), Stock: 5},
		{Name: "Wireless Mouse", Price: decimal.RequireFromString("35.00"), Stock: 150},
	}
}

func newOrder(c *types.Customer, at time.Time, products ...*types.Product) *types.Order {
	return &types.Order{
		CustomerID:  c.ID,
		Products:    products,
		TotalAmount: types.OrderTotal(products),
		OrderDate:   at,
	}
}
