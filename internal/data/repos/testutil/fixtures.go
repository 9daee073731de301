package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/crm-backend/internal/domain"
)

func SeedCustomer(tb testing.TB, ctx context.Context, tx *gorm.DB, name, email string) *types.Customer {
	tb.Helper()
	c := &types.Customer{Name: name, Email: email}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed customer: %v", err)
	}
	return c
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, name, price string, stock int) *types.Product {
	tb.Helper()
	p := &types.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedOrder(tb testing.TB, ctx context.Context, tx *gorm.DB, customer *types.Customer, orderDate time.Time, products ...*types.Product) *types.Order {
	tb.Helper()
	o := &types.Order{
		CustomerID:  customer.ID,
		Products:    products,
		TotalAmount: types.OrderTotal(products),
		OrderDate:   orderDate.UTC(),
	}
	if err := tx.WithContext(ctx).Omit("Customer", "Products.*").Create(o).Error; err != nil {
		tb.Fatalf("seed order: %v", err)
	}
	return o
}
