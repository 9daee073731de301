package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/crm-backend/internal/data/aggregates"
	"github.com/yungbote/crm-backend/internal/data/repos"
	aggtestutil "github.com/yungbote/crm-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/crm-backend/internal/data/repos/testutil"
	"github.com/yungbote/crm-backend/internal/realtime"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
)

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.products.CreateProduct(ctx, ProductInput{Name: "Laptop", Price: decimal.RequireFromString("999.99"), Stock: 5})
	if !res.Success || res.Product == nil {
		t.Fatalf("expected success, got %+v", res.Errors)
	}
	if !res.Product.Price.Equal(decimal.RequireFromString("999.99")) || res.Product.Stock != 5 {
		t.Fatalf("unexpected product: %+v", res.Product)
	}
	if got := f.bus.Types(); len(got) != 1 || got[0] != realtime.EventProductCreated {
		t.Fatalf("expected product.created, got %v", got)
	}
}

func TestCreateProduct_InvalidValuesReportedTogether(t *testing.T) {
	f := newFixture(t)
	res := f.products.CreateProduct(context.Background(), ProductInput{Name: "Broken", Price: decimal.Zero, Stock: -1})
	if res.Success || res.Product != nil {
		t.Fatalf("expected rejection, got %+v", res)
	}
	requireCodes(t, res.Errors, "price:INVALID_VALUE", "stock:INVALID_VALUE")
	if res.Errors[0].Message != "Price must be a positive value." || res.Errors[1].Message != "Stock cannot be negative." {
		t.Fatalf("unexpected messages: %+v", res.Errors)
	}
}

func TestCreateProduct_PriceBeyondColumnPrecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]string{
		"0.001":     "Ensure that there are no more than 2 decimal places.",
		"100000000": "Ensure that there are no more than 8 digits before the decimal point.",
	}
	for price, msg := range cases {
		res := f.products.CreateProduct(ctx, ProductInput{Name: "Dust", Price: decimal.RequireFromString(price), Stock: 1})
		if res.Success || res.Product != nil {
			t.Fatalf("price %s: expected rejection, got %+v", price, res)
		}
		requireCodes(t, res.Errors, "price:INVALID_VALUE")
		if res.Errors[0].Message != msg {
			t.Fatalf("price %s: unexpected message %q", price, res.Errors[0].Message)
		}
	}
	n, err := f.repos.Product.Count(dbcOf(ctx))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no products stored, got %d", n)
	}

	res := f.products.CreateProduct(ctx, ProductInput{Name: "Max", Price: decimal.RequireFromString("99999999.99"), Stock: 1})
	if !res.Success {
		t.Fatalf("largest column value should be accepted: %+v", res.Errors)
	}
}

func TestCreateProduct_ModelValidation(t *testing.T) {
	f := newFixture(t)
	res := f.products.CreateProduct(context.Background(), ProductInput{Name: "", Price: decimal.NewFromInt(3)})
	if res.Success {
		t.Fatalf("expected model validation failure")
	}
	requireCodes(t, res.Errors, "name:VALIDATION_ERROR")
}

func TestUpdateLowStockProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.SeedProduct(t, ctx, f.db, "Cable", "5.00", 2)
	b := testutil.SeedProduct(t, ctx, f.db, "Mouse", "25.00", 9)
	testutil.SeedProduct(t, ctx, f.db, "Desk", "150.00", 10)
	testutil.SeedProduct(t, ctx, f.db, "Chair", "90.00", 50)

	res := f.products.UpdateLowStockProducts(ctx)
	if !res.Success {
		t.Fatalf("expected success, got %+v", res.Errors)
	}
	if res.Message != "Successfully updated 2 low-stock products." {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	stock := map[string]int{}
	for _, p := range res.UpdatedProducts {
		stock[p.ID.String()] = p.Stock
	}
	if len(stock) != 2 || stock[a.ID.String()] != 12 || stock[b.ID.String()] != 19 {
		t.Fatalf("unexpected updated products: %v", stock)
	}
	if n := len(f.bus.Events()); n != 2 {
		t.Fatalf("expected 2 restock events, got %d", n)
	}

	again := f.products.UpdateLowStockProducts(ctx)
	if !again.Success || again.Message != "No low-stock products found to update." {
		t.Fatalf("second run: unexpected %+v", again)
	}
	if again.UpdatedProducts == nil || len(again.UpdatedProducts) != 0 {
		t.Fatalf("second run: expected empty updated_products, got %v", again.UpdatedProducts)
	}
}

func TestUpdateLowStockProducts_FailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, ctx, f.db, "Cable", "5.00", 3)

	injected := &aggtestutil.InjectedTxRunner{Inner: f.tx, FailCommit: errors.New("commit refused")}
	svc := NewProductService(testutil.Logger(t), injected, f.repos.Product, f.bus, f.metrics)

	res := svc.UpdateLowStockProducts(ctx)
	if res.Success {
		t.Fatalf("expected failure")
	}
	if res.Message != "Failed to update low-stock products." {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	requireCodes(t, res.Errors, "general:SERVER_ERROR")
	if !strings.Contains(res.Errors[0].Message, "commit refused") {
		t.Fatalf("cause missing from message: %q", res.Errors[0].Message)
	}
	if len(res.UpdatedProducts) != 0 {
		t.Fatalf("expected no updated products")
	}
	if injected.RollbackCalls != 1 {
		t.Fatalf("expected rollback, got %d", injected.RollbackCalls)
	}

	got, err := f.repos.Product.GetByIDs(dbcOf(ctx), []uuid.UUID{p.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if got[0].Stock != 3 {
		t.Fatalf("stock should be unchanged after rollback, got %d", got[0].Stock)
	}
	if len(f.bus.Events()) != 0 {
		t.Fatalf("no events expected after rollback")
	}
}

func TestUpdateLowStockProducts_BeginFailure(t *testing.T) {
	f := newFixture(t)
	injected := &aggtestutil.InjectedTxRunner{FailBegin: errors.New("pool exhausted")}
	svc := NewProductService(testutil.Logger(t), injected, f.repos.Product, nil, nil)

	res := svc.UpdateLowStockProducts(context.Background())
	if res.Success || len(res.Errors) != 1 || res.Errors[0].Code != "SERVER_ERROR" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestUpdateLowStockProducts_ConcurrentRunsDoNotDoubleIncrement(t *testing.T) {
	db := testutil.PostgresDB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	p := testutil.SeedProduct(t, ctx, db, "Cable", "5.00", 5)

	set := repos.New(db, log)
	svc := NewProductService(log, aggregates.NewGormTxRunner(db), set.Product, bus.NewMemory(), nil)

	const runs = 4
	results := make([]*RestockResult, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.UpdateLowStockProducts(ctx)
		}(i)
	}
	wg.Wait()

	restocked := 0
	for _, res := range results {
		if !res.Success {
			t.Fatalf("run failed: %+v", res.Errors)
		}
		restocked += len(res.UpdatedProducts)
	}
	if restocked != 1 {
		t.Fatalf("expected exactly one run to restock, got %d", restocked)
	}
	got, err := set.Product.GetByIDs(dbcOf(ctx), []uuid.UUID{p.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if got[0].Stock != 15 {
		t.Fatalf("expected stock 15, got %d", got[0].Stock)
	}
}

func TestListProducts_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedProduct(t, ctx, f.db, "USB Cable", "5.00", 2)
	testutil.SeedProduct(t, ctx, f.db, "Monitor", "199.00", 40)
	testutil.SeedProduct(t, ctx, f.db, "HDMI Cable", "12.50", 30)

	low, err := f.products.ListProducts(ctx, ProductQuery{LowStock: true})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(low) != 1 || low[0].Name != "USB Cable" {
		t.Fatalf("low stock filter: unexpected %+v", low)
	}

	priceMax := decimal.RequireFromString("20")
	cables, err := f.products.ListProducts(ctx, ProductQuery{Name: "cable", PriceMax: &priceMax})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(cables) != 2 || cables[0].Name != "HDMI Cable" || cables[1].Name != "USB Cable" {
		t.Fatalf("name/price filter: unexpected %+v", cables)
	}
}
