package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yungbote/crm-backend/internal/data/repos/testutil"
)

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.reports.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if empty.TotalOrders != 0 || !empty.TotalRevenue.IsZero() {
		t.Fatalf("expected zero summary, got %+v", empty)
	}

	c := testutil.SeedCustomer(t, ctx, f.db, "Alice", "alice@example.com")
	a := testutil.SeedProduct(t, ctx, f.db, "Mouse", "25.50", 20)
	b := testutil.SeedProduct(t, ctx, f.db, "Desk", "150.00", 20)
	testutil.SeedOrder(t, ctx, f.db, c, time.Now(), a)
	testutil.SeedOrder(t, ctx, f.db, c, time.Now(), a, b)

	got, err := f.reports.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.TotalCustomers != 1 || got.TotalProducts != 2 || got.TotalOrders != 2 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if !got.TotalRevenue.Equal(decimal.RequireFromString("201.00")) {
		t.Fatalf("unexpected revenue: %s", got.TotalRevenue)
	}
}
