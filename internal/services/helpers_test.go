package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/crm-backend/internal/data/aggregates"
	"github.com/yungbote/crm-backend/internal/data/repos"
	"github.com/yungbote/crm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/crm-backend/internal/domain"
	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/dbctx"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
)

type fixture struct {
	db      *gorm.DB
	repos   repos.Set
	tx      aggregates.TxRunner
	bus     *bus.Memory
	metrics *observability.Metrics

	customers CustomerService
	products  ProductService
	orders    OrderService
	reports   ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &fixture{
		db:      db,
		repos:   repos.New(db, log),
		tx:      aggregates.NewGormTxRunner(db),
		bus:     bus.NewMemory(),
		metrics: observability.New(),
	}
	f.customers = NewCustomerService(log, f.tx, f.repos.Customer, f.bus, f.metrics)
	f.products = NewProductService(log, f.tx, f.repos.Product, f.bus, f.metrics)
	f.orders = NewOrderService(log, f.tx, f.repos.Customer, f.repos.Product, f.repos.Order, f.bus, f.metrics)
	f.reports = NewReportService(log, f.tx, f.repos.Customer, f.repos.Product, f.repos.Order)
	return f
}

func codes(errs []types.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field+":"+string(e.Code))
	}
	return out
}

func requireCodes(t *testing.T, errs []types.FieldError, want ...string) {
	t.Helper()
	got := codes(errs)
	if len(got) != len(want) {
		t.Fatalf("errors: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("errors: want %v, got %v", want, got)
		}
	}
}

func dbcOf(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx}
}
