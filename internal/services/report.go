package services

import (
	"context"

	"github.com/yungbote/crm-backend/internal/data/aggregates"
	"github.com/yungbote/crm-backend/internal/data/repos"
	"github.com/yungbote/crm-backend/internal/platform/dbctx"
	"github.com/yungbote/crm-backend/internal/platform/logger"
)

type ReportService interface {
	Summary(ctx context.Context) (*Summary, error)
}

type reportService struct {
	log          *logger.Logger
	tx           aggregates.TxRunner
	customerRepo repos.CustomerRepo
	productRepo  repos.ProductRepo
	orderRepo    repos.OrderRepo
}

func NewReportService(log *logger.Logger, tx aggregates.TxRunner, customerRepo repos.CustomerRepo, productRepo repos.ProductRepo, orderRepo repos.OrderRepo) ReportService {
	return &reportService{
		log:          log.With("service", "ReportService"),
		tx:           tx,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
	}
}

// Summary reads all totals inside one transaction so they describe the same
// snapshot.
func (s *reportService) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		if out.TotalCustomers, err = s.customerRepo.Count(dbc); err != nil {
			return err
		}
		if out.TotalProducts, err = s.productRepo.Count(dbc); err != nil {
			return err
		}
		if out.TotalOrders, err = s.orderRepo.Count(dbc); err != nil {
			return err
		}
		out.TotalRevenue, err = s.orderRepo.SumTotal(dbc)
		return err
	})
	if err != nil {
		return nil, aggregates.MapError("report.summary", err)
	}
	return &out, nil
}
